// Package config loads runtime configuration from the environment, with a
// local .env file picked up in development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port       string
	PublicHost string
	JWTSecret  string
	TokenTTL   time.Duration

	GeminiAPIKey     string
	ElevenLabsAPIKey string

	MinBufferMs  int
	MaxBufferMs  int
	SilenceGapMs int

	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is not
// an error; deployed environments set variables directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:       getEnv("PORT", "8080"),
		PublicHost: getEnv("PUBLIC_HOST", "localhost:8080"),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		TokenTTL:   getDuration("TOKEN_TTL", 4*time.Hour),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		ElevenLabsAPIKey: getEnv("ELEVEN_LABS_API_KEY", ""),

		MinBufferMs:  getInt("MIN_BUFFER_MS", 400),
		MaxBufferMs:  getInt("MAX_BUFFER_MS", 2000),
		SilenceGapMs: getInt("SILENCE_GAP_MS", 700),

		SessionTTL:    getDuration("SESSION_TTL", 4*time.Hour),
		SweepInterval: getDuration("SWEEP_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
