package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/adapters/stt"
	"github.com/bhanuprakash2002/twilio-translation-backend/adapters/translate"
	"github.com/bhanuprakash2002/twilio-translation-backend/adapters/tts"
	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/api"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/audio"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/auth"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/config"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/history"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/relay"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/voice"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/websocket"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// External collaborators: real adapters when credentials are present,
	// mocks otherwise so the relay can run locally end to end.
	var transcriber repositories.Transcriber
	googleSTT, err := stt.NewGoogleTranscriber(ctx, logger)
	if err != nil {
		logger.Warn("google speech unavailable, using mock transcriber", zap.Error(err))
		transcriber = stt.NewMockTranscriber(logger)
	} else {
		transcriber = googleSTT
		defer googleSTT.Close()
	}

	var translator repositories.Translator
	if cfg.GeminiAPIKey != "" {
		translator, err = translate.NewGeminiTranslator(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Fatal("failed to create gemini translator", zap.Error(err))
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, using mock translator")
		translator = translate.NewMockTranslator(logger)
	}

	var synthesizer repositories.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		synthesizer, err = tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
			APIKey: cfg.ElevenLabsAPIKey,
		}, nil, logger)
		if err != nil {
			logger.Fatal("failed to create eleven labs synthesizer", zap.Error(err))
		}
	} else {
		logger.Warn("ELEVEN_LABS_API_KEY not set, using mock synthesizer")
		synthesizer = tts.NewMockSynthesizer(logger)
	}

	var authn *auth.Authenticator
	if cfg.JWTSecret != "" {
		authn, err = auth.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			logger.Fatal("failed to create authenticator", zap.Error(err))
		}
	} else {
		logger.Warn("JWT_SECRET not set, media stream endpoint is open")
	}

	// Shared state
	registry := session.NewRegistry(logger)
	sweepStop := make(chan struct{})
	registry.StartSweeper(cfg.SweepInterval, cfg.SessionTTL, sweepStop)
	defer close(sweepStop)

	store := history.NewStore(history.DefaultMaxRecords, history.DefaultMaxAge)
	analyzer := voice.NewAnalyzer(audio.SampleRate, logger)

	relayCfg := relay.DefaultConfig()
	relayCfg.MinBufferMs = cfg.MinBufferMs
	relayCfg.MaxBufferMs = cfg.MaxBufferMs
	relayCfg.SilenceGapMs = cfg.SilenceGapMs

	streamer := relay.NewStreamer(relayCfg, logger)
	pipeline := relay.Pipeline{
		Transcriber: transcriber,
		Translator:  translator,
		Synthesizer: synthesizer,
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(registry, pipeline, analyzer, streamer, store, relayCfg, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, api.Deps{
		Hub:           hub,
		Registry:      registry,
		History:       store,
		Authenticator: authn,
		PublicHost:    cfg.PublicHost,
		TokenTTL:      cfg.TokenTTL,
		Logger:        logger,
	})

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("translation relay started", zap.String("port", cfg.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
