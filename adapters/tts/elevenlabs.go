// Package tts provides Synthesizer adapters for speech synthesis.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "ulaw_8000" // matches the telephony transport
	defaultStability    = 0.5
	defaultClarity      = 0.75
	requestTimeout      = 60 * time.Second
)

// ElevenLabsConfig configures the ElevenLabs synthesizer.
// APIKey is required; everything else has a default.
type ElevenLabsConfig struct {
	APIKey       string
	APIBaseURL   string
	ModelID      string
	OutputFormat string
}

// ElevenLabsTTS implements Synthesizer using the ElevenLabs API. The
// output format is mu-law 8kHz, so synthesized audio goes straight onto
// the telephony transport without re-encoding.
type ElevenLabsTTS struct {
	apiKey       string
	apiBaseURL   string
	modelID      string
	outputFormat string
	selector     VoiceSelector
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ repositories.Synthesizer = (*ElevenLabsTTS)(nil)

// elevenLabsVoiceSettings mirrors the API's voice_settings object.
type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// elevenLabsRequest is the TTS request payload.
type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	LanguageCode  string                  `json:"language_code,omitempty"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

// NewElevenLabsTTS creates a synthesizer. A nil selector falls back to the
// gender-keyed default.
func NewElevenLabsTTS(config ElevenLabsConfig, selector VoiceSelector, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("eleven labs API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}
	outputFormat := config.OutputFormat
	if outputFormat == "" {
		outputFormat = defaultOutputFormat
	}
	if selector == nil {
		selector = NewGenderVoiceSelector()
	}

	return &ElevenLabsTTS{
		apiKey:       config.APIKey,
		apiBaseURL:   apiBaseURL,
		modelID:      modelID,
		outputFormat: outputFormat,
		selector:     selector,
		httpClient:   &http.Client{Timeout: requestTimeout},
		logger:       logger,
	}, nil
}

// Synthesize renders the text with a voice chosen from the speaker's
// profile and returns the full encoded audio payload.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text, language string, profile entities.VoiceProfile) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voice := e.selector.Select(profile)

	request := elevenLabsRequest{
		Text:         text,
		ModelID:      e.modelID,
		LanguageCode: primarySubtag(language),
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       voice.Stability,
			SimilarityBoost: voice.Clarity,
			Style:           voice.Style,
			Speed:           voice.Speed,
			UseSpeakerBoost: true,
		},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", e.apiBaseURL, voice.ID, e.outputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("eleven labs returned %d: %s", resp.StatusCode, string(errorBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	e.logger.Debug("synthesis completed",
		zap.String("voiceID", voice.ID),
		zap.String("gender", string(profile.Gender)),
		zap.Int("bytes", len(audio)))
	return audio, nil
}

// primarySubtag strips a region suffix: es-MX -> es. ElevenLabs expects
// bare ISO 639-1 codes.
func primarySubtag(tag string) string {
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}
