package tts

import (
	"context"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
)

// MockSynthesizer returns a short silent mu-law payload for development
// without an API key.
type MockSynthesizer struct {
	logger *zap.Logger
}

var _ repositories.Synthesizer = (*MockSynthesizer)(nil)

// NewMockSynthesizer creates the mock.
func NewMockSynthesizer(logger *zap.Logger) *MockSynthesizer {
	return &MockSynthesizer{logger: logger}
}

// Synthesize returns 500ms of mu-law silence regardless of input.
func (m *MockSynthesizer) Synthesize(_ context.Context, text, language string, profile entities.VoiceProfile) ([]byte, error) {
	m.logger.Info("mock synthesis",
		zap.String("language", language),
		zap.String("gender", string(profile.Gender)),
		zap.Int("chars", len(text)))

	audio := make([]byte, 4000) // 500ms at 8kHz
	for i := range audio {
		audio[i] = 0xFF // mu-law zero
	}
	return audio, nil
}
