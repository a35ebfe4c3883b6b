package stt

import (
	"context"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
)

// MockTranscriber returns a canned transcript for development without
// Google credentials.
type MockTranscriber struct {
	logger *zap.Logger
}

var _ repositories.Transcriber = (*MockTranscriber)(nil)

// NewMockTranscriber creates the mock.
func NewMockTranscriber(logger *zap.Logger) *MockTranscriber {
	return &MockTranscriber{logger: logger}
}

// Transcribe ignores the audio and returns a fixed phrase.
func (m *MockTranscriber) Transcribe(_ context.Context, pcm []int16, language string) (string, error) {
	m.logger.Info("mock transcription",
		zap.Int("samples", len(pcm)),
		zap.String("language", language))
	return "hello, how are you?", nil
}
