package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
)

// MockTranslator tags the input with the target language instead of
// translating, for development without an API key.
type MockTranslator struct {
	logger *zap.Logger
}

var _ repositories.Translator = (*MockTranslator)(nil)

// NewMockTranslator creates the mock.
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{logger: logger}
}

// Translate passes same-language input through and otherwise wraps the
// text with the target language tag.
func (m *MockTranslator) Translate(_ context.Context, text, fromLang, toLang string) (string, error) {
	if sameLanguage(fromLang, toLang) {
		return text, nil
	}
	m.logger.Info("mock translation",
		zap.String("from", fromLang),
		zap.String("to", toLang))
	return fmt.Sprintf("[%s] %s", toLang, text), nil
}
