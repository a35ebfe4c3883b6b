// Package translate provides Translator adapters for the external text
// translation service.
package translate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
)

const defaultModel = "gemini-2.0-flash"

// GeminiTranslator implements Translator using the Gemini API.
type GeminiTranslator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.Translator = (*GeminiTranslator)(nil)

// NewGeminiTranslator creates a translator backed by Gemini.
func NewGeminiTranslator(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiTranslator{
		client: client,
		model:  defaultModel,
		logger: logger,
	}, nil
}

// Translate converts text between language tags. Same-language input is
// returned unchanged without touching the API.
func (g *GeminiTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	if sameLanguage(fromLang, toLang) {
		return text, nil
	}

	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Reply with the translation only, no explanations.\n\n%s",
		fromLang, toLang, text)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}

	translated := strings.TrimSpace(resp.Text())
	if translated == "" {
		return "", fmt.Errorf("empty translation for %q", text)
	}

	g.logger.Debug("translation completed",
		zap.String("from", fromLang),
		zap.String("to", toLang),
		zap.Int("chars", len(translated)))
	return translated, nil
}

// sameLanguage compares the primary subtags, so en-US and en-GB count as
// the same language.
func sameLanguage(a, b string) bool {
	base := func(tag string) string {
		if i := strings.IndexByte(tag, '-'); i > 0 {
			return strings.ToLower(tag[:i])
		}
		return strings.ToLower(tag)
	}
	return base(a) == base(b)
}
