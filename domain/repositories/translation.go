package repositories

import "context"

// Translator abstracts the external text translation service.
type Translator interface {
	// Translate converts text between two language tags. Same-language
	// input is returned unchanged.
	Translate(ctx context.Context, text, fromLang, toLang string) (string, error)
}
