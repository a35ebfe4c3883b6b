package repositories

import (
	"context"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
)

// Synthesizer abstracts the external speech synthesis service. The returned
// audio is 8kHz mu-law, ready for the telephony transport.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string, profile entities.VoiceProfile) ([]byte, error)
}
