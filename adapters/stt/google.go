package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/audio"
)

// GoogleTranscriber implements Transcriber using Google Cloud Speech.
// Segments are short utterances, so the synchronous Recognize call is
// enough; no streaming session is kept open.
type GoogleTranscriber struct {
	client *speech.Client
	logger *zap.Logger
}

var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a transcriber backed by Google Cloud Speech.
// Credentials come from the standard GOOGLE_APPLICATION_CREDENTIALS
// environment.
func NewGoogleTranscriber(ctx context.Context, logger *zap.Logger) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleTranscriber{client: client, logger: logger}, nil
}

// Transcribe sends one utterance-sized PCM segment for recognition and
// returns the top alternative.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, pcm []int16, language string) (string, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(audio.SampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: pcmToBytes(pcm),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	transcript := strings.Join(parts, " ")

	g.logger.Debug("transcription completed",
		zap.String("language", language),
		zap.Int("samples", len(pcm)),
		zap.Int("chars", len(transcript)))
	return transcript, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// pcmToBytes packs samples as little-endian 16-bit, the LINEAR16 layout.
func pcmToBytes(pcm []int16) []byte {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
