package repositories

import "context"

// Transcriber abstracts the external speech recognition service.
type Transcriber interface {
	// Transcribe converts 8kHz linear PCM audio in the given language to
	// text. An empty transcript and a failure are treated the same by the
	// caller: the segment is dropped.
	Transcribe(ctx context.Context, pcm []int16, language string) (string, error)
}
