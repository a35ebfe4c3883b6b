package relay

import "time"

// Config parameterizes the per-leg buffering state machine and the outbound
// streamer. One processor implementation covers every call variant; only
// these numbers change.
type Config struct {
	// MinBufferMs is the smallest segment worth transcribing. Shorter
	// segments are noise bursts and get dropped.
	MinBufferMs int

	// MaxBufferMs bounds worst-case latency: a segment this long is
	// flushed immediately without waiting for a pause.
	MaxBufferMs int

	// SilenceGapMs is how long the leg must stay quiet before the
	// deferred flush fires.
	SilenceGapMs int

	// MinTranscriptChars drops transcripts too short to translate.
	MinTranscriptChars int

	// FrameBytes is the encoded payload size of one outbound frame.
	FrameBytes int

	// FramesPerPause and FramePause throttle outbound streaming: after
	// every FramesPerPause frames the streamer sleeps for FramePause so
	// the telephony transport's receive buffer is not overwhelmed. The
	// transport offers no flow-control signal, so this approximates
	// backpressure.
	FramesPerPause int
	FramePause     time.Duration
}

// DefaultConfig returns the production buffering parameters.
func DefaultConfig() Config {
	return Config{
		MinBufferMs:        400,
		MaxBufferMs:        2000,
		SilenceGapMs:       700,
		MinTranscriptChars: 2,
		FrameBytes:         160,
		FramesPerPause:     10,
		FramePause:         5 * time.Millisecond,
	}
}
