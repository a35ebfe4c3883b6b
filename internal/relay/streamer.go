package relay

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
)

// Streamer paces a complete synthesized utterance onto a destination leg's
// transport in fixed-size frames, ending with a completion marker.
type Streamer struct {
	frameBytes     int
	framesPerPause int
	pause          time.Duration
	logger         *zap.Logger
}

// NewStreamer creates a streamer with the given chunking parameters.
func NewStreamer(cfg Config, logger *zap.Logger) *Streamer {
	return &Streamer{
		frameBytes:     cfg.FrameBytes,
		framesPerPause: cfg.FramesPerPause,
		pause:          cfg.FramePause,
		logger:         logger,
	}
}

// Send splits the payload into frames and writes them to the destination.
// A missing or closed destination is a silent drop: the audio was already
// generated but nobody is listening. A send failure abandons the remainder
// without retry.
func (s *Streamer) Send(dst session.Leg, payload []byte) error {
	if dst == nil || !dst.Connected() {
		s.logger.Debug("destination gone, audio dropped",
			zap.Int("bytes", len(payload)))
		return nil
	}

	sent := 0
	for off := 0; off < len(payload); off += s.frameBytes {
		end := off + s.frameBytes
		if end > len(payload) {
			end = len(payload)
		}

		if err := dst.SendMedia(base64.StdEncoding.EncodeToString(payload[off:end])); err != nil {
			s.logger.Error("frame send failed, abandoning utterance",
				zap.Int("sentFrames", sent),
				zap.Error(err))
			return err
		}
		sent++

		// The transport has no flow control; a short sleep every few
		// frames keeps its receive buffer from overflowing.
		if sent%s.framesPerPause == 0 {
			time.Sleep(s.pause)
		}
	}

	if err := dst.SendMark(uuid.NewString()); err != nil {
		s.logger.Error("mark send failed", zap.Error(err))
		return err
	}

	s.logger.Debug("utterance streamed",
		zap.Int("frames", sent),
		zap.Int("bytes", len(payload)))
	return nil
}
