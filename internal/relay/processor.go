// Package relay implements the per-call audio pipeline: adaptive segment
// buffering of the inbound frame stream, the translation pipeline driving
// the external collaborators, and paced re-streaming of synthesized audio
// to the peer leg.
package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
	"github.com/bhanuprakash2002/twilio-translation-backend/domain/repositories"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/audio"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/protocol"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/voice"
)

// ErrMissingLanguage rejects a stream-start event without a language tag.
// A leg without a declared language is never registered.
var ErrMissingLanguage = errors.New("language is required")

// Transport is the leg's outbound channel. Send must never block on the
// leg's own event loop; implementations enqueue onto a buffered writer.
type Transport interface {
	Send(payload []byte) error
	Open() bool
}

// Registry is the session store the processor registers into. Satisfied by
// *session.Registry; tests inject fakes.
type Registry interface {
	Attach(roomID string, legType session.LegType, language string, leg session.Leg) error
	Detach(roomID string, legType session.LegType)
	LookupPeer(roomID string, legType session.LegType) (session.Leg, string, error)
	Remove(roomID string) []session.Leg
}

// Pipeline bundles the external collaborators one flush runs through.
type Pipeline struct {
	Transcriber repositories.Transcriber
	Translator  repositories.Translator
	Synthesizer repositories.Synthesizer
}

// Observer is notified synchronously after every successful translation.
// The transcript history store implements it.
type Observer interface {
	OnTranscript(rec entities.TranscriptRecord)
}

// Stats counts per-leg pipeline activity. Counters only go up.
type Stats struct {
	framesReceived atomic.Int64
	transcriptions atomic.Int64
	translations   atomic.Int64
	audiosSent     atomic.Int64
	errors         atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	FramesReceived int64 `json:"frames_received"`
	Transcriptions int64 `json:"transcriptions"`
	Translations   int64 `json:"translations"`
	AudiosSent     int64 `json:"audios_sent"`
	Errors         int64 `json:"errors"`
}

// Processor owns one call leg's buffering state machine. Inbound events
// (frames, timer firings, stop) mutate the buffer under the leg mutex;
// the flush pipeline runs on its own goroutine guarded by the busy flag,
// so at most one pipeline is in flight per leg while frames keep
// accumulating into the next segment.
type Processor struct {
	transport Transport
	registry  Registry
	pipeline  Pipeline
	analyzer  *voice.Analyzer
	streamer  *Streamer
	observer  Observer
	cfg       Config
	logger    *zap.Logger

	mu         sync.Mutex
	started    bool
	closed     bool
	busy       bool
	buffer     []byte
	bufferedMs int
	flushTimer *time.Timer

	roomID    string
	legType   session.LegType
	language  string
	speakerID string
	streamSid string

	stats Stats
}

// NewProcessor creates a processor for a freshly opened transport. The leg
// is not registered until Start is called with the stream parameters.
func NewProcessor(
	transport Transport,
	registry Registry,
	pipeline Pipeline,
	analyzer *voice.Analyzer,
	streamer *Streamer,
	observer Observer,
	cfg Config,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		transport: transport,
		registry:  registry,
		pipeline:  pipeline,
		analyzer:  analyzer,
		streamer:  streamer,
		observer:  observer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the leg into its session slot. Without a language the leg
// is rejected and never registered.
func (p *Processor) Start(roomID string, legType session.LegType, language, streamSid string) error {
	if language == "" {
		return ErrMissingLanguage
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("processor already closed")
	}
	p.roomID = roomID
	p.legType = legType
	p.language = language
	p.streamSid = streamSid
	p.speakerID = roomID + ":" + string(legType)
	p.started = true
	p.mu.Unlock()

	if err := p.registry.Attach(roomID, legType, language, p); err != nil {
		return err
	}

	p.logger.Info("leg started",
		zap.String("roomID", roomID),
		zap.String("legType", string(legType)),
		zap.String("language", language),
		zap.String("streamSid", streamSid))
	return nil
}

// HandleMedia buffers one 20ms encoded frame and re-evaluates the flush
// triggers: immediate on max duration, deferred on silence.
func (p *Processor) HandleMedia(payloadB64 string) {
	frame, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		p.stats.errors.Add(1)
		p.logger.Warn("undecodable media payload", zap.Error(err))
		return
	}

	p.mu.Lock()
	if p.closed || !p.started {
		p.mu.Unlock()
		return
	}
	p.buffer = append(p.buffer, frame...)
	p.bufferedMs += audio.FrameMs
	p.stats.framesReceived.Add(1)
	p.cancelTimerLocked()

	if p.bufferedMs >= p.cfg.MaxBufferMs && !p.busy {
		p.mu.Unlock()
		p.flush()
		return
	}
	p.armTimerLocked()
	p.mu.Unlock()
}

// HandleStop ends the leg cleanly: buffers cleared, timer canceled, profile
// evicted, session slot detached. The room itself stays; the peer may still
// be speaking.
func (p *Processor) HandleStop() {
	p.cleanup()
}

// HandleDisconnect runs when the leg's transport closes or errors. On top
// of the stop cleanup it tears the whole session down and tells the peer.
func (p *Processor) HandleDisconnect() {
	started := p.cleanup()
	if !started {
		return
	}

	for _, leg := range p.registry.Remove(p.roomID) {
		if leg == session.Leg(p) {
			continue
		}
		if err := leg.SendDisconnect("peer disconnected"); err != nil {
			p.logger.Warn("failed to notify peer of disconnect",
				zap.String("roomID", p.roomID),
				zap.Error(err))
		}
	}
}

// cleanup is the single idempotent teardown path shared by stop, close and
// transport error. Reports whether the leg had ever been started.
func (p *Processor) cleanup() bool {
	p.mu.Lock()
	if p.closed {
		started := p.started
		p.mu.Unlock()
		return started
	}
	p.closed = true
	p.cancelTimerLocked()
	p.buffer = nil
	p.bufferedMs = 0
	started := p.started
	p.mu.Unlock()

	if started {
		p.analyzer.Evict(p.speakerID)
		p.registry.Detach(p.roomID, p.legType)
		p.logger.Info("leg cleaned up",
			zap.String("roomID", p.roomID),
			zap.String("legType", string(p.legType)))
	}
	return started
}

// flush swaps the buffered segment out before any I/O so frames arriving
// during processing start a fresh segment. The busy flag keeps the
// max-duration path and the silence-timer path from racing into two
// concurrent pipelines.
func (p *Processor) flush() {
	p.mu.Lock()
	if p.busy || p.closed || len(p.buffer) == 0 {
		p.mu.Unlock()
		return
	}
	segment := p.buffer
	segmentMs := p.bufferedMs
	p.buffer = nil
	p.bufferedMs = 0

	if segmentMs < p.cfg.MinBufferMs {
		p.mu.Unlock()
		p.logger.Debug("segment below minimum, dropped",
			zap.String("speakerID", p.speakerID),
			zap.Int("durationMs", segmentMs))
		return
	}
	p.busy = true
	p.mu.Unlock()

	go p.runPipeline(segment, segmentMs)
}

// runPipeline drives one segment through decode, analysis and the external
// collaborators. Every failure drops the segment and nothing else: busy is
// cleared on all exits so the leg keeps making progress.
func (p *Processor) runPipeline(segment []byte, segmentMs int) {
	defer p.finishPipeline()

	ctx := context.Background()
	pcm := audio.DecodeMulaw(segment)
	profile := p.analyzer.Analyze(pcm, p.speakerID)

	transcript, err := p.pipeline.Transcriber.Transcribe(ctx, pcm, p.language)
	if err != nil {
		p.stats.errors.Add(1)
		p.logger.Error("transcription failed",
			zap.String("speakerID", p.speakerID),
			zap.Int("segmentMs", segmentMs),
			zap.Error(err))
		return
	}
	transcript = strings.TrimSpace(transcript)
	if len(transcript) < p.cfg.MinTranscriptChars {
		p.logger.Debug("transcript too short, segment dropped",
			zap.String("speakerID", p.speakerID))
		return
	}
	p.stats.transcriptions.Add(1)

	peer, toLang, err := p.registry.LookupPeer(p.roomID, p.legType)
	if err != nil {
		// A missing peer is normal while the other party dials in.
		p.logger.Debug("no peer for segment",
			zap.String("roomID", p.roomID),
			zap.Error(err))
		return
	}

	translated := transcript
	if toLang != p.language {
		translated, err = p.pipeline.Translator.Translate(ctx, transcript, p.language, toLang)
		if err != nil {
			// Pass-through: a failed translation falls back to the
			// original text rather than dropping the utterance.
			p.stats.errors.Add(1)
			p.logger.Error("translation failed, passing through",
				zap.String("from", p.language),
				zap.String("to", toLang),
				zap.Error(err))
			translated = transcript
		}
	}
	p.stats.translations.Add(1)

	if p.observer != nil {
		p.observer.OnTranscript(entities.TranscriptRecord{
			RoomID:      p.roomID,
			LegType:     string(p.legType),
			Transcript:  transcript,
			Translation: translated,
			FromLang:    p.language,
			ToLang:      toLang,
			Timestamp:   time.Now(),
		})
	}

	synthesized, err := p.pipeline.Synthesizer.Synthesize(ctx, translated, toLang, profile)
	if err != nil || len(synthesized) == 0 {
		p.stats.errors.Add(1)
		p.logger.Error("synthesis failed",
			zap.String("to", toLang),
			zap.Error(err))
		return
	}

	if err := p.streamer.Send(peer, synthesized); err != nil {
		p.stats.errors.Add(1)
		p.logger.Error("outbound streaming failed",
			zap.String("roomID", p.roomID),
			zap.Error(err))
		return
	}
	p.stats.audiosSent.Add(1)
}

// finishPipeline clears busy and re-evaluates whatever accumulated while
// the pipeline was in flight, so a deferred segment is not stranded.
func (p *Processor) finishPipeline() {
	p.mu.Lock()
	p.busy = false
	pending := p.bufferedMs
	closed := p.closed
	if !closed && pending > 0 && pending < p.cfg.MaxBufferMs {
		p.cancelTimerLocked()
		p.armTimerLocked()
	}
	p.mu.Unlock()

	if !closed && pending >= p.cfg.MaxBufferMs {
		p.flush()
	}
}

// Single-slot timer: always cancel-then-rearm, never stack.
func (p *Processor) armTimerLocked() {
	gap := time.Duration(p.cfg.SilenceGapMs) * time.Millisecond
	p.flushTimer = time.AfterFunc(gap, p.flush)
}

func (p *Processor) cancelTimerLocked() {
	if p.flushTimer != nil {
		p.flushTimer.Stop()
		p.flushTimer = nil
	}
}

// Stats returns a snapshot of the leg's counters.
func (p *Processor) Stats() StatsSnapshot {
	return StatsSnapshot{
		FramesReceived: p.stats.framesReceived.Load(),
		Transcriptions: p.stats.transcriptions.Load(),
		Translations:   p.stats.translations.Load(),
		AudiosSent:     p.stats.audiosSent.Load(),
		Errors:         p.stats.errors.Load(),
	}
}

// The processor is the session.Leg its peer sends into. These sends run on
// the peer's pipeline goroutine and only touch the transport, never this
// leg's mutex, so two legs draining into each other cannot deadlock.

// Language returns the leg's declared language tag.
func (p *Processor) Language() string { return p.language }

// Connected reports whether the leg's transport is still open.
func (p *Processor) Connected() bool { return p.transport.Open() }

// SendMedia writes one outbound frame tagged with this leg's stream SID.
func (p *Processor) SendMedia(payloadB64 string) error {
	msg, err := protocol.NewMediaMessage(p.streamSid, payloadB64)
	if err != nil {
		return err
	}
	return p.transport.Send(msg)
}

// SendMark writes the completion marker for a finished utterance.
func (p *Processor) SendMark(name string) error {
	msg, err := protocol.NewMarkMessage(p.streamSid, name)
	if err != nil {
		return err
	}
	return p.transport.Send(msg)
}

// SendDisconnect tells this leg that its session is gone.
func (p *Processor) SendDisconnect(reason string) error {
	msg, err := protocol.NewDisconnectMessage(reason)
	if err != nil {
		return err
	}
	return p.transport.Send(msg)
}
