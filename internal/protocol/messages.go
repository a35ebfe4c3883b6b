// Package protocol defines the Twilio Media Streams wire messages exchanged
// over the per-leg websocket. Inbound events arrive as JSON text frames;
// outbound media and marks are tagged with the destination stream SID.
package protocol

import "encoding/json"

// Inbound event names.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventStop      = "stop"
	EventMark      = "mark"
)

// Custom stream parameters carried in the start event.
const (
	ParamRoomID   = "roomId"
	ParamLegType  = "legType"
	ParamLanguage = "language"
)

// InboundMessage is the envelope of every message received from the
// telephony transport. Only the field matching Event is populated.
type InboundMessage struct {
	Event          string        `json:"event"`
	SequenceNumber string        `json:"sequenceNumber,omitempty"`
	StreamSid      string        `json:"streamSid,omitempty"`
	Start          *StartPayload `json:"start,omitempty"`
	Media          *MediaPayload `json:"media,omitempty"`
	Mark           *MarkPayload  `json:"mark,omitempty"`
}

// StartPayload announces a new media stream and carries the call routing
// parameters the relay needs.
type StartPayload struct {
	StreamSid        string            `json:"streamSid"`
	AccountSid       string            `json:"accountSid"`
	CallSid          string            `json:"callSid"`
	Tracks           []string          `json:"tracks"`
	CustomParameters map[string]string `json:"customParameters"`
	MediaFormat      MediaFormat       `json:"mediaFormat"`
}

// MediaFormat describes the audio encoding of the stream.
type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

// MediaPayload carries one 20ms frame of base64 mu-law audio.
type MediaPayload struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

// MarkPayload acknowledges playback of a named utterance.
type MarkPayload struct {
	Name string `json:"name"`
}

// ParseInbound decodes one inbound frame. Unrecognized events are returned
// as-is; the caller decides whether to ignore them.
func ParseInbound(data []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// OutboundMedia is one frame of synthesized audio sent back to a leg.
type OutboundMedia struct {
	Event     string       `json:"event"`
	StreamSid string       `json:"streamSid"`
	Media     MediaPayload `json:"media"`
}

// OutboundMark signals that a full synthesized utterance has been streamed.
type OutboundMark struct {
	Event     string      `json:"event"`
	StreamSid string      `json:"streamSid"`
	Mark      MarkPayload `json:"mark"`
}

// OutboundDisconnect tells the remaining leg that its peer's session is
// gone.
type OutboundDisconnect struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// EventForceDisconnect is the outbound event name for session teardown.
const EventForceDisconnect = "force-disconnect"

// NewMediaMessage builds an outbound media frame.
func NewMediaMessage(streamSid, payloadB64 string) ([]byte, error) {
	return json.Marshal(OutboundMedia{
		Event:     EventMedia,
		StreamSid: streamSid,
		Media:     MediaPayload{Payload: payloadB64},
	})
}

// NewMarkMessage builds an outbound completion marker.
func NewMarkMessage(streamSid, name string) ([]byte, error) {
	return json.Marshal(OutboundMark{
		Event:     EventMark,
		StreamSid: streamSid,
		Mark:      MarkPayload{Name: name},
	})
}

// NewDisconnectMessage builds a force-disconnect notice.
func NewDisconnectMessage(reason string) ([]byte, error) {
	return json.Marshal(OutboundDisconnect{
		Event:  EventForceDisconnect,
		Reason: reason,
	})
}
