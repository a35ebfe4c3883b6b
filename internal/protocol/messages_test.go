package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseInboundStart(t *testing.T) {
	raw := `{
		"event": "start",
		"sequenceNumber": "1",
		"streamSid": "MZ123",
		"start": {
			"streamSid": "MZ123",
			"accountSid": "AC456",
			"callSid": "CA789",
			"tracks": ["inbound"],
			"customParameters": {
				"roomId": "room-1",
				"legType": "first",
				"language": "en-US"
			},
			"mediaFormat": {"encoding": "audio/x-mulaw", "sampleRate": 8000, "channels": 1}
		}
	}`

	msg, err := ParseInbound([]byte(raw))
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}
	if msg.Event != EventStart {
		t.Errorf("event = %q, want start", msg.Event)
	}
	if msg.Start == nil {
		t.Fatal("start payload missing")
	}
	if msg.Start.CustomParameters[ParamRoomID] != "room-1" {
		t.Errorf("roomId = %q", msg.Start.CustomParameters[ParamRoomID])
	}
	if msg.Start.MediaFormat.SampleRate != 8000 {
		t.Errorf("sampleRate = %d", msg.Start.MediaFormat.SampleRate)
	}
}

func TestParseInboundMedia(t *testing.T) {
	raw := `{"event":"media","streamSid":"MZ123","media":{"track":"inbound","chunk":"2","timestamp":"40","payload":"f39/fw=="}}`

	msg, err := ParseInbound([]byte(raw))
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}
	if msg.Event != EventMedia || msg.Media == nil {
		t.Fatal("media event not parsed")
	}
	if msg.Media.Payload != "f39/fw==" {
		t.Errorf("payload = %q", msg.Media.Payload)
	}
}

func TestParseInboundGarbage(t *testing.T) {
	if _, err := ParseInbound([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewMediaMessage(t *testing.T) {
	data, err := NewMediaMessage("MZ123", "AAAA")
	if err != nil {
		t.Fatalf("NewMediaMessage: %v", err)
	}

	var out OutboundMedia
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Event != EventMedia || out.StreamSid != "MZ123" || out.Media.Payload != "AAAA" {
		t.Errorf("unexpected media message: %+v", out)
	}
}

func TestNewMarkMessage(t *testing.T) {
	data, err := NewMarkMessage("MZ123", "utterance-1")
	if err != nil {
		t.Fatalf("NewMarkMessage: %v", err)
	}

	var out OutboundMark
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Event != EventMark || out.Mark.Name != "utterance-1" {
		t.Errorf("unexpected mark message: %+v", out)
	}
}

func TestNewDisconnectMessage(t *testing.T) {
	data, err := NewDisconnectMessage("peer disconnected")
	if err != nil {
		t.Fatalf("NewDisconnectMessage: %v", err)
	}

	var out OutboundDisconnect
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Event != EventForceDisconnect || out.Reason != "peer disconnected" {
		t.Errorf("unexpected disconnect message: %+v", out)
	}
}
