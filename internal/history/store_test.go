package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
)

func record(roomID, text string, at time.Time) entities.TranscriptRecord {
	return entities.TranscriptRecord{
		RoomID:      roomID,
		LegType:     "first",
		Transcript:  text,
		Translation: text,
		FromLang:    "en-US",
		ToLang:      "es-ES",
		Timestamp:   at,
	}
}

func TestAppendAndRecent(t *testing.T) {
	s := NewStore(10, time.Minute)
	now := time.Now()

	s.OnTranscript(record("room-1", "one", now))
	s.OnTranscript(record("room-1", "two", now))
	s.OnTranscript(record("room-2", "other", now))

	got := s.Recent("room-1")
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Transcript != "one" || got[1].Transcript != "two" {
		t.Error("records out of order")
	}

	if len(s.Recent("room-2")) != 1 {
		t.Error("rooms share a window")
	}
	if len(s.Recent("unknown")) != 0 {
		t.Error("unknown room returned records")
	}
}

func TestWindowCap(t *testing.T) {
	s := NewStore(5, time.Minute)
	now := time.Now()

	for i := 0; i < 12; i++ {
		s.OnTranscript(record("room-1", fmt.Sprintf("msg-%d", i), now))
	}

	got := s.Recent("room-1")
	if len(got) != 5 {
		t.Fatalf("got %d records, want cap of 5", len(got))
	}
	if got[0].Transcript != "msg-7" || got[4].Transcript != "msg-11" {
		t.Errorf("wrong records kept: first=%q last=%q", got[0].Transcript, got[4].Transcript)
	}
}

func TestExpiry(t *testing.T) {
	s := NewStore(10, time.Minute)
	now := time.Now()

	s.OnTranscript(record("room-1", "stale", now.Add(-2*time.Minute)))
	s.OnTranscript(record("room-1", "fresh", now))

	got := s.Recent("room-1")
	if len(got) != 1 || got[0].Transcript != "fresh" {
		t.Errorf("expiry kept the wrong records: %v", got)
	}
}

func TestDrop(t *testing.T) {
	s := NewStore(10, time.Minute)
	s.OnTranscript(record("room-1", "one", time.Now()))

	s.Drop("room-1")

	if len(s.Recent("room-1")) != 0 {
		t.Error("records survived Drop")
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore(DefaultMaxRecords, DefaultMaxAge)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.OnTranscript(record("room-1", fmt.Sprintf("w%d-%d", n, j), time.Now()))
				s.Recent("room-1")
			}
		}(i)
	}
	wg.Wait()

	if got := len(s.Recent("room-1")); got != DefaultMaxRecords {
		t.Errorf("window holds %d records, want %d", got, DefaultMaxRecords)
	}
}
