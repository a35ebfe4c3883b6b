// Package history keeps a bounded in-memory window of recent transcript
// records per room, consumed by the polling UI endpoint. The relay appends
// through the observer interface; nothing is ever persisted.
package history

import (
	"sync"
	"time"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
)

const (
	// DefaultMaxRecords caps the window per room.
	DefaultMaxRecords = 50

	// DefaultMaxAge expires records regardless of count.
	DefaultMaxAge = 10 * time.Minute
)

// Store is a rolling transcript window keyed by room. Safe for concurrent
// appends from both legs and reads from the HTTP poller.
type Store struct {
	maxRecords int
	maxAge     time.Duration

	mu    sync.Mutex
	rooms map[string][]entities.TranscriptRecord
}

// NewStore creates a store with the given bounds. Zero values fall back to
// the defaults.
func NewStore(maxRecords int, maxAge time.Duration) *Store {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{
		maxRecords: maxRecords,
		maxAge:     maxAge,
		rooms:      make(map[string][]entities.TranscriptRecord),
	}
}

// OnTranscript appends a record to its room's window, trimming to the cap.
// Implements the relay observer.
func (s *Store) OnTranscript(rec entities.TranscriptRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := append(s.rooms[rec.RoomID], rec)
	window = s.pruneLocked(window)
	if len(window) > s.maxRecords {
		window = window[len(window)-s.maxRecords:]
	}
	s.rooms[rec.RoomID] = window
}

// Recent returns the room's window, oldest first, with expired records
// dropped.
func (s *Store) Recent(roomID string) []entities.TranscriptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.pruneLocked(s.rooms[roomID])
	s.rooms[roomID] = window

	out := make([]entities.TranscriptRecord, len(window))
	copy(out, window)
	return out
}

// Drop discards a room's window entirely; called when the room is removed.
func (s *Store) Drop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

func (s *Store) pruneLocked(window []entities.TranscriptRecord) []entities.TranscriptRecord {
	cutoff := time.Now().Add(-s.maxAge)
	i := 0
	for i < len(window) && window[i].Timestamp.Before(cutoff) {
		i++
	}
	return window[i:]
}
