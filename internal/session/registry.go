// Package session tracks active call rooms and the two processor legs
// attached to each. The registry is the only mutable state shared across
// legs; every operation is atomic under a single mutex.
package session

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrRoomNotFound is returned when an operation names a room that was
	// never created or has already been removed.
	ErrRoomNotFound = errors.New("room not found")

	// ErrPeerNotReady is returned by LookupPeer when the opposite slot is
	// still empty. This is a normal condition while the peer dials in.
	ErrPeerNotReady = errors.New("peer not ready")
)

// LegType names one of the two participant slots of a room.
type LegType string

const (
	LegFirst  LegType = "first"
	LegSecond LegType = "second"
)

// Valid reports whether the leg type names a real slot.
func (lt LegType) Valid() bool {
	return lt == LegFirst || lt == LegSecond
}

// Opposite returns the other slot.
func (lt LegType) Opposite() LegType {
	if lt == LegFirst {
		return LegSecond
	}
	return LegFirst
}

func (lt LegType) slot() int {
	if lt == LegSecond {
		return 1
	}
	return 0
}

// Leg is the view of a connection processor the registry and the outbound
// streamer need. Send operations must be safe to call from a foreign leg's
// pipeline goroutine and must never block on the target leg's own loop.
type Leg interface {
	Language() string
	Connected() bool
	SendMedia(payloadB64 string) error
	SendMark(name string) error
	SendDisconnect(reason string) error
}

// Room is a two-slot session record for one active call.
type Room struct {
	ID        string
	CreatedAt time.Time

	legs  [2]Leg
	langs [2]string
}

// RoomInfo is the read-only view exposed to HTTP-facing handlers.
type RoomInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	LanguageA     string    `json:"language_a"`
	LanguageB     string    `json:"language_b"`
	FirstAttached bool      `json:"first_attached"`
	SecondAttached bool     `json:"second_attached"`
}

// Registry is the process-wide room map. All methods are safe for
// concurrent use from any leg.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

// Create registers a new room with the first leg's language declared. A
// duplicate id is ignored; id uniqueness is the caller's responsibility.
func (r *Registry) Create(roomID, initialLanguage string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[roomID]; exists {
		r.logger.Warn("room already exists", zap.String("roomID", roomID))
		return
	}

	room := &Room{ID: roomID, CreatedAt: time.Now()}
	room.langs[0] = initialLanguage
	r.rooms[roomID] = room

	r.logger.Info("room created",
		zap.String("roomID", roomID),
		zap.String("language", initialLanguage))
}

// Attach places a leg into its slot, overwriting any prior occupant.
// Re-registration after a reconnect is expected, so the last writer wins.
func (r *Registry) Attach(roomID string, legType LegType, language string, leg Leg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	i := legType.slot()
	room.legs[i] = leg
	room.langs[i] = language

	r.logger.Info("leg attached",
		zap.String("roomID", roomID),
		zap.String("legType", string(legType)),
		zap.String("language", language))
	return nil
}

// LookupPeer returns the opposite slot's leg and its declared language.
func (r *Registry) LookupPeer(roomID string, legType LegType) (Leg, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, "", ErrRoomNotFound
	}

	i := legType.Opposite().slot()
	if room.legs[i] == nil {
		return nil, "", ErrPeerNotReady
	}
	return room.legs[i], room.langs[i], nil
}

// Detach nulls the slot but keeps the room. A stop event must not destroy
// a room mid-call while the peer may still be speaking; deletion is always
// explicit.
func (r *Registry) Detach(roomID string, legType LegType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	room.legs[legType.slot()] = nil

	r.logger.Info("leg detached",
		zap.String("roomID", roomID),
		zap.String("legType", string(legType)))
}

// Remove deletes the room and returns any legs that were still attached so
// the caller can notify them.
func (r *Registry) Remove(roomID string) []Leg {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	delete(r.rooms, roomID)

	var attached []Leg
	for _, leg := range room.legs {
		if leg != nil {
			attached = append(attached, leg)
		}
	}

	r.logger.Info("room removed", zap.String("roomID", roomID))
	return attached
}

// Info returns the read-only view of a room for HTTP handlers.
func (r *Registry) Info(roomID string) (RoomInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return RoomInfo{}, ErrRoomNotFound
	}
	return RoomInfo{
		ID:             room.ID,
		CreatedAt:      room.CreatedAt,
		LanguageA:      room.langs[0],
		LanguageB:      room.langs[1],
		FirstAttached:  room.legs[0] != nil,
		SecondAttached: room.legs[1] != nil,
	}, nil
}

// Len returns the number of active rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// SweepExpired removes every room older than maxAge and returns how many
// were dropped. Legs still attached to an expired room get a disconnect.
func (r *Registry) SweepExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	var expired []*Room
	for id, room := range r.rooms {
		if room.CreatedAt.Before(cutoff) {
			expired = append(expired, room)
			delete(r.rooms, id)
		}
	}
	r.mu.Unlock()

	for _, room := range expired {
		for _, leg := range room.legs {
			if leg != nil {
				if err := leg.SendDisconnect("session expired"); err != nil {
					r.logger.Warn("failed to notify expired leg",
						zap.String("roomID", room.ID),
						zap.Error(err))
				}
			}
		}
		r.logger.Info("room expired", zap.String("roomID", room.ID))
	}
	return len(expired)
}

// StartSweeper runs SweepExpired on a periodic tick until stop is closed.
func (r *Registry) StartSweeper(interval, maxAge time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := r.SweepExpired(maxAge); n > 0 {
					r.logger.Info("expired sessions swept", zap.Int("count", n))
				}
			}
		}
	}()
}
