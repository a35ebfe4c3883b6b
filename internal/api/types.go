package api

import (
	"time"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
)

// CreateRoomRequest represents the request payload for creating a room.
type CreateRoomRequest struct {
	Language string `json:"language" validate:"required"`
}

// CreateRoomResponse represents the response payload for room creation.
type CreateRoomResponse struct {
	RoomID    string    `json:"room_id"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenRequest represents the request payload for a room participation
// token.
type TokenRequest struct {
	LegType string `json:"leg_type" validate:"required"`
}

// TokenResponse represents the response payload for token issuance.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	RoomID    string    `json:"room_id"`
	LegType   string    `json:"leg_type"`
}

// RoomResponse wraps the registry's room view.
type RoomResponse struct {
	Room session.RoomInfo `json:"room"`
}

// TranscriptsResponse represents the response payload for the transcript
// polling endpoint.
type TranscriptsResponse struct {
	RoomID  string                      `json:"room_id"`
	Records []entities.TranscriptRecord `json:"records"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
