// Package auth issues and validates the room participation tokens handed
// out by the HTTP API and checked on the media stream upgrade.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 4 * time.Hour

// RoomClaims represents the claims in a room participation token.
type RoomClaims struct {
	RoomID  string `json:"room_id"`
	LegType string `json:"leg_type"`
	jwt.RegisteredClaims
}

// Authenticator signs and validates room tokens with a shared secret.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator creates an authenticator. A zero ttl uses the default.
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl}, nil
}

// GenerateRoomToken issues a token binding a participant to one leg of a
// room.
func (a *Authenticator) GenerateRoomToken(roomID, legType string) (string, error) {
	claims := &RoomClaims{
		RoomID:  roomID,
		LegType: legType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken validates a room token and returns its claims.
func (a *Authenticator) ValidateToken(tokenString string) (*RoomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RoomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*RoomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrInvalidKey
}
