package auth

import (
	"testing"
	"time"
)

func TestNewAuthenticatorRequiresSecret(t *testing.T) {
	if _, err := NewAuthenticator("", 0); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateAndValidateRoomToken(t *testing.T) {
	a, err := NewAuthenticator("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := a.GenerateRoomToken("room-42", "second")
	if err != nil {
		t.Fatalf("GenerateRoomToken failed: %v", err)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.RoomID != "room-42" {
		t.Errorf("room_id = %q, want room-42", claims.RoomID)
	}
	if claims.LegType != "second" {
		t.Errorf("leg_type = %q, want second", claims.LegType)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewAuthenticator("secret-a", time.Hour)
	verifier, _ := NewAuthenticator("secret-b", time.Hour)

	token, err := issuer.GenerateRoomToken("room-1", "first")
	if err != nil {
		t.Fatalf("GenerateRoomToken failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	a, _ := NewAuthenticator("test-secret", -time.Minute)
	a.ttl = -time.Minute // force expiry in the past

	token, err := a.GenerateRoomToken("room-1", "first")
	if err != nil {
		t.Fatalf("GenerateRoomToken failed: %v", err)
	}

	if _, err := a.ValidateToken(token); err == nil {
		t.Error("expected validation failure for expired token")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	a, _ := NewAuthenticator("test-secret", time.Hour)
	if _, err := a.ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
