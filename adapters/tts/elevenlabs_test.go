package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
)

func TestNewElevenLabsTTSRequiresAPIKey(t *testing.T) {
	_, err := NewElevenLabsTTS(ElevenLabsConfig{}, nil, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "key"}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tts.Synthesize(context.Background(), "   ", "en-US", entities.NeutralProfile()); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestSynthesizeSendsExpectedRequest(t *testing.T) {
	audio := []byte{0xFF, 0x7F, 0xFF, 0x7F}
	var gotPath, gotFormat, gotKey string
	var gotBody elevenLabsRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		gotKey = r.Header.Get("xi-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(audio)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "secret",
		APIBaseURL: server.URL,
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile := entities.NeutralProfile()
	profile.Gender = entities.GenderFemale
	got, err := tts.Synthesize(context.Background(), "hola", "es-MX", profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(got) != string(audio) {
		t.Errorf("audio mismatch: got %v want %v", got, audio)
	}
	if !strings.Contains(gotPath, defaultFemaleVoiceID) {
		t.Errorf("expected female voice in path, got %q", gotPath)
	}
	if gotFormat != "ulaw_8000" {
		t.Errorf("output_format = %q, want ulaw_8000", gotFormat)
	}
	if gotKey != "secret" {
		t.Errorf("xi-api-key = %q, want secret", gotKey)
	}
	if gotBody.Text != "hola" {
		t.Errorf("text = %q, want hola", gotBody.Text)
	}
	if gotBody.LanguageCode != "es" {
		t.Errorf("language_code = %q, want es", gotBody.LanguageCode)
	}
	if gotBody.ModelID != defaultModelID {
		t.Errorf("model_id = %q, want %q", gotBody.ModelID, defaultModelID)
	}
}

func TestSynthesizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "bad", APIBaseURL: server.URL}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tts.Synthesize(context.Background(), "hello", "en-US", entities.NeutralProfile())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should mention status code, got: %v", err)
	}
}

func TestGenderVoiceSelector(t *testing.T) {
	selector := NewGenderVoiceSelector()

	cases := []struct {
		gender entities.Gender
		wantID string
	}{
		{entities.GenderMale, defaultMaleVoiceID},
		{entities.GenderFemale, defaultFemaleVoiceID},
		{entities.GenderNeutral, defaultNeutralVoiceID},
	}
	for _, tc := range cases {
		profile := entities.NeutralProfile()
		profile.Gender = tc.gender
		if got := selector.Select(profile).ID; got != tc.wantID {
			t.Errorf("gender %s: voice = %q, want %q", tc.gender, got, tc.wantID)
		}
	}
}

func TestGenderVoiceSelectorClampsSpeed(t *testing.T) {
	selector := NewGenderVoiceSelector()

	profile := entities.NeutralProfile()
	profile.Speed = 1.5
	if got := selector.Select(profile).Speed; got != 1.2 {
		t.Errorf("speed = %v, want 1.2", got)
	}

	profile.Speed = 0
	if got := selector.Select(profile).Speed; got != 1.0 {
		t.Errorf("zero speed should default to 1.0, got %v", got)
	}
}

func TestFixedVoiceSelector(t *testing.T) {
	selector := &FixedVoiceSelector{VoiceID: "custom-voice"}
	profile := entities.NeutralProfile()
	profile.Gender = entities.GenderMale
	voice := selector.Select(profile)
	if voice.ID != "custom-voice" {
		t.Errorf("voice = %q, want custom-voice", voice.ID)
	}
	if voice.Speed != 1.0 {
		t.Errorf("speed = %v, want 1.0", voice.Speed)
	}
}
