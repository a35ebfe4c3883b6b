package tts

import (
	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
)

// Voice is a concrete synthesis voice plus its tuning parameters.
type Voice struct {
	ID        string
	Stability float64
	Clarity   float64
	Style     float64
	Speed     float64
}

// VoiceSelector maps a speaker's voice profile to a synthesis voice.
type VoiceSelector interface {
	Select(profile entities.VoiceProfile) Voice
}

// Stock ElevenLabs voice IDs used by the default selector.
const (
	defaultMaleVoiceID    = "pNInz6obpgDQGcFmaJgB" // Adam
	defaultFemaleVoiceID  = "21m00Tcm4TlvDq8ikWAM" // Rachel
	defaultNeutralVoiceID = "EXAVITQu4vr4xnSDxMaL" // Sarah
)

// GenderVoiceSelector picks a male or female stock voice from the profile's
// gender and carries the profile's speed into the voice settings.
type GenderVoiceSelector struct {
	MaleVoiceID    string
	FemaleVoiceID  string
	NeutralVoiceID string
}

// NewGenderVoiceSelector returns the default selector with stock voices.
func NewGenderVoiceSelector() *GenderVoiceSelector {
	return &GenderVoiceSelector{
		MaleVoiceID:    defaultMaleVoiceID,
		FemaleVoiceID:  defaultFemaleVoiceID,
		NeutralVoiceID: defaultNeutralVoiceID,
	}
}

// Select maps gender to a voice ID and profile speed to the speed setting.
func (s *GenderVoiceSelector) Select(profile entities.VoiceProfile) Voice {
	id := s.NeutralVoiceID
	switch profile.Gender {
	case entities.GenderMale:
		id = s.MaleVoiceID
	case entities.GenderFemale:
		id = s.FemaleVoiceID
	}
	return Voice{
		ID:        id,
		Stability: defaultStability,
		Clarity:   defaultClarity,
		Speed:     clampSpeed(profile.Speed),
	}
}

// FixedVoiceSelector always returns the same voice with neutral settings.
// Used when per-speaker voice switching is undesirable.
type FixedVoiceSelector struct {
	VoiceID string
}

// Select ignores the profile.
func (s *FixedVoiceSelector) Select(entities.VoiceProfile) Voice {
	return Voice{
		ID:        s.VoiceID,
		Stability: defaultStability,
		Clarity:   defaultClarity,
		Speed:     1.0,
	}
}

// ElevenLabs accepts speed in 0.7..1.2, narrower than the profile range.
func clampSpeed(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	if v < 0.7 {
		return 0.7
	}
	if v > 1.2 {
		return 1.2
	}
	return v
}
