package entities

// Gender is the coarse voice category used for synthesis voice selection.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// Voice profile bounds. Analysis results are always clamped into these.
const (
	PitchMin  = -20
	PitchMax  = 20
	SpeedMin  = 0.75
	SpeedMax  = 1.5
	EnergyMin = -10
	EnergyMax = 10
)

// Smoothing weights for blending a fresh analysis into a cached profile.
const (
	SmoothingOld = 0.7
	SmoothingNew = 0.3
)

// VoiceProfile captures the speaker characteristics extracted from a
// segment of audio. It personalizes the synthesized voice on the peer side.
type VoiceProfile struct {
	Pitch       int     `json:"pitch_adjustment"`
	Speed       float64 `json:"speed_multiplier"`
	Energy      int     `json:"energy_adjustment"`
	Gender      Gender  `json:"gender"`
	SampleCount int     `json:"sample_count"`
}

// NeutralProfile is the identity profile used before any analysis has
// succeeded for a speaker.
func NeutralProfile() VoiceProfile {
	return VoiceProfile{
		Pitch:  0,
		Speed:  1.0,
		Energy: 0,
		Gender: GenderNeutral,
	}
}

// Blend combines a cached profile with a freshly analyzed one using a
// fixed-weight exponential moving average. Pitch and energy are rounded
// back to integers, speed stays a float. Gender is replaced outright;
// smoothing a categorical value makes no sense.
func (p VoiceProfile) Blend(fresh VoiceProfile) VoiceProfile {
	return VoiceProfile{
		Pitch:       roundBlend(p.Pitch, fresh.Pitch),
		Speed:       SmoothingOld*p.Speed + SmoothingNew*fresh.Speed,
		Energy:      roundBlend(p.Energy, fresh.Energy),
		Gender:      fresh.Gender,
		SampleCount: p.SampleCount + 1,
	}
}

func roundBlend(old, fresh int) int {
	v := SmoothingOld*float64(old) + SmoothingNew*float64(fresh)
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}
