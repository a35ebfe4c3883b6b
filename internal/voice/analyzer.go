// Package voice derives per-speaker voice profiles from linear PCM audio.
// The profile drives synthesis on the peer side so the translated voice
// roughly resembles the original speaker.
package voice

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/domain/entities"
)

// Fundamental frequency search range for pitch detection.
const (
	pitchMinHz = 50
	pitchMaxHz = 500
)

// Analyzer extracts voice characteristics from PCM buffers and keeps a
// smoothed profile per speaker. Safe for concurrent use across legs.
type Analyzer struct {
	sampleRate int
	logger     *zap.Logger

	mu       sync.Mutex
	profiles map[string]entities.VoiceProfile
}

// NewAnalyzer creates an analyzer for the given sample rate.
func NewAnalyzer(sampleRate int, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		sampleRate: sampleRate,
		logger:     logger,
		profiles:   make(map[string]entities.VoiceProfile),
	}
}

// Analyze extracts a profile from the samples and folds it into the cached
// profile for the speaker. Pathological input (empty or flat) yields the
// neutral profile and leaves the cache untouched.
func (a *Analyzer) Analyze(samples []int16, speakerID string) entities.VoiceProfile {
	fresh, ok := a.extract(samples)
	if !ok {
		a.logger.Debug("voice analysis skipped",
			zap.String("speakerID", speakerID),
			zap.Int("samples", len(samples)))
		return entities.NeutralProfile()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	prev, cached := a.profiles[speakerID]
	if !cached {
		fresh.SampleCount = 1
		a.profiles[speakerID] = fresh
		return fresh
	}

	blended := prev.Blend(fresh)
	a.profiles[speakerID] = blended
	return blended
}

// Profile returns the cached profile for a speaker, or the neutral profile
// if none has been computed yet.
func (a *Analyzer) Profile(speakerID string) entities.VoiceProfile {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.profiles[speakerID]; ok {
		return p
	}
	return entities.NeutralProfile()
}

// Evict drops the cached profile for a speaker. Called when the owning leg
// cleans up.
func (a *Analyzer) Evict(speakerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.profiles, speakerID)
}

func (a *Analyzer) extract(samples []int16) (entities.VoiceProfile, bool) {
	if len(samples) < a.sampleRate/pitchMinHz {
		return entities.VoiceProfile{}, false
	}

	rms := rootMeanSquare(samples)
	if rms == 0 {
		// Flat signal, nothing to analyze.
		return entities.VoiceProfile{}, false
	}

	freq := a.dominantFrequency(samples)
	pitch := mapPitch(freq)
	speed := mapSpeed(a.zeroCrossingRate(samples))
	energy := mapEnergy(rms)

	gender := entities.GenderFemale
	if pitch < 0 {
		gender = entities.GenderMale
	}

	return entities.VoiceProfile{
		Pitch:       pitch,
		Speed:       speed,
		Energy:      energy,
		Gender:      gender,
		SampleCount: 1,
	}, true
}

// dominantFrequency runs a plain autocorrelation over the lag range that
// corresponds to 50-500Hz and returns the frequency of the best lag.
func (a *Analyzer) dominantFrequency(samples []int16) float64 {
	minLag := a.sampleRate / pitchMaxHz
	maxLag := a.sampleRate / pitchMinHz
	if maxLag >= len(samples) {
		maxLag = len(samples) - 1
	}

	bestLag := minLag
	bestCorr := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i < len(samples)-lag; i++ {
			corr += float64(samples[i]) * float64(samples[i+lag])
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	return float64(a.sampleRate) / float64(bestLag)
}

// zeroCrossingRate returns sign changes per second of audio.
func (a *Analyzer) zeroCrossingRate(samples []int16) float64 {
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	duration := float64(len(samples)) / float64(a.sampleRate)
	return float64(crossings) / duration
}

func rootMeanSquare(samples []int16) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// mapPitch converts a fundamental frequency into a bounded pitch adjustment
// through four linear segments. The band edges follow typical male and
// female fundamental ranges: deep male voices land at the bottom of the
// scale, high female voices at the top.
func mapPitch(freq float64) int {
	var adj float64
	switch {
	case freq < 110:
		// Very low: 50-110Hz -> -20..-10
		adj = -20 + (freq-pitchMinHz)/(110-pitchMinHz)*10
	case freq < 165:
		// Low: 110-165Hz -> -10..0
		adj = -10 + (freq-110)/(165-110)*10
	case freq < 255:
		// Mid: 165-255Hz -> 0..+10
		adj = (freq - 165) / (255 - 165) * 10
	default:
		// High: 255-500Hz -> +10..+20
		adj = 10 + (freq-255)/(pitchMaxHz-255)*10
	}
	return clampInt(int(math.Round(adj)), entities.PitchMin, entities.PitchMax)
}

// mapSpeed converts a zero-crossing rate into a speed multiplier through
// three linear bands. Busier signals read as faster speech.
func mapSpeed(zcr float64) float64 {
	var speed float64
	switch {
	case zcr < 600:
		// Slow: 0-600 crossings/s -> 0.85..1.0
		speed = 0.85 + zcr/600*0.15
	case zcr < 1400:
		// Normal: 600-1400 -> 1.0..1.15
		speed = 1.0 + (zcr-600)/800*0.15
	default:
		// Fast: 1400+ -> 1.15..1.4
		speed = 1.15 + (zcr-1400)/1600*0.25
	}
	return clampFloat(speed, entities.SpeedMin, entities.SpeedMax)
}

// mapEnergy converts RMS amplitude into a volume adjustment, inversely:
// quiet speakers get boosted, loud speakers attenuated.
func mapEnergy(rms float64) int {
	const (
		quiet = 500.0
		loud  = 8000.0
	)
	var adj float64
	switch {
	case rms <= quiet:
		adj = entities.EnergyMax
	case rms >= loud:
		adj = entities.EnergyMin
	default:
		adj = entities.EnergyMax - (rms-quiet)/(loud-quiet)*(entities.EnergyMax-entities.EnergyMin)
	}
	return clampInt(int(math.Round(adj)), entities.EnergyMin, entities.EnergyMax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
