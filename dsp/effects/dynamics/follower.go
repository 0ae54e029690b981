package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/dsp/smooth"
)

const (
	minTimeMs = 0.01
	maxTimeMs = 5000.0
)

// PeakFollower tracks the peak level of a signal with separate attack and
// release coefficients:
//
//	env += attack  * (level - env)   when level > env
//	env += release * (level - env)   otherwise
type PeakFollower struct {
	attackMs  float64
	releaseMs float64

	attackCoeff  float64
	releaseCoeff float64

	envelope float64
}

// NewPeakFollower returns a follower with zero envelope.
func NewPeakFollower(attackMs, releaseMs, sampleRate float64) (*PeakFollower, error) {
	f := &PeakFollower{}
	if err := f.Configure(attackMs, releaseMs, sampleRate); err != nil {
		return nil, err
	}

	return f, nil
}

// Configure sets the time constants and derives the per-sample coefficients.
// The envelope is kept.
func (f *PeakFollower) Configure(attackMs, releaseMs, sampleRate float64) error {
	if err := validateTime("attack", attackMs); err != nil {
		return err
	}

	if err := validateTime("release", releaseMs); err != nil {
		return err
	}

	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}

	f.attackMs = attackMs
	f.releaseMs = releaseMs
	f.attackCoeff = smooth.Coefficient(attackMs, sampleRate)
	f.releaseCoeff = smooth.Coefficient(releaseMs, sampleRate)

	return nil
}

// Next feeds one non-negative level and returns the updated envelope.
func (f *PeakFollower) Next(level float64) float64 {
	if level > f.envelope {
		f.envelope += f.attackCoeff * (level - f.envelope)
	} else {
		f.envelope += f.releaseCoeff * (level - f.envelope)
	}

	f.envelope = core.FlushDenormals(f.envelope)

	return f.envelope
}

// Envelope returns the current envelope level.
func (f *PeakFollower) Envelope() float64 { return f.envelope }

// AttackCoeff returns the per-sample attack coefficient.
func (f *PeakFollower) AttackCoeff() float64 { return f.attackCoeff }

// ReleaseCoeff returns the per-sample release coefficient.
func (f *PeakFollower) ReleaseCoeff() float64 { return f.releaseCoeff }

// Reset zeros the envelope.
func (f *PeakFollower) Reset() {
	f.envelope = 0
}

func validateTime(name string, ms float64) error {
	if ms < minTimeMs || ms > maxTimeMs || math.IsNaN(ms) {
		return fmt.Errorf("%s must be in [%f, %f] ms: %f", name, minTimeMs, maxTimeMs, ms)
	}

	return nil
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

// linkedPeak is the stereo-linked detector input.
func linkedPeak(l, r float64) float64 {
	return math.Max(math.Abs(l), math.Abs(r))
}
