package dynamics

import (
	"fmt"

	"github.com/cwbudde/algo-speaker/dsp/core"
)

// LimiterConfig holds the limiter parameters.
type LimiterConfig struct {
	CeilingDB float64
	AttackMs  float64
	ReleaseMs float64
}

// DefaultLimiterConfig returns the speaker limiter: -1 dBFS ceiling,
// 3 ms attack, 120 ms release.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		CeilingDB: -1,
		AttackMs:  3,
		ReleaseMs: 120,
	}
}

// Limiter is a stereo-linked peak limiter.
//
// The envelope follows max(|L|, |R|). While it exceeds the ceiling the
// gain is ceiling/envelope; otherwise it is exactly 1. Peaks shorter than
// the attack pass through and are left to the hard clip after the chain.
type Limiter struct {
	cfg      LimiterConfig
	ceiling  float64
	follower PeakFollower
	gain     float64
}

// NewLimiter creates a limiter for sampleRate.
func NewLimiter(sampleRate float64, cfg LimiterConfig) (*Limiter, error) {
	l := &Limiter{gain: 1}
	if err := l.Configure(sampleRate, cfg); err != nil {
		return nil, err
	}

	return l, nil
}

// Configure applies cfg at sampleRate. The envelope is kept.
func (l *Limiter) Configure(sampleRate float64, cfg LimiterConfig) error {
	if cfg.CeilingDB > 0 || !core.IsFinite(cfg.CeilingDB) {
		return fmt.Errorf("limiter ceiling must be finite and <= 0 dBFS: %f", cfg.CeilingDB)
	}

	if err := l.follower.Configure(cfg.AttackMs, cfg.ReleaseMs, sampleRate); err != nil {
		return fmt.Errorf("limiter: %w", err)
	}

	l.cfg = cfg
	l.ceiling = core.DBToLinear(cfg.CeilingDB)

	return nil
}

// SetSampleRate re-derives the time constants for a new sample rate.
func (l *Limiter) SetSampleRate(sampleRate float64) error {
	return l.Configure(sampleRate, l.cfg)
}

// Config returns the active configuration.
func (l *Limiter) Config() LimiterConfig { return l.cfg }

// Ceiling returns the linear ceiling.
func (l *Limiter) Ceiling() float64 { return l.ceiling }

// Envelope returns the detector envelope.
func (l *Limiter) Envelope() float64 { return l.follower.Envelope() }

// Gain returns the gain applied to the last sample.
func (l *Limiter) Gain() float64 { return l.gain }

// GainFor advances the detector with a linked peak and returns the gain.
func (l *Limiter) GainFor(peak float64) float64 {
	env := l.follower.Next(peak)

	if env > l.ceiling {
		l.gain = l.ceiling / env
	} else {
		l.gain = 1
	}

	return l.gain
}

// ProcessStereo limits a planar stereo block in place and reports whether
// any sample received gain reduction.
func (l *Limiter) ProcessStereo(left, right []float64) (active bool) {
	n := min(len(left), len(right))
	left, right = left[:n], right[:n]

	for i := range left {
		g := l.GainFor(linkedPeak(left[i], right[i]))
		if g < 1 {
			active = true
			left[i] *= g
			right[i] *= g
		}
	}

	return active
}

// Reset clears the envelope and restores unity gain.
func (l *Limiter) Reset() {
	l.follower.Reset()
	l.gain = 1
}
