package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-speaker/dsp/core"
)

const (
	minNormalizerRatio = 1.0
	maxNormalizerRatio = 100.0

	// log2Of10Div20 converts dB to log2 amplitude: log2(10) / 20.
	log2Of10Div20 = 0.166096404744
)

// NormalizerConfig holds the dynamic range compressor parameters.
type NormalizerConfig struct {
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
	MakeupDB    float64
}

// DefaultNormalizerConfig returns the speaker normalizer: -20 dBFS
// threshold, 4:1, 7 ms attack, 150 ms release, +6 dB makeup.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		ThresholdDB: -20,
		Ratio:       4,
		AttackMs:    7,
		ReleaseMs:   150,
		MakeupDB:    6,
	}
}

// Normalizer is a stereo-linked hard-knee downward compressor with fixed
// makeup gain. Above the threshold the gain is
//
//	(envelope/threshold)^-(1 - 1/ratio)
//
// computed in the log2 domain.
type Normalizer struct {
	cfg NormalizerConfig

	thresholdLog2 float64
	slope         float64
	makeup        float64

	follower PeakFollower
	gain     float64
}

// NewNormalizer creates a normalizer for sampleRate.
func NewNormalizer(sampleRate float64, cfg NormalizerConfig) (*Normalizer, error) {
	n := &Normalizer{gain: 1}
	if err := n.Configure(sampleRate, cfg); err != nil {
		return nil, err
	}

	return n, nil
}

// Configure applies cfg at sampleRate. The envelope is kept.
func (n *Normalizer) Configure(sampleRate float64, cfg NormalizerConfig) error {
	if !core.IsFinite(cfg.ThresholdDB) {
		return fmt.Errorf("normalizer threshold must be finite: %f", cfg.ThresholdDB)
	}

	if cfg.Ratio < minNormalizerRatio || cfg.Ratio > maxNormalizerRatio || math.IsNaN(cfg.Ratio) {
		return fmt.Errorf("normalizer ratio must be in [%f, %f]: %f", minNormalizerRatio, maxNormalizerRatio, cfg.Ratio)
	}

	if !core.IsFinite(cfg.MakeupDB) {
		return fmt.Errorf("normalizer makeup gain must be finite: %f", cfg.MakeupDB)
	}

	if err := n.follower.Configure(cfg.AttackMs, cfg.ReleaseMs, sampleRate); err != nil {
		return fmt.Errorf("normalizer: %w", err)
	}

	n.cfg = cfg
	n.thresholdLog2 = cfg.ThresholdDB * log2Of10Div20
	n.slope = 1 - 1/cfg.Ratio
	n.makeup = core.DBToLinear(cfg.MakeupDB)

	return nil
}

// SetSampleRate re-derives the time constants for a new sample rate.
func (n *Normalizer) SetSampleRate(sampleRate float64) error {
	return n.Configure(sampleRate, n.cfg)
}

// Config returns the active configuration.
func (n *Normalizer) Config() NormalizerConfig { return n.cfg }

// Envelope returns the detector envelope.
func (n *Normalizer) Envelope() float64 { return n.follower.Envelope() }

// Gain returns the gain reduction applied to the last sample, excluding
// makeup.
func (n *Normalizer) Gain() float64 { return n.gain }

// Makeup returns the linear makeup gain.
func (n *Normalizer) Makeup() float64 { return n.makeup }

// GainForLevel evaluates the static curve for a detector level without
// touching the envelope.
func (n *Normalizer) GainForLevel(level float64) float64 {
	if level <= 0 {
		return 1
	}

	overshoot := mathLog2(level) - n.thresholdLog2
	if overshoot <= 0 {
		return 1
	}

	return mathPower2(-overshoot * n.slope)
}

// GainFor advances the detector with a linked peak and returns the total
// gain including makeup.
func (n *Normalizer) GainFor(peak float64) float64 {
	n.gain = n.GainForLevel(n.follower.Next(peak))
	return n.gain * n.makeup
}

// ProcessStereo compresses a planar stereo block in place.
func (n *Normalizer) ProcessStereo(left, right []float64) {
	m := min(len(left), len(right))
	left, right = left[:m], right[:m]

	for i := range left {
		g := n.GainFor(linkedPeak(left[i], right[i]))
		left[i] *= g
		right[i] *= g
	}
}

// Reset returns the detector to neutral: zero envelope, unity gain.
func (n *Normalizer) Reset() {
	n.follower.Reset()
	n.gain = 1
}
