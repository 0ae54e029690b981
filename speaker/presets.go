package speaker

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-speaker/dsp/filter/design"
)

// Preset selects one of the fixed equalizer curves.
type Preset uint8

const (
	Office Preset = iota
	Full
	Night
	Speech

	// PresetCount is the number of valid presets.
	PresetCount
)

const (
	numEQBands       = 4
	numLoudnessBands = 2
)

var presetNames = [PresetCount]string{"OFFICE", "FULL", "NIGHT", "SPEECH"}

var presetBands = [PresetCount][numEQBands]design.Band{
	Office: {
		{Type: design.LowShelfBand, Freq: 160, GainDB: 1.5, Width: 0.7},
		{Type: design.PeakingBand, Freq: 320, GainDB: -1.0, Width: 1.0},
		{Type: design.PeakingBand, Freq: 2800, GainDB: -1.5, Width: 1.0},
		{Type: design.HighShelfBand, Freq: 9000, GainDB: 0.5, Width: 0.7},
	},
	Full: {
		{Type: design.LowShelfBand, Freq: 140, GainDB: 4.0, Width: 0.8},
		{Type: design.PeakingBand, Freq: 420, GainDB: -1.5, Width: 1.0},
		{Type: design.PeakingBand, Freq: 3200, GainDB: 0.7, Width: 1.0},
		{Type: design.HighShelfBand, Freq: 9500, GainDB: 1.5, Width: 0.7},
	},
	Night: {
		{Type: design.LowShelfBand, Freq: 160, GainDB: 2.5, Width: 0.8},
		{Type: design.PeakingBand, Freq: 350, GainDB: -1.0, Width: 1.0},
		{Type: design.PeakingBand, Freq: 2500, GainDB: 1.0, Width: 1.0},
		{Type: design.HighShelfBand, Freq: 9000, GainDB: 1.0, Width: 0.7},
	},
	Speech: {
		{Type: design.LowShelfBand, Freq: 170, GainDB: -2.0, Width: 0.8},
		{Type: design.PeakingBand, Freq: 300, GainDB: -1.0, Width: 1.0},
		{Type: design.PeakingBand, Freq: 3200, GainDB: 3.0, Width: 1.0},
		{Type: design.PeakingBand, Freq: 7500, GainDB: -1.0, Width: 2.0},
	},
}

var loudnessBands = [numLoudnessBands]design.Band{
	{Type: design.LowShelfBand, Freq: 140, GainDB: 2.5, Width: 0.8},
	{Type: design.HighShelfBand, Freq: 8500, GainDB: 1.0, Width: 0.7},
}

var bassBoostBand = design.Band{Type: design.LowShelfBand, Freq: 100, GainDB: 8.0, Width: 0.7}

// Fixed stages.
const (
	preGainDB     = -6.0
	hpfFreqHz     = 95.0
	hpfQ          = 0.707
	duckGainDB    = -12.0
	maxBandFreqFS = 0.45 // band frequencies are clamped to this fraction of fs
)

// String returns the preset name, or UNKNOWN.
func (p Preset) String() string {
	return PresetName(p)
}

// Valid reports whether p names a preset.
func (p Preset) Valid() bool {
	return p < PresetCount
}

// PresetName returns the upper-case preset name, or UNKNOWN for an
// out-of-range value.
func PresetName(p Preset) string {
	if !p.Valid() {
		return "UNKNOWN"
	}

	return presetNames[p]
}

// ParsePreset resolves a case-insensitive preset name.
func ParsePreset(name string) (Preset, error) {
	for i, n := range presetNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Preset(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown preset %q", ErrInvalidArgument, name)
}

// PresetBands returns the equalizer bands of p as designed, before any
// sample-rate clamping.
func PresetBands(p Preset) ([numEQBands]design.Band, error) {
	if !p.Valid() {
		return [numEQBands]design.Band{}, fmt.Errorf("%w: preset %d", ErrInvalidArgument, p)
	}

	return presetBands[p], nil
}

// LoudnessBands returns the loudness overlay bands.
func LoudnessBands() [numLoudnessBands]design.Band {
	return loudnessBands
}

// BassBoostBand returns the bass boost shelf.
func BassBoostBand() design.Band {
	return bassBoostBand
}

// clampBand keeps band frequencies safely below Nyquist.
func clampBand(b design.Band, sampleRate float64) design.Band {
	if limit := maxBandFreqFS * sampleRate; b.Freq > limit {
		return b.WithFreq(limit)
	}

	return b
}
