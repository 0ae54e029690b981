package design

import (
	"fmt"

	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
)

// BandType selects the designer an equalizer band uses.
type BandType int

const (
	// LowShelfBand boosts or cuts below Freq; Width is the shelf slope.
	LowShelfBand BandType = iota
	// PeakingBand boosts or cuts around Freq; Width is Q.
	PeakingBand
	// HighShelfBand boosts or cuts above Freq; Width is the shelf slope.
	HighShelfBand
)

func (t BandType) String() string {
	switch t {
	case LowShelfBand:
		return "lowshelf"
	case PeakingBand:
		return "peaking"
	case HighShelfBand:
		return "highshelf"
	default:
		return fmt.Sprintf("BandType(%d)", int(t))
	}
}

// Band is one equalizer band.
type Band struct {
	Type   BandType
	Freq   float64 // Hz
	GainDB float64
	Width  float64 // Q for peaking bands, slope S for shelves
}

// Coefficients designs the band at sampleRate. Unknown band types yield
// Bypass.
func (b Band) Coefficients(sampleRate float64) biquad.Coefficients {
	switch b.Type {
	case LowShelfBand:
		return LowShelf(b.Freq, b.GainDB, b.Width, sampleRate)
	case PeakingBand:
		return Peak(b.Freq, b.GainDB, b.Width, sampleRate)
	case HighShelfBand:
		return HighShelf(b.Freq, b.GainDB, b.Width, sampleRate)
	default:
		return Bypass()
	}
}

// WithFreq returns a copy of b with its frequency replaced.
func (b Band) WithFreq(freq float64) Band {
	b.Freq = freq
	return b
}
