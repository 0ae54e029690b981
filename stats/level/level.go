// Package level computes peak and RMS levels of sample blocks for metering
// the speaker chain.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-speaker/dsp/core"
)

// Stats holds block level statistics.
//
//nolint:revive
type Stats struct {
	Length         int
	Peak           float64
	Peak_dB        float64
	RMS            float64
	RMS_dB         float64
	CrestFactor_dB float64
	Clipped        int // samples at or beyond full scale
}

// Calculate returns the statistics of x.
func Calculate(x []float64) Stats {
	if len(x) == 0 {
		return Stats{Peak_dB: math.Inf(-1), RMS_dB: math.Inf(-1)}
	}

	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)

	var (
		sum     float64
		peak    float64
		clipped int
	)

	for i, v := range x {
		sum += sq[i]

		a := math.Abs(v)
		peak = max(peak, a)

		if a >= 1 {
			clipped++
		}
	}

	rms := math.Sqrt(sum / float64(len(x)))

	s := Stats{
		Length:  len(x),
		Peak:    peak,
		Peak_dB: core.LinearToDB(peak),
		RMS:     rms,
		RMS_dB:  core.LinearToDB(rms),
		Clipped: clipped,
	}

	if rms > 0 {
		s.CrestFactor_dB = s.Peak_dB - s.RMS_dB
	}

	return s
}

// Meter accumulates statistics over a stream of blocks.
type Meter struct {
	n       int
	sum     float64
	peak    float64
	clipped int
	sq      []float64
}

// NewMeter returns an empty meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Update adds a block.
func (m *Meter) Update(x []float64) {
	if len(x) == 0 {
		return
	}

	if cap(m.sq) < len(x) {
		m.sq = make([]float64, len(x))
	}

	sq := m.sq[:len(x)]
	vecmath.MulBlock(sq, x, x)

	for i, v := range x {
		m.sum += sq[i]

		a := math.Abs(v)
		m.peak = max(m.peak, a)

		if a >= 1 {
			m.clipped++
		}
	}

	m.n += len(x)
}

// Result returns the statistics of everything seen so far.
func (m *Meter) Result() Stats {
	if m.n == 0 {
		return Stats{Peak_dB: math.Inf(-1), RMS_dB: math.Inf(-1)}
	}

	rms := math.Sqrt(m.sum / float64(m.n))

	s := Stats{
		Length:  m.n,
		Peak:    m.peak,
		Peak_dB: core.LinearToDB(m.peak),
		RMS:     rms,
		RMS_dB:  core.LinearToDB(rms),
		Clipped: m.clipped,
	}

	if rms > 0 {
		s.CrestFactor_dB = s.Peak_dB - s.RMS_dB
	}

	return s
}

// Reset clears the accumulated state.
func (m *Meter) Reset() {
	m.n = 0
	m.sum = 0
	m.peak = 0
	m.clipped = 0
}
