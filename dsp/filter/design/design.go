package design

import (
	"math"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// Bypass returns the identity section (B0 = 1).
func Bypass() biquad.Coefficients {
	return biquad.Coefficients{B0: 1}
}

// Highpass designs a second-order high-pass at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Bypass()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := (1 + cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Peak designs a peaking-EQ biquad with gain in dB and bandwidth q.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !core.IsFinite(gainDB) {
		return Bypass()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// LowShelf designs a low-shelf biquad with gain in dB and shelf slope S.
// S = 1 is the steepest slope without overshoot; values are clamped to (0, 1].
func LowShelf(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !core.IsFinite(gainDB) {
		return Bypass()
	}

	cw := math.Cos(w0)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * shelfAlpha(w0, a, slope)

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high-shelf biquad with gain in dB and shelf slope S.
func HighShelf(freq, gainDB, slope, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !core.IsFinite(gainDB) {
		return Bypass()
	}

	cw := math.Cos(w0)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * shelfAlpha(w0, a, slope)

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// shelfAlpha is sin(w0)/2 * sqrt((A + 1/A)(1/S - 1) + 2).
func shelfAlpha(w0, a, slope float64) float64 {
	slope = normalizedSlope(slope)
	return math.Sin(w0) / 2 * math.Sqrt((a+1/a)*(1/slope-1)+2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || !core.IsFinite(freq) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || !core.IsFinite(q) {
		return defaultQ
	}

	return q
}

func normalizedSlope(s float64) float64 {
	if s <= 0 || !core.IsFinite(s) {
		return 1
	}

	return min(s, 1)
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || !core.IsFinite(a0) {
		return Bypass()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
