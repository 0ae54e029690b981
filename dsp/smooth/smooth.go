// Package smooth implements the one-pole "current follows target" ramps
// that turn discrete control changes into click-free transitions.
//
// A single coefficient, derived from a time constant and the sample rate,
// drives every ramp: scalar gains through [Value] and whole biquad
// coefficient sets through [Coefficients].
package smooth

import (
	"math"

	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
)

// DefaultTimeMs is the time constant shared by gain and EQ transitions.
const DefaultTimeMs = 30.0

// SnapThreshold is the distance below which a ramp jumps onto its target.
const SnapThreshold = 1e-9

// Coefficient returns 1 - exp(-1/(timeMs/1000 * sampleRate)). The time
// constant is floored at one sample, so the result lies in (0, 1-1/e].
func Coefficient(timeMs, sampleRate float64) float64 {
	samples := timeMs / 1000 * sampleRate
	if !(samples >= 1) {
		samples = 1
	}

	return 1 - math.Exp(-1/samples)
}

// Advance moves current one step towards target.
func Advance(current, target, coeff float64) float64 {
	return current + coeff*(target-current)
}

// SettleSamples returns ceil(-ln(tol)/coeff), the number of Advance steps
// after which the remaining distance is at most tol of the initial one.
func SettleSamples(coeff, tol float64) int {
	if coeff <= 0 || tol <= 0 || tol >= 1 {
		return 0
	}

	return int(math.Ceil(-math.Log(tol) / coeff))
}

// Value is a smoothed scalar.
type Value struct {
	Current float64
	Target  float64
}

// NewValue returns a settled Value at v.
func NewValue(v float64) Value {
	return Value{Current: v, Target: v}
}

// Step advances Current once and returns it.
func (v *Value) Step(coeff float64) float64 {
	if v.Current == v.Target {
		return v.Current
	}

	v.Current = Advance(v.Current, v.Target, coeff)
	if math.Abs(v.Target-v.Current) <= SnapThreshold {
		v.Current = v.Target
	}

	return v.Current
}

// Render writes the next len(dst) values of the ramp into dst.
func (v *Value) Render(dst []float64, coeff float64) {
	if v.Current == v.Target {
		for i := range dst {
			dst[i] = v.Current
		}
		return
	}

	for i := range dst {
		dst[i] = v.Step(coeff)
	}
}

// Settled reports whether Current has reached Target.
func (v *Value) Settled() bool {
	return v.Current == v.Target
}

// Snap jumps Current onto Target.
func (v *Value) Snap() {
	v.Current = v.Target
}

// Coefficients is a smoothed biquad coefficient set. Each of the five
// coefficients follows its target independently.
type Coefficients struct {
	Current biquad.Coefficients
	Target  biquad.Coefficients
}

// NewCoefficients returns a settled set at c.
func NewCoefficients(c biquad.Coefficients) Coefficients {
	return Coefficients{Current: c, Target: c}
}

// Step advances every coefficient once and returns the current set.
func (s *Coefficients) Step(coeff float64) *biquad.Coefficients {
	if s.Current == s.Target {
		return &s.Current
	}

	cur, tgt := &s.Current, &s.Target
	cur.B0 = Advance(cur.B0, tgt.B0, coeff)
	cur.B1 = Advance(cur.B1, tgt.B1, coeff)
	cur.B2 = Advance(cur.B2, tgt.B2, coeff)
	cur.A1 = Advance(cur.A1, tgt.A1, coeff)
	cur.A2 = Advance(cur.A2, tgt.A2, coeff)

	if near(cur.B0, tgt.B0) && near(cur.B1, tgt.B1) && near(cur.B2, tgt.B2) &&
		near(cur.A1, tgt.A1) && near(cur.A2, tgt.A2) {
		s.Current = s.Target
	}

	return &s.Current
}

// Settled reports whether Current has reached Target.
func (s *Coefficients) Settled() bool {
	return s.Current == s.Target
}

// Snap jumps Current onto Target.
func (s *Coefficients) Snap() {
	s.Current = s.Target
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= SnapThreshold
}
