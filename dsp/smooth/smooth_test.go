package smooth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
	"github.com/cwbudde/algo-speaker/dsp/filter/design"
)

func TestCoefficient(t *testing.T) {
	tests := []struct {
		name   string
		timeMs float64
		fs     float64
		want   float64
	}{
		{name: "30ms at 44.1k", timeMs: 30, fs: 44100, want: 1 - math.Exp(-1/1323.0)},
		{name: "30ms at 16k", timeMs: 30, fs: 16000, want: 1 - math.Exp(-1/480.0)},
		{name: "floored at one sample", timeMs: 0.001, fs: 16000, want: 1 - math.Exp(-1)},
		{name: "zero time", timeMs: 0, fs: 48000, want: 1 - math.Exp(-1)},
		{name: "nan time", timeMs: math.NaN(), fs: 48000, want: 1 - math.Exp(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coefficient(tt.timeMs, tt.fs)
			if math.Abs(got-tt.want) > 1e-15 {
				t.Fatalf("Coefficient(%v, %v) = %v, want %v", tt.timeMs, tt.fs, got, tt.want)
			}
		})
	}
}

func TestSettleSamples(t *testing.T) {
	c := Coefficient(30, 44100)
	n := SettleSamples(c, 0.001)
	want := int(math.Ceil(-math.Log(0.001) / c))
	if n != want {
		t.Fatalf("SettleSamples = %d, want %d", n, want)
	}

	if SettleSamples(0, 0.001) != 0 || SettleSamples(c, 1) != 0 {
		t.Fatal("degenerate arguments should yield 0")
	}
}

func TestValueConvergesWithinSettleBound(t *testing.T) {
	for _, fs := range []float64{16000, 32000, 44100, 48000} {
		c := Coefficient(DefaultTimeMs, fs)
		n := SettleSamples(c, 0.001)

		for _, tc := range []struct{ from, to float64 }{
			{1, 0}, {0, 1}, {0.5, 0.25}, {1, 0.0177827941},
		} {
			v := NewValue(tc.from)
			v.Target = tc.to
			for range n {
				v.Step(c)
			}

			if d := math.Abs(v.Current - tc.to); d > 0.001*math.Abs(tc.to-tc.from) {
				t.Fatalf("fs=%v %v->%v: remaining %v after %d steps", fs, tc.from, tc.to, d, n)
			}
		}
	}
}

func TestValueSnapsAndSettles(t *testing.T) {
	v := NewValue(0)
	if !v.Settled() {
		t.Fatal("new value should be settled")
	}

	v.Target = 1
	for range 100000 {
		v.Step(0.01)
	}

	if !v.Settled() || v.Current != 1 {
		t.Fatalf("value did not snap: %+v", v)
	}
}

func TestValueStepIsMonotonic(t *testing.T) {
	v := NewValue(1)
	v.Target = 0
	prev := v.Current
	for range 1000 {
		cur := v.Step(0.05)
		if cur > prev || cur < 0 {
			t.Fatalf("non-monotonic step: %v -> %v", prev, cur)
		}
		prev = cur
	}
}

func TestValueRenderMatchesStep(t *testing.T) {
	c := Coefficient(5, 48000)
	a := Value{Current: 0.2, Target: 0.9}
	b := a

	buf := make([]float64, 300)
	a.Render(buf, c)
	for i := range buf {
		if want := b.Step(c); buf[i] != want {
			t.Fatalf("sample %d: Render=%v Step=%v", i, buf[i], want)
		}
	}

	settled := NewValue(0.5)
	settled.Render(buf, c)
	for i, g := range buf {
		if g != 0.5 {
			t.Fatalf("settled render[%d] = %v", i, g)
		}
	}
}

func TestCoefficientsConverge(t *testing.T) {
	const fs = 44100
	c := Coefficient(DefaultTimeMs, fs)
	n := SettleSamples(c, 0.001)

	from := design.Peak(1000, 6, 1, fs)
	to := design.Peak(1000, -6, 1, fs)
	s := NewCoefficients(from)
	s.Target = to

	for range n {
		s.Step(c)
	}

	pairs := [][3]float64{
		{s.Current.B0, to.B0, from.B0},
		{s.Current.B1, to.B1, from.B1},
		{s.Current.B2, to.B2, from.B2},
		{s.Current.A1, to.A1, from.A1},
		{s.Current.A2, to.A2, from.A2},
	}
	for i, p := range pairs {
		if d := math.Abs(p[0] - p[1]); d > 0.001*math.Abs(p[1]-p[2])+SnapThreshold {
			t.Fatalf("coefficient %d: remaining %v", i, d)
		}
	}
}

func TestCoefficientsMorphStaysStable(t *testing.T) {
	const fs = 16000
	c := Coefficient(DefaultTimeMs, fs)

	s := NewCoefficients(design.LowShelf(140, 4, 0.8, fs))
	s.Target = design.HighShelf(7200, 1.5, 0.7, fs)

	for !s.Settled() {
		cur := s.Step(c)
		if !cur.IsStable() {
			t.Fatalf("intermediate set unstable: %+v", *cur)
		}
	}

	if s.Current != s.Target {
		t.Fatal("settled set differs from target")
	}
}

func TestCoefficientsSnap(t *testing.T) {
	s := NewCoefficients(design.Bypass())
	s.Target = biquad.Coefficients{B0: 0.5, A1: 0.1}

	if s.Settled() {
		t.Fatal("should not be settled after target change")
	}

	s.Snap()
	if !s.Settled() || s.Current.B0 != 0.5 {
		t.Fatalf("Snap failed: %+v", s)
	}
}
