package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestMagnitudeSquaredMatchesComplexResponse(t *testing.T) {
	c := testCoefficients()
	for _, f := range []float64{0, 50, 1000, 5000, 11025, 20000} {
		h := c.Response(f, 44100)
		want := cmplx.Abs(h) * cmplx.Abs(h)
		if got := c.MagnitudeSquared(f, 44100); !almostEqual(got, want, 1e-12) {
			t.Fatalf("f=%v: MagnitudeSquared=%v, |H|^2=%v", f, got, want)
		}
	}
}

func TestMagnitudeDBAtDCAndNyquist(t *testing.T) {
	// H(1) = (0.25+0.5+0.25)/(1-0.2+0.04), H(-1) = 0
	c := testCoefficients()

	wantDC := 20 * math.Log10(1/0.84)
	if got := c.MagnitudeDB(0, 48000); !almostEqual(got, wantDC, 1e-9) {
		t.Fatalf("DC magnitude = %v dB, want %v", got, wantDC)
	}

	if got := c.MagnitudeDB(24000, 48000); !math.IsInf(got, -1) && got > -200 {
		t.Fatalf("Nyquist magnitude = %v dB, want a deep null", got)
	}
}

func TestChainMagnitudeIsSumOfSections(t *testing.T) {
	c1 := testCoefficients()
	c2 := Coefficients{B0: 0.9, B1: -0.3, B2: 0.1, A1: -0.5, A2: 0.2}
	chain := NewChain([]Coefficients{c1, c2})

	for _, f := range []float64{100, 1000, 7000} {
		want := c1.MagnitudeDB(f, 48000) + c2.MagnitudeDB(f, 48000)
		if got := chain.MagnitudeDB(f, 48000); !almostEqual(got, want, 1e-9) {
			t.Fatalf("f=%v: chain=%v, sum=%v", f, got, want)
		}
	}
}

func TestChainMagnitudeIncludesGain(t *testing.T) {
	chain := NewChain([]Coefficients{{B0: 1}}, WithGain(0.5))
	if got := chain.MagnitudeDB(1000, 48000); !almostEqual(got, 20*math.Log10(0.5), 1e-12) {
		t.Fatalf("MagnitudeDB = %v", got)
	}

	muted := NewChain([]Coefficients{testCoefficients()}, WithGain(0))
	if got := muted.MagnitudeDB(1000, 48000); !math.IsInf(got, -1) {
		t.Fatalf("muted MagnitudeDB = %v, want -Inf", got)
	}
}

func TestImpulseResponsePreservesState(t *testing.T) {
	s := NewSection(testCoefficients())
	s.ProcessSample(0.7)
	before := s.State()

	ir := s.ImpulseResponse(4)
	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i := range want {
		if !almostEqual(ir[i], want[i], eps) {
			t.Fatalf("ir[%d] = %v, want %v", i, ir[i], want[i])
		}
	}

	if s.State() != before {
		t.Fatalf("state changed: %v -> %v", before, s.State())
	}

	if s.ImpulseResponse(0) != nil {
		t.Fatal("expected nil for n=0")
	}
}
