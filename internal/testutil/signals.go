// Package testutil holds deterministic signal generators and tolerance
// assertions shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// SineDBFS generates a sine whose peak sits at levelDB relative to full scale.
func SineDBFS(freqHz, sampleRate, levelDB float64, length int) []float64 {
	return DeterministicSine(freqHz, sampleRate, math.Pow(10, levelDB/20), length)
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// InterleavePCM16 scales two planar channels to 16-bit full scale and
// interleaves them, clamping to the int16 range.
func InterleavePCM16(left, right []float64) []int16 {
	n := min(len(left), len(right))
	out := make([]int16, 2*n)
	for i := range n {
		out[2*i] = toPCM16(left[i])
		out[2*i+1] = toPCM16(right[i])
	}
	return out
}

func toPCM16(x float64) int16 {
	v := math.Round(x * 32768)
	return int16(math.Max(-32768, math.Min(32767, v)))
}
