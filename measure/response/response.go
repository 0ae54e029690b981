package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-speaker/dsp/core"
)

// Defaults.
const (
	DefaultFFTSize   = 8192
	DefaultAmplitude = 0.25
)

// Errors returned by Measure.
var (
	ErrInvalidSampleRate = errors.New("response: sample rate must be positive")
	ErrInvalidFFTSize    = errors.New("response: fft size must be a power of two >= 16")
	ErrInvalidAmplitude  = errors.New("response: amplitude must be in (0, 1]")
)

// Processor is a planar stereo in-place processor such as
// *speaker.Engine.
type Processor interface {
	ProcessFloat(left, right []float64)
}

// Response is a measured magnitude response from DC to Nyquist.
type Response struct {
	SampleRate  float64
	FFTSize     int
	Freqs       []float64 // bin centre frequencies
	MagnitudeDB []float64 // left channel
	RightDB     []float64
	Impulse     []float64 // captured left impulse response
}

// BinHz returns the bin spacing.
func (r *Response) BinHz() float64 {
	return r.SampleRate / float64(r.FFTSize)
}

// At returns the left-channel magnitude at freqHz, interpolated linearly
// between bins. Frequencies outside [0, Nyquist] are clamped.
func (r *Response) At(freqHz float64) float64 {
	if len(r.MagnitudeDB) == 0 {
		return math.Inf(-1)
	}

	pos := freqHz / r.BinHz()
	last := len(r.MagnitudeDB) - 1

	if pos <= 0 {
		return r.MagnitudeDB[0]
	}

	if pos >= float64(last) {
		return r.MagnitudeDB[last]
	}

	i := int(pos)
	frac := pos - float64(i)

	return r.MagnitudeDB[i] + frac*(r.MagnitudeDB[i+1]-r.MagnitudeDB[i])
}

// Meter drives a Processor with an impulse.
type Meter struct {
	SampleRate float64
	FFTSize    int
	Amplitude  float64
}

// NewMeter returns a meter with the default FFT size and probe amplitude.
func NewMeter(sampleRate float64) *Meter {
	return &Meter{
		SampleRate: sampleRate,
		FFTSize:    DefaultFFTSize,
		Amplitude:  DefaultAmplitude,
	}
}

func (m *Meter) validate() error {
	if !(m.SampleRate > 0) {
		return ErrInvalidSampleRate
	}

	if m.FFTSize < 16 || m.FFTSize&(m.FFTSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFFTSize, m.FFTSize)
	}

	if !(m.Amplitude > 0 && m.Amplitude <= 1) {
		return fmt.Errorf("%w: %f", ErrInvalidAmplitude, m.Amplitude)
	}

	return nil
}

// Settle feeds frames of silence so that smoothed parameters reach their
// targets without disturbing the filter memory.
func Settle(p Processor, frames int) {
	const block = 1024

	l := make([]float64, block)
	r := make([]float64, block)

	for frames > 0 {
		n := min(frames, block)
		clear(l[:n])
		clear(r[:n])
		p.ProcessFloat(l[:n], r[:n])
		frames -= n
	}
}

// Measure captures FFTSize samples of the impulse response of p and
// returns its magnitude normalized to the probe amplitude.
func (m *Meter) Measure(p Processor) (*Response, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	n := m.FFTSize
	left := make([]float64, n)
	right := make([]float64, n)
	left[0] = m.Amplitude
	right[0] = m.Amplitude

	p.ProcessFloat(left, right)

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	leftDB, err := m.magnitudeDB(plan, left)
	if err != nil {
		return nil, err
	}

	rightDB, err := m.magnitudeDB(plan, right)
	if err != nil {
		return nil, err
	}

	bins := n/2 + 1
	freqs := make([]float64, bins)
	binHz := m.SampleRate / float64(n)

	for k := range freqs {
		freqs[k] = float64(k) * binHz
	}

	return &Response{
		SampleRate:  m.SampleRate,
		FFTSize:     n,
		Freqs:       freqs,
		MagnitudeDB: leftDB,
		RightDB:     rightDB,
		Impulse:     left,
	}, nil
}

func (m *Meter) magnitudeDB(plan *algofft.Plan[complex128], ir []float64) ([]float64, error) {
	n := len(ir)

	in := make([]complex128, n)
	for i, v := range ir {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	ref := m.Amplitude * m.Amplitude
	for k, p := range power {
		power[k] = core.LinearPowerToDB(p / ref)
	}

	return power, nil
}
