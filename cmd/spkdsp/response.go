package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
	"github.com/cwbudde/algo-speaker/measure/response"
	"github.com/cwbudde/algo-speaker/speaker"
)

var thirdOctaves = []float64{
	20, 25, 31.5, 40, 50, 63, 80, 100, 125, 160, 200, 250, 315, 400, 500, 630, 800,
	1000, 1250, 1600, 2000, 2500, 3150, 4000, 5000, 6300, 8000, 10000, 12500, 16000, 20000,
}

// ResponseCmd prints the measured and designed magnitude response at
// third-octave centres.
type ResponseCmd struct {
	EngineFlags `embed:""`

	FFT int `default:"8192" help:"FFT size (power of two)."`
}

// Run measures and prints the response.
func (c *ResponseCmd) Run(g *Globals) error {
	if c.Normalizer {
		return fmt.Errorf("the normalizer is level dependent; measure without --normalizer")
	}

	e, err := c.newEngine(g.Logger)
	if err != nil {
		return err
	}

	designed, err := e.Design()
	if err != nil {
		return err
	}

	r, err := measure(e, c.FFT)
	if err != nil {
		return err
	}

	return printResponse(g.Stdout, e.Snapshot(), r, designed)
}

func measure(e *speaker.Engine, fftSize int) (*response.Response, error) {
	rate := float64(e.SampleRate())

	// One second covers every smoothing ramp.
	response.Settle(e, e.SampleRate())

	m := response.NewMeter(rate)
	m.FFTSize = fftSize

	return m.Measure(e)
}

func printResponse(w io.Writer, snap speaker.Snapshot, r *response.Response, designed *biquad.Chain) error {
	fmt.Fprintf(w, "preset %s, loudness %v, bass boost %v, bypass %v, volume %d, %d Hz\n\n",
		snap.Preset, snap.Loudness, snap.BassBoost, snap.Bypass, snap.EffectiveVolume, snap.SampleRate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Hz\tmeasured\tdesigned\t")

	nyquist := r.SampleRate / 2
	for _, f := range thirdOctaves {
		if f >= nyquist {
			break
		}

		fmt.Fprintf(tw, "%.0f\t%+.2f\t%+.2f\t\n", f, r.At(f), designed.MagnitudeDB(f, r.SampleRate))
	}

	return tw.Flush()
}
