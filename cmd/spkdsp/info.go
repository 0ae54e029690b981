package main

import (
	"fmt"
	"runtime"

	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
	"github.com/cwbudde/algo-speaker/internal/cli"
	"github.com/cwbudde/algo-speaker/internal/cpu"
	"github.com/cwbudde/algo-speaker/speaker"
)

// InfoCmd prints build and CPU information.
type InfoCmd struct{}

// Run prints the information.
func (c *InfoCmd) Run(g *Globals) error {
	f := cpu.DetectFeatures()

	cli.PrintVersion(g.Stdout, version)
	cli.PrintKeyValue(g.Stdout, "Go:", runtime.Version())
	cli.PrintKeyValue(g.Stdout, "Architecture:", f.Architecture)
	cli.PrintKeyValue(g.Stdout, "SIMD:", fmt.Sprintf("sse2=%v avx2=%v neon=%v", f.HasSSE2, f.HasAVX2, f.HasNEON))
	cli.PrintKeyValue(g.Stdout, "Biquad kernel:", biquad.KernelName())
	cli.PrintKeyValue(g.Stdout, "Sample rates:", fmt.Sprint(speaker.SupportedSampleRates))

	return nil
}
