// Package generic provides the portable biquad block kernel.
package generic

import (
	"github.com/cwbudde/algo-speaker/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-speaker/internal/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "generic",
		SIMDLevel:    cpu.SIMDNone,
		Priority:     0,
		ProcessBlock: processBlock,
	})
}

// processBlock is unrolled by two; the recurrence is evaluated in the same
// order as the per-sample kernel so both produce identical output.
func processBlock(c registry.Coefficients, z1, z2 float64, buf []float64) (newZ1, newZ2 float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	i := 0
	n := len(buf)
	for ; i+1 < n; i += 2 {
		x0 := buf[i]
		y0 := b0*x0 + z1
		z1n := b1*x0 - a1*y0 + z2
		z2n := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + z1n
		z1 = b1*x1 - a1*y1 + z2n
		z2 = b2*x1 - a2*y1

		buf[i] = y0
		buf[i+1] = y1
	}

	if i < n {
		x := buf[i]
		y := b0*x + z1
		z1 = b1*x - a1*y + z2
		z2 = b2*x - a2*y
		buf[i] = y
	}

	return z1, z2
}
