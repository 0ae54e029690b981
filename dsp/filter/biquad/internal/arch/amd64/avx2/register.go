//go:build amd64 && !purego

// Package avx2 registers the four-way unrolled kernel preferred on AVX2
// machines.
package avx2

import (
	"github.com/cwbudde/algo-speaker/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-speaker/internal/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "avx2",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: processBlock,
	})
}

// processBlock is a 4x-unrolled scalar kernel selected for AVX2-capable
// CPUs. It uses no vector instructions; the speedup comes from unrolling.
// TODO: replace with explicit AVX2 asm kernel.
func processBlock(c registry.Coefficients, z1, z2 float64, buf []float64) (newZ1, newZ2 float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	i := 0
	n := len(buf)
	for ; i+3 < n; i += 4 {
		x0 := buf[i]
		y0 := b0*x0 + z1
		z1a := b1*x0 - a1*y0 + z2
		z2a := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + z1a
		z1b := b1*x1 - a1*y1 + z2a
		z2b := b2*x1 - a2*y1

		x2 := buf[i+2]
		y2 := b0*x2 + z1b
		z1c := b1*x2 - a1*y2 + z2b
		z2c := b2*x2 - a2*y2

		x3 := buf[i+3]
		y3 := b0*x3 + z1c
		z1 = b1*x3 - a1*y3 + z2c
		z2 = b2*x3 - a2*y3

		buf[i] = y0
		buf[i+1] = y1
		buf[i+2] = y2
		buf[i+3] = y3
	}

	for ; i < n; i++ {
		x := buf[i]
		y := b0*x + z1
		z1 = b1*x - a1*y + z2
		z2 = b2*x - a2*y
		buf[i] = y
	}

	return z1, z2
}
