//go:build purego || !amd64

package biquad

import (
	_ "github.com/cwbudde/algo-speaker/dsp/filter/biquad/internal/arch/generic" // register generic backend
)
