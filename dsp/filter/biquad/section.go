package biquad

import (
	"sync"

	archregistry "github.com/cwbudde/algo-speaker/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-speaker/internal/cpu"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + z1
//	z1 = B1*x - A1*y + z2
//	z2 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// State is the delay line of one section on one channel.
type State struct {
	Z1, Z2 float64
}

// Reset zeros the delay line.
func (s *State) Reset() {
	s.Z1 = 0
	s.Z2 = 0
}

// IsZero reports whether both registers are exactly zero.
func (s State) IsZero() bool {
	return s.Z1 == 0 && s.Z2 == 0
}

// Step filters one sample through c, advancing s.
func Step(c *Coefficients, s *State, x float64) float64 {
	y := c.B0*x + s.Z1
	s.Z1 = c.B1*x - c.A1*y + s.Z2
	s.Z2 = c.B2*x - c.A2*y

	return y
}

// StepBlock filters buf in place through c with the dispatched block kernel.
func StepBlock(c *Coefficients, s *State, buf []float64) {
	if len(buf) == 0 {
		return
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	coeffs := archregistry.Coefficients{
		B0: c.B0,
		B1: c.B1,
		B2: c.B2,
		A1: c.A1,
		A2: c.A2,
	}

	s.Z1, s.Z2 = processBlockImpl(coeffs, s.Z1, s.Z2, buf)
}

// Section is a single biquad filter with coefficients and internal state.
type Section struct {
	Coefficients

	state State
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockName     string
	processBlockInitOnce sync.Once
)

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	return Step(&s.Coefficients, &s.state, x)
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	StepBlock(&s.Coefficients, &s.state, buf)
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.state.Reset()
}

// State returns the current delay-line registers.
func (s *Section) State() State {
	return s.state
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state State) {
	s.state = state
}

// KernelName reports which block kernel ProcessBlock dispatches to. The
// name is the CPU tier the kernel was selected for; "avx2" is currently an
// unrolled scalar kernel.
func KernelName() string {
	processBlockInitOnce.Do(initProcessBlockKernel)
	return processBlockName
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil || entry.ProcessBlock == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	processBlockImpl = entry.ProcessBlock
	processBlockName = entry.Name
}
