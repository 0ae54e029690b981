package biquad

// Chain is an ordered cascade of biquad sections behind a scalar input
// gain, for example the high-pass, four equalizer bands and shelves of one
// speaker setting.
type Chain struct {
	sections []Section
	gain     float64
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithGain sets the linear gain applied to the input before the first
// section. The default is 1.
func WithGain(g float64) ChainOption {
	return func(c *Chain) { c.gain = g }
}

// NewChain returns a cascade with one zero-state Section per coefficient
// set, in order.
func NewChain(coeffs []Coefficients, opts ...ChainOption) *Chain {
	c := &Chain{
		sections: make([]Section, len(coeffs)),
		gain:     1,
	}

	for i, k := range coeffs {
		c.sections[i].Coefficients = k
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Len returns the number of sections.
func (c *Chain) Len() int { return len(c.sections) }

// Gain returns the input gain.
func (c *Chain) Gain() float64 { return c.gain }

// Coefficients returns a copy of the section coefficients in order.
func (c *Chain) Coefficients() []Coefficients {
	out := make([]Coefficients, len(c.sections))
	for i := range c.sections {
		out[i] = c.sections[i].Coefficients
	}

	return out
}

// ProcessSample runs one sample through the cascade.
func (c *Chain) ProcessSample(x float64) float64 {
	x *= c.gain
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters buf in place, one section at a time.
func (c *Chain) ProcessBlock(buf []float64) {
	if c.gain != 1 {
		for i := range buf {
			buf[i] *= c.gain
		}
	}

	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset zeros every section state.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}
