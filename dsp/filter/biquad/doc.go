// Package biquad provides the second-order IIR runtime used by the speaker
// signal chain.
//
// [Coefficients] describe one section with a0 normalized to 1. [Step]
// evaluates Direct Form II Transposed against an external [State], which lets
// the engine keep one delay line per channel while the coefficients morph.
// [Section] bundles coefficients and state and adds a CPU-dispatched block
// kernel. [Chain] cascades sections for analysis and offline processing.
//
// Coefficient design lives in dsp/filter/design.
package biquad
