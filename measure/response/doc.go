// Package response measures the magnitude response of a stereo processor
// by driving it with an impulse and transforming the captured impulse
// response.
//
// The processor must be linear at the probe level for the result to be
// meaningful. The speaker chain is, as long as the probe stays below the
// limiter ceiling and the normalizer is off.
//
// # Usage
//
//	m := response.NewMeter(48000)
//	r, err := m.Measure(engine)
//	fmt.Printf("%.2f dB at 1 kHz\n", r.At(1000))
package response
