package speaker

import "github.com/cwbudde/algo-speaker/dsp/filter/biquad"

// Design returns the settled small-signal cascade of the current setting:
// the high-pass, the equalizer bands, the loudness and bass boost shelves
// when enabled, and pre-gain times volume, duck and mute as input gain.
// The level-dependent normalizer and limiter are not part of it. The
// returned chain has zero state and is independent of the engine.
func (e *Engine) Design() (*biquad.Chain, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, ErrNotInitialized
	}

	p := e.buildParams()

	coeffs := []biquad.Coefficients{p.hpf}
	if !p.bypass {
		coeffs = append(coeffs, p.eq[:]...)
		if p.loudnessMix == 1 {
			coeffs = append(coeffs, p.loudness[:]...)
		}

		if e.bassBoost {
			coeffs = append(coeffs, p.bass)
		}
	}

	gain := p.preGain * p.volume * p.duck * p.mute

	return biquad.NewChain(coeffs, biquad.WithGain(gain)), nil
}
