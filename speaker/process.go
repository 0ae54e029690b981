package speaker

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/dsp/effects/dynamics"
	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
	"github.com/cwbudde/algo-speaker/dsp/smooth"
)

// channelState is the filter memory of one channel.
type channelState struct {
	hpf      biquad.State
	eq       [numEQBands]biquad.State
	loudness [numLoudnessBands]biquad.State
	bass     biquad.State
}

// audioState is owned by the audio context.
type audioState struct {
	gen         uint64
	normEpoch   uint64
	smoothingMs float64
	coeff       float64

	preGain  smooth.Value
	hpf      biquad.Coefficients
	eq       [numEQBands]smooth.Coefficients
	loudness [numLoudnessBands]biquad.Coefficients
	loudMix  smooth.Value
	bass     smooth.Coefficients
	volume   smooth.Value
	duck     smooth.Value
	mute     smooth.Value

	normalizerOn bool
	bypass       bool

	ch [2]channelState

	limiter    dynamics.Limiter
	normalizer dynamics.Normalizer

	left, right []float64
	wetL, wetR  []float64
	ramp, tmp   []float64
}

func (a *audioState) alloc(frames int) {
	a.left = make([]float64, frames)
	a.right = make([]float64, frames)
	a.wetL = make([]float64, frames)
	a.wetR = make([]float64, frames)
	a.ramp = make([]float64, frames)
	a.tmp = make([]float64, frames)
}

// adopt takes over a published target set. A new generation clears every
// delay line and envelope and jumps all ramps onto their targets.
func (a *audioState) adopt(p *params) {
	resync := p.gen != a.gen
	if resync {
		a.gen = p.gen
		a.coeff = smooth.Coefficient(a.smoothingMs, p.sampleRate)
		a.ch = [2]channelState{}
		// Rates reaching this point were validated by the control side.
		_ = a.limiter.SetSampleRate(p.sampleRate)
		_ = a.normalizer.SetSampleRate(p.sampleRate)
		a.limiter.Reset()
		a.normalizer.Reset()
	}

	if p.normEpoch != a.normEpoch {
		a.normEpoch = p.normEpoch
		a.normalizer.Reset()
	}

	a.preGain.Target = p.preGain
	a.hpf = p.hpf
	for i := range a.eq {
		a.eq[i].Target = p.eq[i]
	}
	a.loudness = p.loudness
	a.loudMix.Target = p.loudnessMix
	a.bass.Target = p.bass
	a.volume.Target = p.volume
	a.duck.Target = p.duck
	a.mute.Target = p.mute
	a.normalizerOn = p.normalizer
	a.bypass = p.bypass

	if resync {
		a.snap()
	}
}

func (a *audioState) snap() {
	a.preGain.Snap()
	for i := range a.eq {
		a.eq[i].Snap()
	}
	a.loudMix.Snap()
	a.bass.Snap()
	a.volume.Snap()
	a.duck.Snap()
	a.mute.Snap()
}

// Process runs the chain over interleaved stereo PCM in place. A trailing
// odd sample is left untouched. It does nothing before Init.
func (e *Engine) Process(samples []int16) {
	frames := len(samples) / 2
	if frames == 0 || !e.ready.Load() {
		return
	}

	e.beginBlock()

	a := &e.audio
	active := false

	for off, n := range e.cfg.Chunks(frames) {
		pcm := samples[2*off : 2*(off+n)]
		l, r := a.left[:n], a.right[:n]

		core.Deinterleave(l, r, pcm)
		if e.processChunk(l, r) {
			active = true
		}
		core.Interleave(pcm, l, r)
	}

	e.limiterActive.Store(active)
}

// ProcessFloat runs the chain over planar stereo in place. Only the first
// min(len(left), len(right)) frames are processed.
func (e *Engine) ProcessFloat(left, right []float64) {
	frames := min(len(left), len(right))
	if frames == 0 || !e.ready.Load() {
		return
	}

	e.beginBlock()

	active := false
	for off, n := range e.cfg.Chunks(frames) {
		if e.processChunk(left[off:off+n], right[off:off+n]) {
			active = true
		}
	}

	e.limiterActive.Store(active)
}

func (e *Engine) beginBlock() {
	if e.shared.Update() {
		e.audio.adopt(e.shared.Front())
	}
}

// processChunk runs every stage over at most MaxBlockSize frames and
// reports whether the limiter reduced gain.
func (e *Engine) processChunk(l, r []float64) bool {
	a := &e.audio

	a.applyGains(l, r, &a.preGain)

	biquad.StepBlock(&a.hpf, &a.ch[0].hpf, l)
	biquad.StepBlock(&a.hpf, &a.ch[1].hpf, r)

	if !a.bypass {
		for i := range a.eq {
			a.runSmoothed(&a.eq[i], &a.ch[0].eq[i], &a.ch[1].eq[i], l, r)
		}

		a.runLoudness(l, r)
		a.runSmoothed(&a.bass, &a.ch[0].bass, &a.ch[1].bass, l, r)

		if a.normalizerOn {
			a.normalizer.ProcessStereo(l, r)
		}
	}

	active := a.limiter.ProcessStereo(l, r)

	clippedL := hardClip(l)
	clippedR := hardClip(r)
	if clippedL || clippedR {
		e.clipping.Store(true)
	}

	a.applyGains(l, r, &a.volume, &a.duck, &a.mute)

	return active
}

// applyGains multiplies both channels by the product of the given ramps.
// Ramps settled at unity are skipped.
func (a *audioState) applyGains(l, r []float64, gains ...*smooth.Value) {
	n := len(l)
	ramp := a.ramp[:n]
	unity := true

	for _, g := range gains {
		if g.Settled() && g.Current == 1 {
			continue
		}

		if unity {
			g.Render(ramp, a.coeff)
			unity = false

			continue
		}

		tmp := a.tmp[:n]
		g.Render(tmp, a.coeff)
		vecmath.MulBlockInPlace(ramp, tmp)
	}

	if unity {
		return
	}

	vecmath.MulBlockInPlace(l, ramp)
	vecmath.MulBlockInPlace(r, ramp)
}

// runSmoothed filters both channels through one section. Settled
// coefficients use the block kernel, moving ones are stepped per sample.
func (a *audioState) runSmoothed(c *smooth.Coefficients, sl, sr *biquad.State, l, r []float64) {
	if c.Settled() {
		biquad.StepBlock(&c.Current, sl, l)
		biquad.StepBlock(&c.Current, sr, r)

		return
	}

	for i := range l {
		cur := c.Step(a.coeff)
		l[i] = biquad.Step(cur, sl, l[i])
		r[i] = biquad.Step(cur, sr, r[i])
	}
}

// runLoudness always runs the overlay filters so that their memory is
// warm, then blends the result with the dry signal.
func (a *audioState) runLoudness(l, r []float64) {
	n := len(l)
	wl, wr := a.wetL[:n], a.wetR[:n]
	copy(wl, l)
	copy(wr, r)

	for i := range a.loudness {
		biquad.StepBlock(&a.loudness[i], &a.ch[0].loudness[i], wl)
		biquad.StepBlock(&a.loudness[i], &a.ch[1].loudness[i], wr)
	}

	mix := &a.loudMix
	switch {
	case mix.Settled() && mix.Current == 0:
	case mix.Settled() && mix.Current == 1:
		copy(l, wl)
		copy(r, wr)
	default:
		ramp := a.ramp[:n]
		mix.Render(ramp, a.coeff)

		for i, g := range ramp {
			l[i] += g * (wl[i] - l[i])
			r[i] += g * (wr[i] - r[i])
		}
	}
}

func hardClip(buf []float64) (clipped bool) {
	for i, x := range buf {
		switch {
		case x > 1:
			buf[i] = 1
			clipped = true
		case x < -1:
			buf[i] = -1
			clipped = true
		}
	}

	return clipped
}
