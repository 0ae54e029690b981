package speaker

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/dsp/effects/dynamics"
	"github.com/cwbudde/algo-speaker/dsp/filter/biquad"
	"github.com/cwbudde/algo-speaker/dsp/filter/design"
	"github.com/cwbudde/algo-speaker/internal/tribuf"
)

// SupportedSampleRates lists the rates accepted by Init and SetSampleRate.
var SupportedSampleRates = []int{16000, 32000, 44100, 48000}

// params is one complete set of targets, built by the control side and
// adopted by the audio side as a unit.
type params struct {
	gen       uint64 // bumped on sample-rate change
	normEpoch uint64 // bumped on normalizer toggle

	sampleRate  float64
	preGain     float64
	hpf         biquad.Coefficients
	eq          [numEQBands]biquad.Coefficients
	loudness    [numLoudnessBands]biquad.Coefficients
	loudnessMix float64
	bass        biquad.Coefficients
	normalizer  bool
	bypass      bool
	volume      float64
	duck        float64
	mute        float64
}

// Engine is the stereo speaker signal chain. Create it with NewEngine and
// call Init before use.
type Engine struct {
	cfg config
	log *slog.Logger

	mu          sync.Mutex
	initialized bool
	sampleRate  int
	gen         uint64
	normEpoch   uint64
	preset      Preset
	loudness    bool
	muted       bool
	duck        bool
	normalizer  bool
	bypass      bool
	bassBoost   bool
	trim        int

	shared tribuf.Buffer[params]
	ready  atomic.Bool

	limiterActive atomic.Bool
	clipping      atomic.Bool

	audio audioState
}

// NewEngine allocates an engine with every buffer sized for the configured
// maximum block size. The engine is inert until Init.
func NewEngine(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := &Engine{
		cfg:    cfg,
		log:    cfg.logger,
		preset: Office,
		trim:   MaxVolume,
	}
	e.audio.alloc(cfg.BlockSize)
	e.audio.smoothingMs = cfg.smoothingMs

	return e
}

// Init prepares the engine for sampleRate and starts accepting control
// changes and audio.
func (e *Engine) Init(sampleRate int) error {
	if !slices.Contains(SupportedSampleRates, sampleRate) {
		return fmt.Errorf("%w: sample rate %d not supported", ErrInvalidArgument, sampleRate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return fmt.Errorf("%w: engine already initialized", ErrInvalidState)
	}

	fs := float64(sampleRate)
	if err := e.audio.limiter.Configure(fs, dynamics.DefaultLimiterConfig()); err != nil {
		return err
	}

	if err := e.audio.normalizer.Configure(fs, dynamics.DefaultNormalizerConfig()); err != nil {
		return err
	}

	e.sampleRate = sampleRate
	e.gen++
	e.shared.Init(e.buildParams())
	e.audio.adopt(e.shared.Front())
	e.initialized = true
	e.ready.Store(true)

	e.log.Info("speaker engine initialized",
		"sample_rate", sampleRate,
		"max_block", e.cfg.BlockSize,
		"kernel", biquad.KernelName())

	return nil
}

// MaxBlockSize returns the chunk size used by Process.
func (e *Engine) MaxBlockSize() int {
	return e.cfg.BlockSize
}

// SetPreset selects the equalizer preset.
func (e *Engine) SetPreset(p Preset) error {
	if !p.Valid() {
		return fmt.Errorf("%w: preset %d", ErrInvalidArgument, p)
	}

	return e.change("preset changed", func() bool {
		if e.preset == p {
			return false
		}
		e.preset = p
		return true
	}, "preset", p.String())
}

// SetLoudness enables or disables the loudness overlay.
func (e *Engine) SetLoudness(on bool) error {
	return e.change("loudness changed", setBool(&e.loudness, on), "on", on)
}

// SetMute ramps the output to silence or back.
func (e *Engine) SetMute(on bool) error {
	return e.change("mute changed", setBool(&e.muted, on), "on", on)
}

// SetAudioDuck lowers the output by 12 dB while on. The duck state is
// never persisted.
func (e *Engine) SetAudioDuck(on bool) error {
	return e.change("audio duck changed", setBool(&e.duck, on), "on", on)
}

// SetNormalizer enables or disables the normalizer. Every toggle restarts
// its detector and moves the volume cap.
func (e *Engine) SetNormalizer(on bool) error {
	return e.change("normalizer changed", func() bool {
		if e.normalizer == on {
			return false
		}
		e.normalizer = on
		e.normEpoch++
		return true
	}, "on", on)
}

// SetVolumeTrim sets the requested volume, clamped to [0, 100]. The
// effective volume is further limited by the volume cap.
func (e *Engine) SetVolumeTrim(v int) error {
	v = clampVolume(v)

	return e.change("volume changed", func() bool {
		if e.trim == v {
			return false
		}
		e.trim = v
		return true
	}, "trim", v)
}

// SetBypass skips the equalizer, loudness, bass boost and normalizer
// stages while on.
func (e *Engine) SetBypass(on bool) error {
	return e.change("bypass changed", setBool(&e.bypass, on), "on", on)
}

// SetBassBoost enables or disables the bass shelf.
func (e *Engine) SetBassBoost(on bool) error {
	return e.change("bass boost changed", setBool(&e.bassBoost, on), "on", on)
}

// SetSampleRate switches to another supported rate. All filter memory and
// detector envelopes are cleared when the audio side picks up the change.
func (e *Engine) SetSampleRate(rate int) error {
	if !slices.Contains(SupportedSampleRates, rate) {
		return fmt.Errorf("%w: sample rate %d not supported", ErrInvalidArgument, rate)
	}

	return e.change("sample rate changed", func() bool {
		if e.sampleRate == rate {
			return false
		}
		e.sampleRate = rate
		e.gen++
		return true
	}, "sample_rate", rate)
}

// Preset returns the active preset.
func (e *Engine) Preset() Preset {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.preset
}

// Loudness reports whether the loudness overlay is on.
func (e *Engine) Loudness() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.loudness
}

// Muted reports whether mute is on.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.muted
}

// AudioDuck reports whether ducking is on.
func (e *Engine) AudioDuck() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.duck
}

// Normalizer reports whether the normalizer is on.
func (e *Engine) Normalizer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.normalizer
}

// Bypass reports whether bypass is on.
func (e *Engine) Bypass() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.bypass
}

// BassBoost reports whether the bass boost is on.
func (e *Engine) BassBoost() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.bassBoost
}

// VolumeTrim returns the requested volume.
func (e *Engine) VolumeTrim() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.trim
}

// VolumeCap returns the current volume cap.
func (e *Engine) VolumeCap() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.volumeCap()
}

// EffectiveVolume returns min(trim, cap).
func (e *Engine) EffectiveVolume() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.effectiveVolume()
}

// SampleRate returns the configured rate, or 0 before Init.
func (e *Engine) SampleRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sampleRate
}

// Status returns the compact state report. Reading it clears the sticky
// clipping flag.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	var f Flags
	if e.limiterActive.Load() {
		f |= FlagLimiterActive
	}

	if e.clipping.Swap(false) {
		f |= FlagClipping
	}

	if e.muted {
		f |= FlagMuted
	}

	if e.duck {
		f |= FlagDuck
	}

	if e.normalizer {
		f |= FlagNormalizer
	}

	return Status{Preset: e.preset, Loudness: e.loudness, Flags: f}
}

// Snapshot returns every control-side setting at once.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Initialized:     e.initialized,
		SampleRate:      e.sampleRate,
		Preset:          e.preset,
		Loudness:        e.loudness,
		Muted:           e.muted,
		AudioDuck:       e.duck,
		Normalizer:      e.normalizer,
		Bypass:          e.bypass,
		BassBoost:       e.bassBoost,
		VolumeTrim:      e.trim,
		VolumeCap:       e.volumeCap(),
		EffectiveVolume: e.effectiveVolume(),
	}
}

// change runs apply under the control lock and publishes new targets if
// it reports a change.
func (e *Engine) change(event string, apply func() bool, attrs ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return ErrNotInitialized
	}

	if !apply() {
		return nil
	}

	e.publish()
	e.log.Info(event, append(attrs, "effective_volume", e.effectiveVolume())...)

	return nil
}

func setBool(dst *bool, v bool) func() bool {
	return func() bool {
		if *dst == v {
			return false
		}
		*dst = v
		return true
	}
}

func (e *Engine) publish() {
	*e.shared.Back() = e.buildParams()
	e.shared.Publish()
}

func (e *Engine) volumeCap() int {
	return VolumeCap(e.preset, e.normalizer, e.cfg.normalizerReduction)
}

func (e *Engine) effectiveVolume() int {
	return min(e.trim, e.volumeCap())
}

// buildParams derives the complete target set from the control state.
func (e *Engine) buildParams() params {
	fs := float64(e.sampleRate)

	p := params{
		gen:        e.gen,
		normEpoch:  e.normEpoch,
		sampleRate: fs,
		preGain:    core.DBToLinear(preGainDB),
		hpf:        design.Highpass(hpfFreqHz, hpfQ, fs),
		bass:       design.Bypass(),
		normalizer: e.normalizer,
		bypass:     e.bypass,
		volume:     VolumeGain(e.effectiveVolume()),
		duck:       1,
		mute:       1,
	}

	for i, b := range presetBands[e.preset] {
		p.eq[i] = clampBand(b, fs).Coefficients(fs)
	}

	for i, b := range loudnessBands {
		p.loudness[i] = clampBand(b, fs).Coefficients(fs)
	}

	if e.loudness {
		p.loudnessMix = 1
	}

	if e.bassBoost {
		p.bass = clampBand(bassBoostBand, fs).Coefficients(fs)
	}

	if e.duck {
		p.duck = core.DBToLinear(duckGainDB)
	}

	if e.muted {
		p.mute = 0
	}

	return p
}
