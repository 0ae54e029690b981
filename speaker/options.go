package speaker

import (
	"log/slog"

	"github.com/cwbudde/algo-speaker/dsp/core"
	"github.com/cwbudde/algo-speaker/dsp/smooth"
)

// DefaultNormalizerVolumeReduction is the volume cap reduction applied
// while the normalizer is enabled.
const DefaultNormalizerVolumeReduction = 15

type config struct {
	core.ProcessorConfig

	smoothingMs         float64
	normalizerReduction int
	logger              *slog.Logger
}

// Option configures an Engine.
type Option func(*config)

func defaultConfig() config {
	return config{
		ProcessorConfig:     core.DefaultProcessorConfig(),
		smoothingMs:         smooth.DefaultTimeMs,
		normalizerReduction: DefaultNormalizerVolumeReduction,
		logger:              slog.New(slog.DiscardHandler),
	}
}

// WithMaxBlockSize sets the largest chunk processed in one pass. Longer
// buffers are split. Values <= 0 are ignored.
func WithMaxBlockSize(frames int) Option {
	return func(c *config) {
		core.WithBlockSize(frames)(&c.ProcessorConfig)
	}
}

// WithSmoothingTime sets the time constant of every gain and coefficient
// ramp in milliseconds. Values <= 0 are ignored.
func WithSmoothingTime(ms float64) Option {
	return func(c *config) {
		if ms > 0 {
			c.smoothingMs = ms
		}
	}
}

// WithNormalizerVolumeReduction sets how many volume steps the cap drops
// while the normalizer is on. Values outside [0, 100] are ignored.
func WithNormalizerVolumeReduction(steps int) Option {
	return func(c *config) {
		if steps >= 0 && steps <= 100 {
			c.normalizerReduction = steps
		}
	}
}

// WithLogger sets the logger for control-side events. A nil logger is
// ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
