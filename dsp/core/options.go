package core

import "iter"

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	// SampleRate in Hz.
	SampleRate float64
	// BlockSize is the largest number of frames processed in one pass.
	// Longer buffers are split into chunks of at most BlockSize frames.
	BlockSize int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults of a streaming speaker
// pipeline: 48 kHz and 512-frame chunks.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
	}
}

// WithBlockSize sets the processing block size. Non-positive sizes are
// ignored.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// Chunks yields (offset, length) pairs that cover frames in order with
// lengths of at most BlockSize. A non-positive BlockSize yields a single
// chunk.
func (c ProcessorConfig) Chunks(frames int) iter.Seq2[int, int] {
	size := c.BlockSize
	if size <= 0 {
		size = frames
	}

	return func(yield func(int, int) bool) {
		for off := 0; off < frames; off += size {
			if !yield(off, min(size, frames-off)) {
				return
			}
		}
	}
}
