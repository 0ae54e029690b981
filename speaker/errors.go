package speaker

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for out-of-range arguments such as an
	// unknown preset or an unsupported sample rate.
	ErrInvalidArgument = errors.New("speaker: invalid argument")

	// ErrInvalidState is returned when an operation is not allowed in the
	// engine's current lifecycle state.
	ErrInvalidState = errors.New("speaker: invalid state")

	// ErrNotInitialized is returned by setters called before Init. It
	// matches ErrInvalidState under errors.Is.
	ErrNotInitialized = fmt.Errorf("%w: engine not initialized", ErrInvalidState)
)
