package hillclimb

import "errors"

var (
	// ErrUnsupportedMode is returned for decoding modes this package does not
	// implement.
	ErrUnsupportedMode = errors.New("hillclimb: unsupported decoding mode")
	// ErrInvalidOptions wraps option validation failures.
	ErrInvalidOptions = errors.New("hillclimb: invalid options")
	// ErrSamplerExhausted is raised when initialization fails at every
	// temperature tried.
	ErrSamplerExhausted = errors.New("hillclimb: random walk sampler exhausted")
	// ErrNotRunning is returned when dispatching on a decoder whose pool is
	// not initialized.
	ErrNotRunning = errors.New("hillclimb: worker pool not running")
)
