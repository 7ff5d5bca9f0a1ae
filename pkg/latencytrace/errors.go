package latencytrace

import "errors"

// Sentinel errors returned by this package's exported operations.
var (
	// ErrInvalidConfig is returned by Activate when a Config option
	// produces an unusable configuration.
	ErrInvalidConfig = errors.New("latencytrace: invalid config")

	// ErrAlreadyActivated is deprecated in favor of the more precise
	// ErrSubscriberConflict. Activate no longer returns it, so matching an
	// Activate error against it with errors.Is never succeeds; it is kept
	// only so code that refers to it still compiles.
	ErrAlreadyActivated = errors.New("latencytrace: already activated in this process")

	// ErrSubscriberConflict is returned by Activate when the process has
	// already activated latency tracing with a Config incompatible with
	// the one requested. A second Activate call with a compatible Config
	// is not an error: it returns the already-active Handle.
	ErrSubscriberConflict = errors.New("latencytrace: process already activated with a conflicting config")

	// ErrAlreadyWaited is returned by ProbedHandle.Wait when called more
	// than once on the same handle.
	ErrAlreadyWaited = errors.New("latencytrace: probed handle already waited")
)
