package latencytrace

import (
	"fmt"
	"reflect"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	defaultHistHigh   uint64 = 20_000_000_000 // 20 seconds, in nanoseconds
	defaultHistSigfig uint8  = 2
)

// Config configures an activation of latency tracing. Build one with
// DefaultConfig and override it with Options, the same functional-options
// shape used throughout this codebase's configuration types.
type Config struct {
	Grouper        GrouperFunc
	HistHigh       uint64
	HistSigfig     uint8
	TracerProvider *sdktrace.TracerProvider
}

// DefaultConfig returns a Config with the library's documented defaults:
// grouping by call site alone, and histograms covering up to 20 seconds
// at 2 significant figures. These defaults are carried over as-is from
// the original design; they are not claimed to be optimal for every
// workload.
func DefaultConfig() Config {
	return Config{
		Grouper:    ByCallsite,
		HistHigh:   defaultHistHigh,
		HistSigfig: defaultHistSigfig,
	}
}

// Option mutates a Config during Activate.
type Option func(*Config)

// WithSpanGrouper overrides the default call-site-only grouping.
func WithSpanGrouper(f GrouperFunc) Option {
	return func(c *Config) { c.Grouper = f }
}

// WithHistHigh overrides the highest latency value, in nanoseconds, that
// histograms can record without clamping.
func WithHistHigh(v uint64) Option {
	return func(c *Config) { c.HistHigh = v }
}

// WithHistSigfig overrides the number of significant decimal digits of
// resolution histograms preserve, 0-5.
func WithHistSigfig(v uint8) Option {
	return func(c *Config) { c.HistSigfig = v }
}

// WithTracerProvider installs the span processor on an
// application-owned TracerProvider instead of one this package creates
// and installs globally.
func WithTracerProvider(tp *sdktrace.TracerProvider) Option {
	return func(c *Config) { c.TracerProvider = tp }
}

func (c Config) validate() error {
	if c.Grouper == nil {
		return fmt.Errorf("%w: grouper must not be nil", ErrInvalidConfig)
	}

	if c.HistHigh < 2 {
		return fmt.Errorf("%w: hist high must be at least 2", ErrInvalidConfig)
	}

	if c.HistSigfig > 5 {
		return fmt.Errorf("%w: hist sigfig must be 0-5", ErrInvalidConfig)
	}

	return nil
}

// compatible reports whether c describes the same activation as other: a
// second Activate call with a compatible Config is treated as a benign
// re-activation that hands back the already-active Handle, rather than a
// conflicting one that errors.
func (c Config) compatible(other Config) bool {
	if c.HistHigh != other.HistHigh || c.HistSigfig != other.HistSigfig {
		return false
	}

	if c.TracerProvider != other.TracerProvider {
		return false
	}

	return reflect.ValueOf(c.Grouper).Pointer() == reflect.ValueOf(other.Grouper).Pointer()
}
