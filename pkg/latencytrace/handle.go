package latencytrace

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// activeHandle is the process-wide activation, set at most once.
// First-activation-wins: a conflicting second Activate call is rejected
// rather than silently reconfiguring the first (see the design decision
// record for why the more permissive alternative was not chosen).
var activeHandle atomic.Pointer[Handle]

// Handle is the result of Activate. It owns the span processor and the
// TracerProvider it was installed on.
type Handle struct {
	proc *processor
	cfg  Config
	tp   *sdktrace.TracerProvider
	owns bool
}

// Activate installs latency tracing for the current process. It may be
// called at most once per process with a given effective Config; a
// second call with a compatible Config (same grouper, histogram bounds,
// and tracer provider) is a benign re-activation that returns the
// already-active Handle. A second call with an incompatible Config
// returns ErrSubscriberConflict, since the active instance is not "ours"
// in that case.
func Activate(opts ...Option) (*Handle, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Handle{proc: newProcessor(cfg), cfg: cfg}

	if !activeHandle.CompareAndSwap(nil, h) {
		existing := activeHandle.Load()
		if existing == nil {
			// Lost the race to a concurrent Shutdown; nothing is active
			// now, so there is nothing compatible to hand back.
			return nil, ErrSubscriberConflict
		}

		if !existing.cfg.compatible(cfg) {
			return nil, ErrSubscriberConflict
		}

		return existing, nil
	}

	tp := cfg.TracerProvider
	owns := false

	if tp == nil {
		tp = sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		owns = true
	}

	tp.RegisterSpanProcessor(h.proc)

	h.tp = tp
	h.owns = owns

	return h, nil
}

// Shutdown releases the process-wide activation, allowing a subsequent
// Activate call to succeed. If this Handle created its own
// TracerProvider, that provider is also shut down.
func (h *Handle) Shutdown(ctx context.Context) error {
	activeHandle.CompareAndSwap(h, nil)

	if h.owns {
		if err := h.tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("latencytrace: shutdown tracer provider: %w", err)
		}
	}

	return nil
}

// Measure runs f synchronously to completion on the calling goroutine,
// then returns a destructive snapshot of everything recorded during f.
func (h *Handle) Measure(ctx context.Context, f func(context.Context)) Timings {
	f(ctx)

	return newTimings(h.proc.accum.Take(), h.proc)
}

// MeasureProbed runs f on a new goroutine and returns a ProbedHandle that
// can be repeatedly Probed while f runs, and finally Waited on exactly
// once to obtain a destructive snapshot after f completes.
func (h *Handle) MeasureProbed(ctx context.Context, f func(context.Context)) *ProbedHandle {
	ph := &ProbedHandle{h: h}
	ph.wg.Add(1)

	go func() {
		defer ph.wg.Done()

		defer func() {
			if r := recover(); r != nil {
				ph.panicVal = r
			}
		}()

		f(ctx)
	}()

	return ph
}

// ProbedHandle lets a caller observe latency accumulation while a
// workload is still running.
type ProbedHandle struct {
	h        *Handle
	wg       sync.WaitGroup
	waited   atomic.Bool
	panicVal any
}

// Probe returns a non-destructive snapshot of everything recorded so far.
// It may be called any number of times, including while the workload is
// still running.
func (ph *ProbedHandle) Probe() Timings {
	return newTimings(ph.h.proc.accum.Probe(), ph.h.proc)
}

// Wait blocks until the workload started by MeasureProbed completes, then
// returns a destructive snapshot of everything it recorded. Wait may be
// called at most once per ProbedHandle; subsequent calls return
// ErrAlreadyWaited. If the workload panicked, Wait re-raises that panic
// after the workload's already-accumulated data has been safely folded
// into the accumulator (Probe remains valid to call regardless).
func (ph *ProbedHandle) Wait() (Timings, error) {
	if !ph.waited.CompareAndSwap(false, true) {
		return Timings{}, ErrAlreadyWaited
	}

	ph.wg.Wait()

	if ph.panicVal != nil {
		panic(ph.panicVal)
	}

	return newTimings(ph.h.proc.accum.Take(), ph.h.proc), nil
}
