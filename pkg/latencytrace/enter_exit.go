package latencytrace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/latencytrace/internal/scratch"
)

// Enter marks the span found in ctx as actively running as of now. Call
// it right after resuming work that was previously suspended by Exit —
// around a blocking call, a channel receive, or a select. If no latency
// tracing has been activated, or ctx carries no valid span, Enter is a
// harmless no-op.
func Enter(ctx context.Context) {
	h := activeHandle.Load()
	if h == nil {
		return
	}

	h.proc.enter(ctx, time.Now())
}

// Exit marks the span found in ctx as suspended as of now, folding the
// interval since the last Enter (or since the span started, if Enter was
// never called) into its active-time accumulation. If no latency tracing
// has been activated, or ctx carries no valid span, Exit is a harmless
// no-op.
func Exit(ctx context.Context) {
	h := activeHandle.Load()
	if h == nil {
		return
	}

	h.proc.exit(ctx, time.Now())
}

func spanKeyFromContext(ctx context.Context) (scratch.Key, bool) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return scratch.Key{}, false
	}

	return scratch.Key{TraceID: sc.TraceID(), SpanID: sc.SpanID()}, true
}
