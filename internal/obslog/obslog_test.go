package obslog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/latencytrace/internal/obslog"
)

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(obslog.NewTracingHandler(inner))

	tp := trace.NewTracerProvider()
	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "span")
	defer span.End()

	logger.InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "trace_id=")
	assert.Contains(t, out, "span_id=")
	assert.Contains(t, out, span.SpanContext().TraceID().String())
}

func TestTracingHandler_NoSpanOmitsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(obslog.NewTracingHandler(slog.NewTextHandler(&buf, nil)))
	logger.InfoContext(context.Background(), "hello")

	assert.NotContains(t, buf.String(), "trace_id=")
}

func TestTracingHandler_NilInnerDiscardsQuietly(t *testing.T) {
	t.Parallel()

	logger := slog.New(obslog.NewTracingHandler(nil))
	logger.Error("should not panic or write anywhere visible")
}
