package latencytrace

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/latencytrace/internal/metricsbridge"
	"github.com/Sumatoshi-tech/latencytrace/internal/spangroup"
)

// ExposeMetrics registers OTel observable-gauge instruments on mt that
// report a probed snapshot of h's accumulated latencies on every
// collection cycle, alongside whatever in-process Timings the caller
// also obtains via Probe/Wait.
func (h *Handle) ExposeMetrics(mt metric.Meter) error {
	probe := func() []spangroup.Entry {
		return spangroup.Process(h.proc.accum.Probe(), h.proc.accum.Config())
	}

	if _, err := metricsbridge.New(mt, probe); err != nil {
		return fmt.Errorf("latencytrace: expose metrics: %w", err)
	}

	return nil
}
