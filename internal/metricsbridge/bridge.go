// Package metricsbridge publishes a probed Timings snapshot as OTel
// observable-gauge instruments, so a probed measurement can be scraped
// the same way any other OTel metric is, alongside the in-process
// Timings map.
package metricsbridge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/latencytrace/internal/spangroup"
)

const (
	metricGroupCount      = "latencytrace.group.count"
	metricGroupMeanTotal  = "latencytrace.group.total.mean_seconds"
	metricGroupMeanActive = "latencytrace.group.active.mean_seconds"

	attrGroupName = "group.name"
	attrGroupID   = "group.stable_id"
)

// Bridge exposes a probe function's output as OTel instruments.
type Bridge struct {
	count      metric.Int64ObservableGauge
	meanTotal  metric.Float64ObservableGauge
	meanActive metric.Float64ObservableGauge
}

// New registers OTel instruments on mt whose values come from calling
// probe on each collection cycle. Whatever reader the meter provider was
// built with invokes the callback on each collection (a Prometheus scrape,
// a periodic export, or a manual Collect); no separate polling is needed.
func New(mt metric.Meter, probe func() []spangroup.Entry) (*Bridge, error) {
	count, err := mt.Int64ObservableGauge(metricGroupCount,
		metric.WithDescription("Number of samples recorded for this span group"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricGroupCount, err)
	}

	meanTotal, err := mt.Float64ObservableGauge(metricGroupMeanTotal,
		metric.WithDescription("Mean total time for this span group"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricGroupMeanTotal, err)
	}

	meanActive, err := mt.Float64ObservableGauge(metricGroupMeanActive,
		metric.WithDescription("Mean active time for this span group"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricGroupMeanActive, err)
	}

	b := &Bridge{count: count, meanTotal: meanTotal, meanActive: meanActive}

	observe := func(_ context.Context, obs metric.Observer) error {
		for _, entry := range probe() {
			attrs := metric.WithAttributes(
				attribute.String(attrGroupName, entry.Group.Name),
				attribute.String(attrGroupID, entry.Group.StableID),
			)

			obs.ObserveInt64(b.count, int64(entry.Timing.Total.Count()), attrs)
			obs.ObserveFloat64(b.meanTotal, entry.Timing.Total.Mean()/1e9, attrs)
			obs.ObserveFloat64(b.meanActive, entry.Timing.Active.Mean()/1e9, attrs)
		}

		return nil
	}

	if _, err := mt.RegisterCallback(observe, count, meanTotal, meanActive); err != nil {
		return nil, fmt.Errorf("register latencytrace metrics callback: %w", err)
	}

	return b, nil
}
