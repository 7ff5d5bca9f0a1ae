package metricsbridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
	"github.com/Sumatoshi-tech/latencytrace/internal/metricsbridge"
	"github.com/Sumatoshi-tech/latencytrace/internal/spangroup"
)

func TestBridge_PublishesProbedEntriesAsGauges(t *testing.T) {
	t.Parallel()

	cfg := ihist.Config{High: 1_000_000, SigFigs: 2}

	total := ihist.New(cfg)
	total.Record(1_000_000)

	active := ihist.New(cfg)
	active.Record(500_000)

	entry := spangroup.Entry{
		Group:  spangroup.Group{Name: "work", StableID: "abc123", Depth: 1},
		Timing: spangroup.Timing{Total: total, Active: active},
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	meter := mp.Meter("test")

	_, err := metricsbridge.New(meter, func() []spangroup.Entry {
		return []spangroup.Entry{entry}
	})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	require.Len(t, rm.ScopeMetrics, 1)

	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}

	assert.True(t, names["latencytrace.group.count"])
	assert.True(t, names["latencytrace.group.total.mean_seconds"])
	assert.True(t, names["latencytrace.group.active.mean_seconds"])
}
