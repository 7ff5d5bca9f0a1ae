package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/latencytrace/internal/telemetry"
)

func TestInit_ProvidesUsableProviders(t *testing.T) {
	t.Parallel()

	providers, err := telemetry.Init(telemetry.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	assert.NotNil(t, providers.Tracer())
	assert.NotNil(t, providers.Meter())
	assert.NotNil(t, providers.Logger)
}

func TestInit_DebugTraceForcesAlwaysOn(t *testing.T) {
	t.Parallel()

	cfg := telemetry.DefaultConfig()
	cfg.DebugTrace = true

	providers, err := telemetry.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	_, span := providers.Tracer().Start(context.Background(), "probe")
	defer span.End()

	assert.True(t, span.SpanContext().IsSampled())
}
