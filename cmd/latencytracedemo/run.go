package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sumatoshi-tech/latencytrace/internal/telemetry"
	"github.com/Sumatoshi-tech/latencytrace/pkg/latencytrace"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatHTML  = "html"
)

type runOptions struct {
	groupBy     string
	format      string
	noColor     bool
	metricsAddr string
	configFile  string
	htmlOut     string
}

func run(opts runOptions) error {
	if err := loadConfigFile(opts.configFile, &opts); err != nil {
		return err
	}

	providers, err := telemetry.Init(telemetry.DefaultConfig())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	ctx := context.Background()
	defer func() { _ = providers.Shutdown(ctx) }()

	h, err := latencytrace.Activate(
		latencytrace.WithSpanGrouper(resolveGrouper(opts.groupBy)),
		latencytrace.WithTracerProvider(providers.TracerProvider),
	)
	if err != nil {
		return fmt.Errorf("activate latencytrace: %w", err)
	}

	defer func() { _ = h.Shutdown(ctx) }()

	if err := h.ExposeMetrics(providers.Meter()); err != nil {
		return fmt.Errorf("expose metrics: %w", err)
	}

	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, providers)
		defer func() { _ = srv.Close() }()
	}

	timings := h.Measure(ctx, func(ctx context.Context) {
		runWorkload(ctx, providers.Tracer())
	})

	return renderReport(timings, opts)
}

func resolveGrouper(spec string) latencytrace.GrouperFunc {
	switch spec {
	case "", "callsite":
		return latencytrace.ByCallsite
	case "all-fields":
		return latencytrace.ByAllFields
	default:
		fields := strings.Split(spec, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		return latencytrace.ByGivenFields(fields...)
	}
}

func serveMetrics(addr string, providers *telemetry.Providers) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() { _ = srv.ListenAndServe() }()

	return srv
}
