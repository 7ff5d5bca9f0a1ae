// Package telemetry bootstraps the OpenTelemetry tracer and meter
// providers for the demo command: a resource carrying service identity, a
// sampler selected the same way the standard OTel environment variables
// select one, and a Prometheus-backed meter provider for scraping the
// metrics bridge.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/latencytrace/internal/obslog"
)

const (
	envTracesSampler    = "OTEL_TRACES_SAMPLER"
	envTracesSamplerArg = "OTEL_TRACES_SAMPLER_ARG"

	samplerAlwaysOn                = "always_on"
	samplerAlwaysOff               = "always_off"
	samplerTraceIDRatio            = "traceidratio"
	samplerParentBasedAlwaysOn     = "parentbased_always_on"
	samplerParentBasedAlwaysOff    = "parentbased_always_off"
	samplerParentBasedTraceIDRatio = "parentbased_traceidratio"
)

// Config configures the demo's telemetry bootstrap.
type Config struct {
	ServiceName string
	Environment string
	DebugTrace  bool
	SampleRatio float64
	LogJSON     bool
}

// DefaultConfig returns sensible demo defaults.
func DefaultConfig() Config {
	return Config{ServiceName: "latencytracedemo"}
}

// Providers holds everything the demo needs to run and report.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Exporter
	Logger         *slog.Logger
}

// Init builds a tracer provider, a Prometheus-backed meter provider, and a
// structured logger from cfg.
func Init(cfg Config) (*Providers, error) {
	res, err := buildResource(cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(selectSampler(cfg)),
	)

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("telemetry: create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	logger := slog.New(obslog.NewTracingHandler(slog.NewTextHandler(os.Stderr, nil)))

	return &Providers{TracerProvider: tp, MeterProvider: mp, Registry: exporter, Logger: logger}, nil
}

// Shutdown flushes and releases the tracer and meter providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error

	if tpErr := p.TracerProvider.Shutdown(ctx); tpErr != nil {
		errs = append(errs, fmt.Errorf("telemetry: shutdown tracer provider: %w", tpErr))
	}

	if mpErr := p.MeterProvider.Shutdown(ctx); mpErr != nil {
		errs = append(errs, fmt.Errorf("telemetry: shutdown meter provider: %w", mpErr))
	}

	return errors.Join(errs...)
}

// Tracer returns the demo's tracer.
func (p *Providers) Tracer() trace.Tracer { return p.TracerProvider.Tracer("latencytracedemo") }

// Meter returns the demo's meter.
func (p *Providers) Meter() metric.Meter { return p.MeterProvider.Meter("latencytracedemo") }

func buildResource(cfg Config) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	}

	if cfg.Environment != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.DeploymentEnvironment(cfg.Environment)))
	}

	res, err := resource.New(context.Background(), attrs...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	return res, nil
}

func selectSampler(cfg Config) sdktrace.Sampler {
	if cfg.DebugTrace {
		return sdktrace.AlwaysSample()
	}

	if name := os.Getenv(envTracesSampler); name != "" {
		return envSampler2Sampler(name, os.Getenv(envTracesSamplerArg))
	}

	if cfg.SampleRatio > 0 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

func envSampler2Sampler(name, arg string) sdktrace.Sampler {
	switch name {
	case samplerAlwaysOn:
		return sdktrace.AlwaysSample()
	case samplerAlwaysOff:
		return sdktrace.NeverSample()
	case samplerTraceIDRatio:
		return sdktrace.TraceIDRatioBased(parseRatio(arg))
	case samplerParentBasedAlwaysOn:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case samplerParentBasedAlwaysOff:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case samplerParentBasedTraceIDRatio:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(parseRatio(arg)))
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

func parseRatio(s string) float64 {
	if s == "" {
		return 1.0
	}

	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1.0
	}

	return ratio
}
