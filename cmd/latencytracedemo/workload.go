package main

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/latencytrace/pkg/latencytrace"
)

// runWorkload simulates a small request-handling pipeline: an outer span
// per request, fanning out into per-item spans that alternate between
// CPU-bound work (active time) and a simulated blocking I/O wait
// (suspended via Enter/Exit, so it does not count as active time).
func runWorkload(ctx context.Context, tracer trace.Tracer) {
	for req := 0; req < 5; req++ {
		runRequest(ctx, tracer, req)
	}
}

func runRequest(ctx context.Context, tracer trace.Tracer, req int) {
	ctx, outer := tracer.Start(ctx, "handle_request",
		trace.WithAttributes(attribute.Int("request_id", req)))
	defer outer.End()

	for item := 0; item < 3; item++ {
		runItem(ctx, tracer, item)
	}
}

func runItem(ctx context.Context, tracer trace.Tracer, item int) {
	ctx, span := tracer.Start(ctx, "process_item",
		trace.WithAttributes(attribute.Int("item_id", item)))
	defer span.End()

	busyWork(1 + rand.Intn(3))

	latencytrace.Exit(ctx)
	time.Sleep(time.Duration(1+rand.Intn(3)) * time.Millisecond)
	latencytrace.Enter(ctx)

	busyWork(1 + rand.Intn(2))
}

func busyWork(rounds int) {
	x := 0
	for i := 0; i < rounds*200_000; i++ {
		x += i % 7
	}

	_ = x
}
