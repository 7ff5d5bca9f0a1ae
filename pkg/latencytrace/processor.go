package latencytrace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/latencytrace/internal/accum"
	"github.com/Sumatoshi-tech/latencytrace/internal/callsite"
	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
	"github.com/Sumatoshi-tech/latencytrace/internal/groupkey"
	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
	"github.com/Sumatoshi-tech/latencytrace/internal/scratch"
)

// Semantic-convention keys for the source location of the code that
// started a span. Not yet stabilized into the semconv package's typed
// constants, so referenced here as raw attribute keys.
const (
	attrCodeFilepath = attribute.Key("code.filepath")
	attrCodeLineno   = attribute.Key("code.lineno")
)

// processor is the sdktrace.SpanProcessor this package installs on a
// TracerProvider. It implements the host framework's only two lifecycle
// hooks, OnStart and OnEnd; enter/exit are handled out of band by Enter
// and Exit, since OTel's Go SDK has no native notion of a span being
// re-entered.
type processor struct {
	grouper   grouper.Func
	callsites *callsite.Registry
	scratches *scratch.Registry
	accum     *accum.Set
}

func newProcessor(cfg Config) *processor {
	return &processor{
		grouper:   cfg.Grouper,
		callsites: callsite.NewRegistry(),
		scratches: scratch.NewRegistry(),
		accum:     accum.NewSet(ihist.Config{High: cfg.HistHigh, SigFigs: cfg.HistSigfig}),
	}
}

func (p *processor) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	key := scratch.Key{TraceID: sc.TraceID(), SpanID: sc.SpanID()}

	file, line := sourceLocation(s.Attributes())
	info := p.callsites.Intern(callsite.Identity{Name: s.Name(), File: file, Line: line})
	props := p.grouper(s.Attributes())

	st := &scratch.State{
		CreatedAt: s.StartTime(),
		Callsite:  info,
		Props:     props,
	}

	if parent := s.Parent(); parent.IsValid() {
		st.ParentKey = scratch.Key{TraceID: parent.TraceID(), SpanID: parent.SpanID()}
		st.HasParent = true
	}

	p.scratches.Start(key, st)
}

func (p *processor) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	key := scratch.Key{TraceID: sc.TraceID(), SpanID: sc.SpanID()}

	endTime := s.EndTime()

	st := p.scratches.Finish(key, endTime)
	if st == nil {
		// Unknown span: the host framework closed a span this processor
		// never saw OnStart for. Defensively ignored, per design.
		return
	}

	total := endTime.Sub(st.CreatedAt)
	if total < 0 {
		total = 0
	}

	chain, props := p.ancestorChain(st)
	gk := groupkey.New(chain, props)

	p.accum.Record(gk, uint64(total.Nanoseconds()), uint64(st.ActiveAccum.Nanoseconds()))
}

// sourceLocation extracts the code.filepath/code.lineno attributes a
// span was started with, if the caller supplied them, so that two
// distinct instrumentation sites sharing a span name are not silently
// merged into one callsite identity. Either or both are left zero-valued
// when absent.
func sourceLocation(attrs []attribute.KeyValue) (file string, line int) {
	for _, a := range attrs {
		switch a.Key {
		case attrCodeFilepath:
			file = a.Value.AsString()
		case attrCodeLineno:
			line = int(a.Value.AsInt64())
		}
	}

	return file, line
}

func (p *processor) Shutdown(_ context.Context) error { return nil }

func (p *processor) ForceFlush(_ context.Context) error { return nil }

// ancestorChain walks st's ancestors through the scratch registry,
// relying on the host framework's invariant that an ancestor span is
// still open whenever one of its descendants closes.
func (p *processor) ancestorChain(st *scratch.State) ([]*callsite.Info, []grouper.Props) {
	var chainRev []*callsite.Info

	var propsRev []grouper.Props

	cur := st
	for {
		chainRev = append(chainRev, cur.Callsite)
		propsRev = append(propsRev, cur.Props)

		if !cur.HasParent {
			break
		}

		parent := p.scratches.Get(cur.ParentKey)
		if parent == nil {
			break
		}

		cur = parent
	}

	n := len(chainRev)
	chain := make([]*callsite.Info, n)
	props := make([]grouper.Props, n)

	for i, c := range chainRev {
		chain[n-1-i] = c
		props[n-1-i] = propsRev[i]
	}

	return chain, props
}

func (p *processor) enter(ctx context.Context, now time.Time) {
	key, ok := spanKeyFromContext(ctx)
	if !ok {
		return
	}

	p.scratches.Enter(key, now)
}

func (p *processor) exit(ctx context.Context, now time.Time) {
	key, ok := spanKeyFromContext(ctx)
	if !ok {
		return
	}

	p.scratches.Exit(key, now)
}
