// Package scratch holds the per-span bookkeeping needed between a span's
// start and its end: when it was created, how much wall time it has spent
// active, its captured grouping Props, and a pointer to its parent so the
// full ancestor chain can be reconstructed on close.
package scratch

import (
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/latencytrace/internal/callsite"
	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
)

// Key identifies a live span by its trace and span IDs, both fixed-size
// comparable arrays, so Key is usable directly as a map key.
type Key struct {
	TraceID trace.TraceID
	SpanID  trace.SpanID
}

// State is the scratch record for one live span.
type State struct {
	CreatedAt     time.Time
	LastEnteredAt time.Time
	Entered       bool
	ActiveAccum   time.Duration
	Callsite      *callsite.Info
	Props         grouper.Props
	ParentKey     Key
	HasParent     bool
}

// Registry maps live spans to their State.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*State
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]*State)}
}

// Start records a new span's State, keyed by key. Every span, with or
// without a parent, implicitly begins "entered" as of its CreatedAt: it
// counts as active from creation until the first explicit Exit.
func (r *Registry) Start(key Key, st *State) {
	st.LastEnteredAt = st.CreatedAt
	st.Entered = true

	r.mu.Lock()
	r.entries[key] = st
	r.mu.Unlock()
}

// Get returns the State for key, or nil if unknown.
func (r *Registry) Get(key Key) *State {
	r.mu.Lock()
	st := r.entries[key]
	r.mu.Unlock()

	return st
}

// Enter marks key as active as of now, advancing from a prior Exit.
// Calling Enter on an already-entered span, or on an unknown span, is a
// harmless no-op (see the library's defensive error-handling design).
func (r *Registry) Enter(key Key, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.entries[key]
	if st == nil || st.Entered {
		return
	}

	st.LastEnteredAt = now
	st.Entered = true
}

// Exit marks key as suspended as of now, folding the just-finished active
// interval into ActiveAccum. Calling Exit on an already-exited span, or on
// an unknown span, is a harmless no-op.
func (r *Registry) Exit(key Key, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.entries[key]
	if st == nil || !st.Entered {
		return
	}

	st.ActiveAccum += now.Sub(st.LastEnteredAt)
	st.Entered = false
}

// Finish removes and returns key's State, folding in any still-open active
// interval as of now. Returns nil if key is unknown.
func (r *Registry) Finish(key Key, now time.Time) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.entries[key]
	if st == nil {
		return nil
	}

	if st.Entered {
		st.ActiveAccum += now.Sub(st.LastEnteredAt)
		st.Entered = false
	}

	delete(r.entries, key)

	return st
}
