// Package callsite interns the source-location identity of instrumented
// spans so that every span created at the same call site shares one Info
// pointer.
package callsite

import (
	"strconv"
	"sync"
)

// Identity is the stable signature of an instrumentation site. OTel spans
// carry no opaque per-call-site token, so file+line+name stands in for it.
type Identity struct {
	Name string
	File string
	Line int
}

// Info describes one interned call site.
type Info struct {
	Identity Identity
}

// Name reports the span name this call site was recorded under.
func (i *Info) Name() string { return i.Identity.Name }

// SourceLocation reports "file:line" when the call site carried
// code.filepath/code.lineno attributes, falling back to the span name
// itself as a string form of the callsite identity when it didn't.
func (i *Info) SourceLocation() string {
	if i.Identity.File == "" {
		return i.Identity.Name
	}

	return i.Identity.File + ":" + strconv.Itoa(i.Identity.Line)
}

// Registry interns Info values by Identity.
type Registry struct {
	mu      sync.RWMutex
	entries map[Identity]*Info
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Identity]*Info)}
}

// Intern returns the shared Info for id, creating it on first sight.
func (r *Registry) Intern(id Identity) *Info {
	r.mu.RLock()
	info, ok := r.entries[id]
	r.mu.RUnlock()

	if ok {
		return info
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.entries[id]; ok {
		return info
	}

	info = &Info{Identity: id}
	r.entries[id] = info

	return info
}
