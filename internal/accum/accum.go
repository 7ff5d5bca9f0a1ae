// Package accum implements the sharded accumulator that stands in for
// the per-OS-thread accumulator of the original design. Go offers no
// goroutine-local storage and no goroutine-teardown hook, so accumulation
// is striped across a fixed array of independently-locked shards instead
// of one accumulator per thread; shard selection is a lock-free atomic
// round robin, keeping the hot path free of any lock held across more
// than one shard's own brief critical section.
package accum

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/latencytrace/internal/groupkey"
	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
)

// Timing holds the total-time and active-time histograms for one span
// group.
type Timing struct {
	Total  *ihist.Histogram
	Active *ihist.Histogram
}

// Shard is one independently-locked accumulator stripe.
type Shard struct {
	mu      sync.Mutex
	timings map[string]*Timing
	keys    map[string]groupkey.Key
}

func newShard() *Shard {
	return &Shard{
		timings: make(map[string]*Timing),
		keys:    make(map[string]groupkey.Key),
	}
}

// Set is the fixed array of shards an activated processor records into.
type Set struct {
	shards []*Shard
	mask   uint64
	next   atomic.Uint64
	cfg    ihist.Config
}

// NewSet returns a Set sized to roughly 4x GOMAXPROCS, rounded up to a
// power of two so shard selection can mask instead of divide.
func NewSet(cfg ihist.Config) *Set {
	want := runtime.GOMAXPROCS(0) * 4
	if want < 1 {
		want = 1
	}

	size := 1
	for size < want {
		size <<= 1
	}

	shards := make([]*Shard, size)
	for i := range shards {
		shards[i] = newShard()
	}

	return &Set{shards: shards, mask: uint64(size - 1), cfg: cfg}
}

// Config returns the histogram configuration shared by every Timing this
// Set produces.
func (s *Set) Config() ihist.Config { return s.cfg }

// Record folds one (total, active) sample pair into the group identified
// by key, on a round-robin-selected shard.
func (s *Set) Record(key groupkey.Key, total, active uint64) {
	shard := s.shards[s.next.Add(1)&s.mask]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	digest := key.Hash()

	t, ok := shard.timings[digest]
	if !ok {
		t = &Timing{Total: ihist.New(s.cfg), Active: ihist.New(s.cfg)}
		shard.timings[digest] = t
		shard.keys[digest] = key
	}

	t.Total.Record(total)
	t.Active.Record(active)
}

// Snapshot is a merged, reduced view across all shards: one Timing per
// distinct group key, plus the key each digest was computed from.
type Snapshot struct {
	Timings map[string]*Timing
	Keys    map[string]groupkey.Key
}

// Probe returns a non-destructive snapshot: shards keep accumulating.
func (s *Set) Probe() Snapshot {
	return s.reduce(false)
}

// Take returns a destructive snapshot: every shard is drained and reset.
func (s *Set) Take() Snapshot {
	return s.reduce(true)
}

func (s *Set) reduce(drain bool) Snapshot {
	out := Snapshot{
		Timings: make(map[string]*Timing),
		Keys:    make(map[string]groupkey.Key),
	}

	for _, shard := range s.shards {
		shard.mu.Lock()

		for digest, t := range shard.timings {
			dst, ok := out.Timings[digest]
			if !ok {
				dst = &Timing{Total: ihist.New(s.cfg), Active: ihist.New(s.cfg)}
				out.Timings[digest] = dst
				out.Keys[digest] = shard.keys[digest]
			}

			dst.Total.Merge(t.Total)
			dst.Active.Merge(t.Active)
		}

		if drain {
			shard.timings = make(map[string]*Timing)
			shard.keys = make(map[string]groupkey.Key)
		}

		shard.mu.Unlock()
	}

	return out
}
