package latencytrace

import (
	"time"

	"github.com/Sumatoshi-tech/latencytrace/internal/accum"
	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
	"github.com/Sumatoshi-tech/latencytrace/internal/spangroup"
)

// Group is the public identity of a span group: its name, a stable
// content-addressed ID, its parent's ID (empty for a root group), its
// source location, its capture props, and its depth from the
// measurement root.
type Group = spangroup.Group

// Field is one exported (name, value) capture prop.
type Field = spangroup.Field

// Histogram reports summary statistics over a set of latency samples.
// It wraps the library's internal histogram implementation so that
// total-time and active-time values can be reported without exposing an
// internal package in this module's public API.
type Histogram struct {
	inner *ihist.Histogram
}

// Count returns the number of samples recorded.
func (h Histogram) Count() uint64 { return h.inner.Count() }

// Mean returns the arithmetic mean latency, as a time.Duration.
func (h Histogram) Mean() time.Duration { return time.Duration(h.inner.Mean()) }

// Stdev returns the population standard deviation of latency.
func (h Histogram) Stdev() time.Duration { return time.Duration(h.inner.Stdev()) }

// Min returns the smallest recorded latency.
func (h Histogram) Min() time.Duration { return time.Duration(h.inner.Min()) }

// Max returns the largest recorded latency.
func (h Histogram) Max() time.Duration { return time.Duration(h.inner.Max()) }

// ValueAtQuantile returns the latency at or below which the fraction q of
// samples fall.
func (h Histogram) ValueAtQuantile(q float64) time.Duration {
	return time.Duration(h.inner.ValueAtQuantile(q))
}

// Timing is the total-time and active-time histogram pair for one span
// group: total time spans the whole interval from span creation to span
// close; active time counts only the intervals during which the span is
// entered. A span counts as entered from its creation until its first
// Exit, and again from each Enter until the next Exit or its close.
type Timing struct {
	Total  Histogram
	Active Histogram
}

// SummaryStats is a fixed set of descriptive statistics computed from one
// Histogram, matching the summary the library reports for a
// single-histogram view of a span group's latency.
type SummaryStats struct {
	Count  uint64
	Mean   time.Duration
	Stdev  time.Duration
	Min    time.Duration
	P1     time.Duration
	P5     time.Duration
	P10    time.Duration
	P25    time.Duration
	Median time.Duration
	P75    time.Duration
	P90    time.Duration
	P95    time.Duration
	P99    time.Duration
	Max    time.Duration
}

// NewSummaryStats computes a SummaryStats from h.
func NewSummaryStats(h Histogram) SummaryStats {
	return SummaryStats{
		Count:  h.Count(),
		Mean:   h.Mean(),
		Stdev:  h.Stdev(),
		Min:    h.Min(),
		P1:     h.ValueAtQuantile(0.01),
		P5:     h.ValueAtQuantile(0.05),
		P10:    h.ValueAtQuantile(0.10),
		P25:    h.ValueAtQuantile(0.25),
		Median: h.ValueAtQuantile(0.50),
		P75:    h.ValueAtQuantile(0.75),
		P90:    h.ValueAtQuantile(0.90),
		P95:    h.ValueAtQuantile(0.95),
		P99:    h.ValueAtQuantile(0.99),
		Max:    h.Max(),
	}
}

// Entry pairs a Group with its Timing.
type Entry struct {
	Group  Group
	Timing Timing
}

// Timings is an ordered, deterministic view of every span group recorded
// in one measurement.
type Timings struct {
	Entries []Entry
	histCfg ihist.Config
}

func newTimings(snap accum.Snapshot, p *processor) Timings {
	cfg := p.accum.Config()
	raw := spangroup.Process(snap, cfg)

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, Entry{
			Group: e.Group,
			Timing: Timing{
				Total:  Histogram{inner: e.Timing.Total},
				Active: Histogram{inner: e.Timing.Active},
			},
		})
	}

	return Timings{Entries: entries, histCfg: cfg}
}

// Aggregate folds t's entries by the value of f applied to each Group,
// merging every Timing that maps to the same key. Merge order does not
// affect the result: histogram merging is commutative and associative.
func Aggregate[K comparable](t Timings, f func(Group) K) map[K]Timing {
	res := make(map[K]Timing)

	for _, e := range t.Entries {
		k := f(e.Group)

		timing, ok := res[k]
		if !ok {
			timing = Timing{
				Total:  Histogram{inner: ihist.New(t.histCfg)},
				Active: Histogram{inner: ihist.New(t.histCfg)},
			}
		}

		timing.Total.inner.Merge(e.Timing.Total.inner)
		timing.Active.inner.Merge(e.Timing.Active.inner)
		res[k] = timing
	}

	return res
}
