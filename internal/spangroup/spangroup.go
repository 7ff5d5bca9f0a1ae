// Package spangroup derives the public, stable span-group identities from
// a reduced accumulator snapshot and materializes ancestor groups that
// were never directly sampled.
package spangroup

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"

	"github.com/Sumatoshi-tech/latencytrace/internal/accum"
	"github.com/Sumatoshi-tech/latencytrace/internal/groupkey"
	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
)

// Group is the public identity of one span group.
type Group struct {
	Name           string
	StableID       string
	ParentID       string
	SourceLocation string
	Props          []Field
	Depth          int
}

// Field is one exported (name, value) capture prop.
type Field struct {
	Name  string
	Value string
}

// Timing is the public total/active histogram pair for one Group.
type Timing struct {
	Total  *ihist.Histogram
	Active *ihist.Histogram
}

// Entry pairs a Group with its Timing.
type Entry struct {
	Group  Group
	Timing Timing
}

// Process expands snap into a deterministically-ordered list of Entry,
// materializing any ancestor group that was never itself sampled, and
// assigning every Group a stable, content-addressed ID computed
// shortest-prefix first.
func Process(snap accum.Snapshot, cfg ihist.Config) []Entry {
	allKeys := materializeAncestors(snap.Keys)

	sort.Slice(allKeys, func(i, j int) bool {
		if allKeys[i].Depth() != allKeys[j].Depth() {
			return allKeys[i].Depth() < allKeys[j].Depth()
		}

		return allKeys[i].Hash() < allKeys[j].Hash()
	})

	stableIDs := make(map[string]string, len(allKeys))
	entries := make([]Entry, 0, len(allKeys))

	for _, key := range allKeys {
		digest := key.Hash()

		var parentID string

		if key.Depth() > 1 {
			parentID = stableIDs[key.Prefix(key.Depth()-1).Hash()]
		}

		last := key.Chain[key.Depth()-1]
		props := key.Props[key.Depth()-1]

		fields := make([]Field, 0, len(props))
		for _, p := range props {
			fields = append(fields, Field{Name: p.Name, Value: p.Value})
		}

		stableID := computeStableID(parentID, last.Identity.Name, last.SourceLocation(), fields)
		stableIDs[digest] = stableID

		group := Group{
			Name:           last.Identity.Name,
			StableID:       stableID,
			ParentID:       parentID,
			SourceLocation: last.SourceLocation(),
			Props:          fields,
			Depth:          key.Depth(),
		}

		timing := Timing{Total: ihist.New(cfg), Active: ihist.New(cfg)}
		if t, ok := snap.Timings[digest]; ok {
			timing.Total.Merge(t.Total)
			timing.Active.Merge(t.Active)
		}

		entries = append(entries, Entry{Group: group, Timing: timing})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Group, entries[j].Group
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}

		if a.Name != b.Name {
			return a.Name < b.Name
		}

		return a.StableID < b.StableID
	})

	return entries
}

// materializeAncestors adds every strict prefix of every key in sampled
// that is not itself already present, so the emitted group tree has no
// gaps even when an ancestor span was never recorded on its own (e.g. it
// had zero direct samples, only descendants).
func materializeAncestors(sampled map[string]groupkey.Key) []groupkey.Key {
	seen := make(map[string]bool, len(sampled))
	out := make([]groupkey.Key, 0, len(sampled)*2)

	for _, key := range sampled {
		for depth := 1; depth <= key.Depth(); depth++ {
			prefix := key.Prefix(depth)
			if seen[prefix.Hash()] {
				continue
			}

			seen[prefix.Hash()] = true
			out = append(out, prefix)
		}
	}

	return out
}

func computeStableID(parentID, name, sourceLocation string, fields []Field) string {
	h := sha256.New()
	h.Write([]byte(parentID))
	h.Write([]byte{0})
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(sourceLocation))

	for _, f := range fields {
		h.Write([]byte{0})
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write([]byte(f.Value))
	}

	sum := h.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
