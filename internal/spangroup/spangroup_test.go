package spangroup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/latencytrace/internal/accum"
	"github.com/Sumatoshi-tech/latencytrace/internal/callsite"
	"github.com/Sumatoshi-tech/latencytrace/internal/groupkey"
	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
	"github.com/Sumatoshi-tech/latencytrace/internal/spangroup"
)

func testConfig() ihist.Config { return ihist.Config{High: 20_000_000_000, SigFigs: 2} }

func TestProcess_MaterializesUnsampledAncestor(t *testing.T) {
	t.Parallel()

	reg := callsite.NewRegistry()
	outer := reg.Intern(callsite.Identity{Name: "outer", File: "f.go", Line: 1})
	inner := reg.Intern(callsite.Identity{Name: "inner", File: "f.go", Line: 2})

	// Only the inner (depth-2) group was ever recorded; outer was never
	// sampled on its own, only as an ancestor.
	leafKey := groupkey.New([]*callsite.Info{outer, inner}, []grouper.Props{nil, nil})

	s := accum.NewSet(testConfig())
	s.Record(leafKey, 100, 100)

	entries := spangroup.Process(s.Take(), testConfig())

	require.Len(t, entries, 2)

	byName := map[string]spangroup.Entry{}
	for _, e := range entries {
		byName[e.Group.Name] = e
	}

	outerEntry, ok := byName["outer"]
	require.True(t, ok)
	assert.Equal(t, "", outerEntry.Group.ParentID)
	assert.Equal(t, uint64(0), outerEntry.Timing.Total.Count())

	innerEntry, ok := byName["inner"]
	require.True(t, ok)
	assert.Equal(t, outerEntry.Group.StableID, innerEntry.Group.ParentID)
	assert.Equal(t, uint64(1), innerEntry.Timing.Total.Count())
}

func TestProcess_StableIDIsDeterministic(t *testing.T) {
	t.Parallel()

	reg := callsite.NewRegistry()
	leaf := reg.Intern(callsite.Identity{Name: "leaf", File: "f.go", Line: 1})
	key := groupkey.New([]*callsite.Info{leaf}, []grouper.Props{nil})

	s1 := accum.NewSet(testConfig())
	s1.Record(key, 1, 1)

	s2 := accum.NewSet(testConfig())
	s2.Record(key, 1, 1)

	e1 := spangroup.Process(s1.Take(), testConfig())
	e2 := spangroup.Process(s2.Take(), testConfig())

	require.Len(t, e1, 1)
	require.Len(t, e2, 1)
	assert.Equal(t, e1[0].Group.StableID, e2[0].Group.StableID)
}

func TestProcess_OrdersByDepthThenName(t *testing.T) {
	t.Parallel()

	reg := callsite.NewRegistry()
	a := reg.Intern(callsite.Identity{Name: "a", File: "f.go", Line: 1})
	b := reg.Intern(callsite.Identity{Name: "b", File: "f.go", Line: 2})
	c := reg.Intern(callsite.Identity{Name: "c", File: "f.go", Line: 3})

	s := accum.NewSet(testConfig())
	s.Record(groupkey.New([]*callsite.Info{b}, []grouper.Props{nil}), 1, 1)
	s.Record(groupkey.New([]*callsite.Info{a, c}, []grouper.Props{nil, nil}), 1, 1)

	entries := spangroup.Process(s.Take(), testConfig())
	require.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Group.Depth, entries[i].Group.Depth)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Group.Name)
	}

	assert.Equal(t, []string{"a", "b", "c"}, names)
}
