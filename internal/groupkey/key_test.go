package groupkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/latencytrace/internal/callsite"
	"github.com/Sumatoshi-tech/latencytrace/internal/groupkey"
	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
)

func TestKey_HashIsDeterministic(t *testing.T) {
	t.Parallel()

	reg := callsite.NewRegistry()
	outer := reg.Intern(callsite.Identity{Name: "outer", File: "f.go", Line: 1})
	inner := reg.Intern(callsite.Identity{Name: "inner", File: "f.go", Line: 2})

	chain := []*callsite.Info{outer, inner}
	props := []grouper.Props{nil, {{Name: "n", Value: "1"}}}

	a := groupkey.New(chain, props)
	b := groupkey.New(chain, props)

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestKey_DistinctPropsProduceDistinctHashes(t *testing.T) {
	t.Parallel()

	reg := callsite.NewRegistry()
	leaf := reg.Intern(callsite.Identity{Name: "leaf", File: "f.go", Line: 1})

	a := groupkey.New([]*callsite.Info{leaf}, []grouper.Props{{{Name: "n", Value: "1"}}})
	b := groupkey.New([]*callsite.Info{leaf}, []grouper.Props{{{Name: "n", Value: "2"}}})

	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestKey_PrefixMatchesShorterChain(t *testing.T) {
	t.Parallel()

	reg := callsite.NewRegistry()
	outer := reg.Intern(callsite.Identity{Name: "outer", File: "f.go", Line: 1})
	inner := reg.Intern(callsite.Identity{Name: "inner", File: "f.go", Line: 2})

	full := groupkey.New([]*callsite.Info{outer, inner}, []grouper.Props{nil, nil})
	onlyOuter := groupkey.New([]*callsite.Info{outer}, []grouper.Props{nil})

	assert.Equal(t, onlyOuter.Hash(), full.Prefix(1).Hash())
	assert.Equal(t, 1, full.Prefix(1).Depth())
}
