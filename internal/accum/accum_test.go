package accum_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/latencytrace/internal/accum"
	"github.com/Sumatoshi-tech/latencytrace/internal/callsite"
	"github.com/Sumatoshi-tech/latencytrace/internal/groupkey"
	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
	"github.com/Sumatoshi-tech/latencytrace/internal/ihist"
)

func testConfig() ihist.Config { return ihist.Config{High: 20_000_000_000, SigFigs: 2} }

func testKey(name string) groupkey.Key {
	reg := callsite.NewRegistry()
	info := reg.Intern(callsite.Identity{Name: name, File: "f.go", Line: 1})

	return groupkey.New([]*callsite.Info{info}, []grouper.Props{nil})
}

func TestSet_ProbeIsNonDestructive(t *testing.T) {
	t.Parallel()

	s := accum.NewSet(testConfig())
	k := testKey("span_a")

	s.Record(k, 100, 50)

	snap1 := s.Probe()
	require.Len(t, snap1.Timings, 1)
	assert.Equal(t, uint64(1), snap1.Timings[k.Hash()].Total.Count())

	snap2 := s.Probe()
	assert.Equal(t, uint64(1), snap2.Timings[k.Hash()].Total.Count())
}

func TestSet_TakeIsDestructive(t *testing.T) {
	t.Parallel()

	s := accum.NewSet(testConfig())
	k := testKey("span_b")

	s.Record(k, 100, 50)

	snap := s.Take()
	require.Len(t, snap.Timings, 1)

	after := s.Probe()
	assert.Empty(t, after.Timings)
}

func TestSet_ConcurrentRecordIsRaceFree(t *testing.T) {
	t.Parallel()

	s := accum.NewSet(testConfig())
	k := testKey("span_c")

	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 20; j++ {
				s.Record(k, 10, 5)
			}
		}()
	}

	wg.Wait()

	snap := s.Take()
	require.Len(t, snap.Timings, 1)
	assert.Equal(t, uint64(1000), snap.Timings[k.Hash()].Total.Count())
}
