package scratch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/latencytrace/internal/scratch"
)

func key(n byte) scratch.Key {
	var sid trace.SpanID
	sid[0] = n

	return scratch.Key{SpanID: sid}
}

func TestRegistry_StartThenFinishReturnsState(t *testing.T) {
	t.Parallel()

	r := scratch.NewRegistry()
	k := key(1)
	start := time.Now()

	r.Start(k, &scratch.State{CreatedAt: start})

	got := r.Get(k)
	require.NotNil(t, got)
	assert.True(t, got.Entered)

	end := start.Add(10 * time.Millisecond)
	st := r.Finish(k, end)
	require.NotNil(t, st)
	assert.Equal(t, end.Sub(start), st.ActiveAccum)

	assert.Nil(t, r.Get(k))
}

func TestRegistry_EnterExitAccumulatesOnlyActiveIntervals(t *testing.T) {
	t.Parallel()

	r := scratch.NewRegistry()
	k := key(2)
	t0 := time.Now()

	r.Start(k, &scratch.State{CreatedAt: t0})
	r.Exit(k, t0.Add(10*time.Millisecond))  // active for [0,10)
	r.Enter(k, t0.Add(20*time.Millisecond)) // suspended for [10,20)
	r.Exit(k, t0.Add(25*time.Millisecond))  // active for [20,25)

	st := r.Finish(k, t0.Add(40*time.Millisecond))
	require.NotNil(t, st)
	assert.Equal(t, 15*time.Millisecond, st.ActiveAccum)
}

func TestRegistry_DoubleExitIsNoop(t *testing.T) {
	t.Parallel()

	r := scratch.NewRegistry()
	k := key(3)
	t0 := time.Now()

	r.Start(k, &scratch.State{CreatedAt: t0})
	r.Exit(k, t0.Add(5*time.Millisecond))
	r.Exit(k, t0.Add(50*time.Millisecond)) // no-op: already exited

	st := r.Finish(k, t0.Add(100*time.Millisecond))
	require.NotNil(t, st)
	assert.Equal(t, 5*time.Millisecond, st.ActiveAccum)
}

func TestRegistry_UnknownKeyOperationsAreHarmless(t *testing.T) {
	t.Parallel()

	r := scratch.NewRegistry()
	k := key(4)

	r.Enter(k, time.Now())
	r.Exit(k, time.Now())

	assert.Nil(t, r.Finish(k, time.Now()))
}
