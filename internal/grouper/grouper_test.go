package grouper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
)

func TestByCallsite_IgnoresAttributes(t *testing.T) {
	t.Parallel()

	props := grouper.ByCallsite([]attribute.KeyValue{attribute.String("foo", "bar")})
	assert.Empty(t, props)
}

func TestByAllFields_SortsByName(t *testing.T) {
	t.Parallel()

	attrs := []attribute.KeyValue{
		attribute.String("zeta", "1"),
		attribute.Int("alpha", 2),
	}

	props := grouper.ByAllFields(attrs)

	assert.Equal(t, grouper.Props{
		{Name: "alpha", Value: "2"},
		{Name: "zeta", Value: "1"},
	}, props)
}

func TestByGivenFields_FiltersToWhitelist(t *testing.T) {
	t.Parallel()

	f := grouper.ByGivenFields("keep")
	attrs := []attribute.KeyValue{
		attribute.String("keep", "yes"),
		attribute.String("drop", "no"),
	}

	props := f(attrs)

	assert.Equal(t, grouper.Props{{Name: "keep", Value: "yes"}}, props)
}
