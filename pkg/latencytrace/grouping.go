package latencytrace

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
)

// Props is an ordered set of (name, value) pairs contributing to a span
// group's identity, alongside its call site.
type Props = grouper.Props

// GrouperFunc derives Props from a span's start-time attributes. It is
// invoked exactly once per span, at creation.
type GrouperFunc = grouper.Func

// ByCallsite groups spans purely by call site: no attribute contributes
// to the group identity. This is the default.
var ByCallsite GrouperFunc = grouper.ByCallsite

// ByAllFields groups spans by call site plus every attribute, sorted by
// key for determinism.
func ByAllFields(attrs []attribute.KeyValue) Props { return grouper.ByAllFields(attrs) }

// ByGivenFields groups spans by call site plus only the named attributes,
// in sorted order. Attributes not present on a given span are silently
// omitted.
func ByGivenFields(names ...string) GrouperFunc { return grouper.ByGivenFields(names...) }
