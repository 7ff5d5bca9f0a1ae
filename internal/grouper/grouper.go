// Package grouper implements the span-grouper strategies that decide
// which of a span's attributes contribute to its group identity.
package grouper

import (
	"sort"

	"go.opentelemetry.io/otel/attribute"
)

// Field is one (name, value) pair captured from a span's start
// attributes.
type Field struct {
	Name  string
	Value string
}

// Props is an ordered set of Fields contributing to a span group's
// identity, alongside its call site.
type Props []Field

// Func derives Props from a span's start-time attributes. It is invoked
// exactly once per span, at creation.
type Func func(attrs []attribute.KeyValue) Props

// ByCallsite groups spans purely by call site: no attribute contributes
// to the group identity.
func ByCallsite(_ []attribute.KeyValue) Props { return nil }

// ByAllFields groups spans by call site plus every attribute, sorted by
// key for determinism.
func ByAllFields(attrs []attribute.KeyValue) Props {
	props := make(Props, 0, len(attrs))
	for _, kv := range attrs {
		props = append(props, Field{Name: string(kv.Key), Value: kv.Value.Emit()})
	}

	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })

	return props
}

// ByGivenFields groups spans by call site plus only the named
// attributes, in sorted order. Attributes not present on a given span are
// silently omitted.
func ByGivenFields(names ...string) Func {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	return func(attrs []attribute.KeyValue) Props {
		props := make(Props, 0, len(names))

		for _, kv := range attrs {
			if wanted[string(kv.Key)] {
				props = append(props, Field{Name: string(kv.Key), Value: kv.Value.Emit()})
			}
		}

		sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })

		return props
	}
}
