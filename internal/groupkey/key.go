// Package groupkey builds the stable, hashable identity of a span group
// from its call-site ancestry and capture props.
package groupkey

import (
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/latencytrace/internal/callsite"
	"github.com/Sumatoshi-tech/latencytrace/internal/grouper"
)

// Key is the private identity of a span group: the root-first chain of
// call sites from the outermost measured ancestor to the span itself,
// paired with the Props captured at each level.
type Key struct {
	Chain []*callsite.Info
	Props []grouper.Props
	digest string
}

// New builds a Key from parallel, equal-length, root-first chains.
func New(chain []*callsite.Info, props []grouper.Props) Key {
	k := Key{Chain: chain, Props: props}
	k.digest = k.computeDigest()

	return k
}

// Hash returns a deterministic string digest suitable as a map key.
func (k Key) Hash() string { return k.digest }

// Depth is the number of ancestors in the chain, including the span
// itself.
func (k Key) Depth() int { return len(k.Chain) }

// Prefix returns the Key for the first n levels of the chain.
func (k Key) Prefix(n int) Key {
	return New(k.Chain[:n], k.Props[:n])
}

func (k Key) computeDigest() string {
	var b strings.Builder

	for i, info := range k.Chain {
		if i > 0 {
			b.WriteByte('/')
		}

		b.WriteString(info.Identity.Name)
		b.WriteByte('@')
		b.WriteString(info.SourceLocation())

		for _, f := range k.Props[i] {
			b.WriteByte('|')
			b.WriteString(f.Name)
			b.WriteByte('=')
			b.WriteString(strconv.Quote(f.Value))
		}
	}

	return b.String()
}
