package registry

import (
	"reflect"

	"github.com/xraph/crucible/internal/shared"
)

// chain is the container's interceptor chain: an ordered sequence with
// identity deduplication. Adding an instance that is already present moves
// it to the tail rather than duplicating it, so repeated installs reposition
// instead of accumulate.
//
// Identity comparison uses interface equality; interceptors are expected to
// be pointer-shaped. Instances of non-comparable dynamic types cannot be
// deduplicated and are always appended.
type chain struct {
	entries []shared.Interceptor
}

// add appends the interceptor, removing any prior occurrence first.
func (c *chain) add(ic shared.Interceptor) {
	if t := reflect.TypeOf(ic); t != nil && t.Comparable() {
		for i, existing := range c.entries {
			if existing == ic {
				c.entries = append(c.entries[:i], c.entries[i+1:]...)

				break
			}
		}
	}
	c.entries = append(c.entries, ic)
}

// count returns the number of installed interceptors.
func (c *chain) count() int {
	return len(c.entries)
}

// snapshot returns a copy of the chain in installation order.
func (c *chain) snapshot() []shared.Interceptor {
	out := make([]shared.Interceptor, len(c.entries))
	copy(out, c.entries)

	return out
}

// definitionAware returns the installed interceptors that carry the
// definition-processing capability, in chain order.
func (c *chain) definitionAware() []shared.DefinitionAwareInterceptor {
	var out []shared.DefinitionAwareInterceptor
	for _, ic := range c.entries {
		if aware, ok := ic.(shared.DefinitionAwareInterceptor); ok {
			out = append(out, aware)
		}
	}

	return out
}
