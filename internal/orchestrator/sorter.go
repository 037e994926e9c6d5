package orchestrator

import (
	"math"
	"sort"

	"github.com/xraph/crucible/internal/shared"
)

// Tier is the priority classification of an extension or interceptor.
type Tier int

const (
	TierPrimary Tier = iota
	TierSecondary
	TierUnordered
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	default:
		return "unordered"
	}
}

// Capability types probed against definition metadata and live instances.
var (
	typeExtension         = shared.TypeOf[shared.Extension]()
	typeRegistryExtension = shared.TypeOf[shared.RegistryExtension]()
	typeInterceptor       = shared.TypeOf[shared.Interceptor]()
	typePrimary           = shared.TypeOf[shared.PrimaryOrdered]()
	typeSecondary         = shared.TypeOf[shared.SecondaryOrdered]()
)

// classify reports the tier of a live instance. Primary wins when a type
// carries both markers.
func classify(v any) Tier {
	switch v.(type) {
	case shared.PrimaryOrdered:
		return TierPrimary
	case shared.SecondaryOrdered:
		return TierSecondary
	default:
		return TierUnordered
	}
}

// classifyName reports the tier of a registered definition from metadata
// alone; the definition is never instantiated for classification.
func classifyName(reg shared.Registry, name string) Tier {
	if reg.TypeMatches(name, typePrimary) {
		return TierPrimary
	}
	if reg.TypeMatches(name, typeSecondary) {
		return TierSecondary
	}

	return TierUnordered
}

// lowestPrecedence sorts entries without an explicit order value after every
// ordered entry in their tier.
const lowestPrecedence = math.MaxInt

func orderOf(v any) int {
	if o, ok := v.(shared.Ordered); ok {
		return o.Order()
	}

	return lowestPrecedence
}

// defaultComparator orders by tier (primary, secondary, unordered), then by
// ascending order value within a tier.
func defaultComparator(a, b any) int {
	if ta, tb := classify(a), classify(b); ta != tb {
		return int(ta) - int(tb)
	}

	oa, ob := orderOf(a), orderOf(b)
	switch {
	case oa < ob:
		return -1
	case oa > ob:
		return 1
	default:
		return 0
	}
}

// sortSlice sorts in place with the given comparator, or the default
// comparator when nil. The sort is stable: ties keep their discovery order,
// which is the only ordering signal the catch-all wave has. No-op for fewer
// than two entries.
func sortSlice[T any](items []T, cmp func(a, b any) int) {
	if len(items) <= 1 {
		return
	}
	if cmp == nil {
		cmp = defaultComparator
	}

	sort.SliceStable(items, func(i, j int) bool {
		return cmp(items[i], items[j]) < 0
	})
}
