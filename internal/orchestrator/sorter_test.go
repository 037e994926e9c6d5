package orchestrator

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/crucible/internal/registry"
	"github.com/xraph/crucible/internal/shared"
)

// Marker-carrying fixtures for classification and sorting
type plainThing struct{ id string }

func (p *plainThing) CustomizeFactory(shared.Registry) error { return nil }

type primaryThing struct{ plainThing }

func (p *primaryThing) PrimaryOrdered() {}

type secondaryThing struct{ plainThing }

func (s *secondaryThing) SecondaryOrdered() {}

type bothMarkersThing struct{ plainThing }

func (b *bothMarkersThing) PrimaryOrdered()   {}
func (b *bothMarkersThing) SecondaryOrdered() {}

type orderedThing struct {
	plainThing
	order int
}

func (o *orderedThing) Order() int { return o.order }

type orderedPrimaryThing struct{ orderedThing }

func (o *orderedPrimaryThing) PrimaryOrdered() {}

func TestClassify(t *testing.T) {
	assert.Equal(t, TierPrimary, classify(&primaryThing{}))
	assert.Equal(t, TierSecondary, classify(&secondaryThing{}))
	assert.Equal(t, TierUnordered, classify(&plainThing{}))

	// Primary wins when a type carries both markers.
	assert.Equal(t, TierPrimary, classify(&bothMarkersThing{}))
}

func TestClassifyName_MetadataOnly(t *testing.T) {
	reg := registry.New(nil)

	// A factory that panics proves classification never instantiates.
	register := func(name string, prototype any) {
		require.NoError(t, reg.Register(&shared.Definition{
			Name: name,
			Type: reflect.TypeOf(prototype),
			Factory: func(shared.Registry) (any, error) {
				panic("classification must not instantiate")
			},
		}))
	}

	register("p", &primaryThing{})
	register("s", &secondaryThing{})
	register("u", &plainThing{})

	assert.Equal(t, TierPrimary, classifyName(reg, "p"))
	assert.Equal(t, TierSecondary, classifyName(reg, "s"))
	assert.Equal(t, TierUnordered, classifyName(reg, "u"))
}

func TestDefaultComparator_TierPrecedence(t *testing.T) {
	p := &primaryThing{}
	s := &secondaryThing{}
	u := &plainThing{}

	assert.Negative(t, defaultComparator(p, s))
	assert.Negative(t, defaultComparator(s, u))
	assert.Negative(t, defaultComparator(p, u))
	assert.Positive(t, defaultComparator(u, p))
	assert.Zero(t, defaultComparator(u, &plainThing{}))
}

func TestDefaultComparator_OrderWithinTier(t *testing.T) {
	early := &orderedThing{order: 1}
	late := &orderedThing{order: 10}
	unranked := &plainThing{}

	assert.Negative(t, defaultComparator(early, late))
	// Entries without an order value sort after every ordered entry.
	assert.Negative(t, defaultComparator(late, unranked))
}

func TestSortSlice_StableOnTies(t *testing.T) {
	a := &orderedThing{plainThing: plainThing{id: "a"}, order: 5}
	b := &orderedThing{plainThing: plainThing{id: "b"}, order: 5}
	c := &orderedThing{plainThing: plainThing{id: "c"}, order: 1}

	items := []*orderedThing{a, b, c}
	sortSlice(items, nil)

	assert.Equal(t, []*orderedThing{c, a, b}, items)
}

func TestSortSlice_TierThenOrder(t *testing.T) {
	up := &orderedPrimaryThing{orderedThing{plainThing: plainThing{id: "p2"}, order: 2}}
	up1 := &orderedPrimaryThing{orderedThing{plainThing: plainThing{id: "p1"}, order: 1}}
	sec := &secondaryThing{plainThing{id: "s"}}
	plain := &plainThing{id: "u"}

	items := []any{plain, sec, up, up1}
	sortSlice(items, nil)

	assert.Equal(t, []any{up1, up, sec, plain}, items)
}

func TestSortSlice_CustomComparator(t *testing.T) {
	a := &orderedThing{plainThing: plainThing{id: "a"}, order: 1}
	b := &orderedThing{plainThing: plainThing{id: "b"}, order: 2}

	// Reverse of the default order.
	items := []*orderedThing{a, b}
	sortSlice(items, func(x, y any) int {
		return orderOf(y) - orderOf(x)
	})

	assert.Equal(t, []*orderedThing{b, a}, items)
}

func TestSortSlice_NoopForShortSlices(t *testing.T) {
	var empty []any
	sortSlice(empty, nil)
	assert.Empty(t, empty)

	single := []any{&plainThing{}}
	sortSlice(single, nil)
	assert.Len(t, single, 1)
}
