package shared

import "reflect"

// Extension customizes the fully-assembled container state during startup,
// after every definition mutation has completed. It is the base capability
// every extension carries.
//
// Extensions are registered as ordinary definitions and instantiated lazily
// by the orchestrator, or handed to the container directly at bootstrap.
type Extension interface {
	// CustomizeFactory adjusts the assembled registry state. It runs exactly
	// once per orchestration run, strictly after all registry mutation.
	CustomizeFactory(reg Registry) error
}

// RegistryExtension is an Extension that may also mutate the pending
// definition registry before any regular component is built: adding,
// removing, or replacing definitions, including definitions of further
// extensions and interceptors.
//
// Every RegistryExtension is an Extension; its CustomizeFactory hook runs
// after MutateRegistry has run for all registry extensions, discovered or
// direct.
type RegistryExtension interface {
	Extension

	// MutateRegistry alters the pending definition registry. Extensions
	// registered here are picked up by the orchestrator in later waves of
	// the same run.
	MutateRegistry(reg MutableRegistry) error
}

// PrimaryOrdered marks an extension or interceptor as belonging to the
// primary priority tier. Primary entries are instantiated and invoked
// before secondary and unordered ones.
//
// The marker method is never called; its presence on the concrete type is
// what the classifier probes, so tier membership is answerable from
// definition metadata without instantiating anything.
type PrimaryOrdered interface {
	PrimaryOrdered()
}

// SecondaryOrdered marks an extension or interceptor as belonging to the
// secondary priority tier. Mutually exclusive with PrimaryOrdered; a type
// carrying both is treated as primary.
type SecondaryOrdered interface {
	SecondaryOrdered()
}

// Ordered supplies a numeric rank used to sort entries within the same
// tier. Lower values run earlier. Entries without an Order are sorted after
// every ordered entry in their tier, preserving discovery order among
// themselves.
type Ordered interface {
	Order() int
}

// ComparatorProvider is an optional registry capability supplying a custom
// comparator for extension and interceptor sorting. When the registry does
// not implement it, or returns nil, the default tier-then-order comparator
// applies.
type ComparatorProvider interface {
	// OrderComparator returns a three-way comparator: negative when a sorts
	// before b, positive when after, zero when tied.
	OrderComparator() func(a, b any) int
}

// TypeOf returns the reflect.Type of the interface T, for capability probes
// against definition metadata.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
