package shared

import "reflect"

// Role classifies a definition's part in the application.
type Role int

const (
	// RoleApplication marks a regular user-facing component.
	RoleApplication Role = iota

	// RoleInfrastructure marks a component that is part of the container's
	// own machinery. Infrastructure components are exempt from startup
	// diagnostics such as the interceptor coverage check.
	RoleInfrastructure
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleInfrastructure:
		return "infrastructure"
	default:
		return "application"
	}
}

// Factory produces a component instance. Factories may resolve other
// components through the registry they receive; resolution is reentrant.
type Factory func(reg Registry) (any, error)

// Definition describes a registered, not-yet-instantiated component.
//
// Type is the concrete type the factory produces and is the basis for every
// metadata-only capability probe: tiers, extension and interceptor
// capabilities are all decided from Type before the factory ever runs.
type Definition struct {
	Name    string
	Type    reflect.Type
	Factory Factory
	Role    Role
}

// Registry is the orchestrator's view of the container: metadata queries,
// instantiation, and the interceptor chain. Implementations that also
// support definition mutation additionally implement MutableRegistry.
type Registry interface {
	// NamesByType returns the names of all definitions whose concrete type
	// implements the given interface type, in registration order. Metadata
	// only; nothing is instantiated.
	NamesByType(iface reflect.Type) []string

	// TypeMatches reports whether the named definition's concrete type
	// implements the given interface type. Metadata only.
	TypeMatches(name string, iface reflect.Type) bool

	// Resolve returns the named component, instantiating it on first use.
	// Repeated calls return the same instance.
	Resolve(name string) (any, error)

	// IsInfrastructure reports whether the named definition carries
	// RoleInfrastructure. Unknown names report false.
	IsInfrastructure(name string) bool

	// InvalidateMetadata drops any cached derived metadata (capability
	// indexes and the like). Called after extensions may have rewritten
	// values the cache captured.
	InvalidateMetadata()

	// AddInterceptor appends an interceptor to the chain. Re-adding an
	// instance already present moves it to the tail instead of duplicating
	// it. Identity is interface equality, so interceptors should be
	// pointer-shaped; instances of non-comparable dynamic types are always
	// appended.
	AddInterceptor(ic Interceptor)

	// InterceptorCount returns the number of interceptors currently
	// installed in the chain.
	InterceptorCount() int
}

// MutableRegistry is a Registry whose pending definitions can still be
// changed. Registry extensions receive this view during the mutation phase.
type MutableRegistry interface {
	Registry

	// Register adds a definition. Registering a name that already exists is
	// an error; use Replace to overwrite.
	Register(def *Definition) error

	// Replace overwrites the named definition, or adds it when absent.
	// Replacing an already-instantiated definition is an error.
	Replace(def *Definition) error

	// Remove deletes the named definition. Removing an unknown name is an
	// error.
	Remove(name string) error

	// Definition returns the named definition, if registered.
	Definition(name string) (*Definition, bool)
}
