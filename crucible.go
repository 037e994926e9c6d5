package crucible

import (
	"reflect"

	"github.com/xraph/crucible/internal/shared"
)

// Core extension capabilities.
type (
	// Extension customizes assembled container state after all registry
	// mutation has completed.
	Extension = shared.Extension

	// RegistryExtension may additionally mutate pending definitions before
	// any regular component is built.
	RegistryExtension = shared.RegistryExtension

	// PrimaryOrdered marks an extension or interceptor as primary tier.
	PrimaryOrdered = shared.PrimaryOrdered

	// SecondaryOrdered marks an extension or interceptor as secondary tier.
	SecondaryOrdered = shared.SecondaryOrdered

	// Ordered supplies a numeric rank within a tier; lower runs earlier.
	Ordered = shared.Ordered

	// ComparatorProvider optionally supplies a custom sort comparator.
	ComparatorProvider = shared.ComparatorProvider
)

// Construction interception.
type (
	// Interceptor wraps every component's construction.
	Interceptor = shared.Interceptor

	// DefinitionAwareInterceptor additionally observes definition metadata;
	// such interceptors are always repositioned to run last.
	DefinitionAwareInterceptor = shared.DefinitionAwareInterceptor
)

// Registry contracts and definitions.
type (
	Registry        = shared.Registry
	MutableRegistry = shared.MutableRegistry
	Definition      = shared.Definition
	Factory         = shared.Factory
	Role            = shared.Role
	Service         = shared.Service
)

const (
	RoleApplication    = shared.RoleApplication
	RoleInfrastructure = shared.RoleInfrastructure
)

// TypeOf returns the reflect.Type of the interface T, for definition
// metadata and capability probes.
func TypeOf[T any]() reflect.Type {
	return shared.TypeOf[T]()
}
