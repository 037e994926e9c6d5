package shared

// Interceptor wraps the construction of every component resolved through
// the registry. Both hooks may return a replacement for the instance they
// receive (a proxy, a decorated wrapper); returning the instance unchanged
// is the common case.
//
// Interceptors are installed into the container's chain during bootstrap
// and persist for the container's lifetime.
type Interceptor interface {
	// BeforeInit runs after the factory produced the instance, before any
	// initialization applied by later interceptors.
	BeforeInit(instance any, name string) (any, error)

	// AfterInit runs once the instance is fully initialized.
	AfterInit(instance any, name string) (any, error)
}

// DefinitionAwareInterceptor is an Interceptor that additionally observes
// definition metadata before a definition's first instantiation. The
// installer treats these as internal: after the regular tiered install they
// are moved to the tail of the chain in sorted order, so they always run
// last, after any proxy substitution performed by regular interceptors.
type DefinitionAwareInterceptor interface {
	Interceptor

	// ProcessDefinition inspects or annotates the definition about to be
	// instantiated. Called at most once per definition.
	ProcessDefinition(def *Definition, name string)
}
