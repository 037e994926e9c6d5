package orchestrator

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/xraph/crucible/internal/errors"
	"github.com/xraph/crucible/internal/shared"
	"github.com/xraph/crucible/pkg/logger"
)

// Orchestrator runs the container's extension protocol: it discovers,
// orders, instantiates, and invokes registry extensions and factory
// extensions during startup, then installs construction interceptors as a
// separate later step.
//
// A single Orchestrator run is synchronous and run-to-completion. Any
// failure while instantiating or invoking an extension propagates to the
// caller and aborts startup; nothing is retried or recovered locally.
type Orchestrator struct {
	reg       shared.Registry
	log       logger.Logger
	maxRounds int
	enroll    func(shared.Service)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMaxMutationRounds bounds the catch-all mutation loop. Zero (the
// default) preserves the unbounded behavior: the loop runs until a full
// scan discovers nothing new, and an extension that keeps registering fresh
// extensions forever will loop forever.
func WithMaxMutationRounds(rounds int) Option {
	return func(o *Orchestrator) {
		o.maxRounds = rounds
	}
}

// WithServiceEnroller sets the callback the final fixed interceptor uses to
// enroll constructed Service components for lifecycle management.
func WithServiceEnroller(enroll func(shared.Service)) Option {
	return func(o *Orchestrator) {
		o.enroll = enroll
	}
}

// New creates an Orchestrator over the given registry.
func New(reg shared.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reg: reg,
		log: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ApplyExtensions runs the registry-mutation phase over the supplied and
// discovered extensions, then the factory-customization phase. Supplied
// registry extensions run immediately; supplied plain extensions are
// deferred until every mutation across every extension has completed.
//
// Registries that do not support definition mutation skip the mutation
// phase: every supplied extension's factory hook runs in supplied order,
// and the discovery-based factory phase still runs afterwards.
func (o *Orchestrator) ApplyExtensions(extensions []shared.Extension) error {
	processed := mapset.NewThreadUnsafeSet[string]()

	if mutable, ok := o.reg.(shared.MutableRegistry); ok {
		if err := o.applyRegistryExtensions(mutable, extensions, processed); err != nil {
			return err
		}
	} else {
		o.log.Debug("registry does not support mutation; invoking supplied extensions directly",
			logger.Int("count", len(extensions)))

		if err := o.invokeCustomizers(extensions); err != nil {
			return err
		}
	}

	return o.applyFactoryExtensions(processed)
}

// applyRegistryExtensions drives the mutation waves: supplied seeds first,
// then primary, secondary, and the iterative catch-all over
// registry-discovered extensions, re-querying after every round because any
// invocation may register more. It finishes with the factory-customization
// sweep over everything accumulated, then the deferred plain seeds.
func (o *Orchestrator) applyRegistryExtensions(
	mutable shared.MutableRegistry,
	extensions []shared.Extension,
	processed mapset.Set[string],
) error {
	var regular []shared.Extension
	var accumulated []shared.RegistryExtension

	for _, ext := range extensions {
		if rext, ok := ext.(shared.RegistryExtension); ok {
			if err := rext.MutateRegistry(mutable); err != nil {
				return errors.NewExtensionError(componentName(rext), "mutate-registry", err)
			}
			accumulated = append(accumulated, rext)
		} else {
			regular = append(regular, ext)
		}
	}

	cmp := o.comparator()

	// Primary wave.
	var batch []shared.RegistryExtension
	for _, name := range o.reg.NamesByType(typeRegistryExtension) {
		if o.reg.TypeMatches(name, typePrimary) {
			ext, err := resolveAs[shared.RegistryExtension](o.reg, name)
			if err != nil {
				return err
			}
			batch = append(batch, ext)
			processed.Add(name)
		}
	}
	sortSlice(batch, cmp)
	accumulated = append(accumulated, batch...)
	if err := o.invokeMutators(mutable, batch, TierPrimary); err != nil {
		return err
	}

	// Secondary wave. Re-query: the primary wave may have registered new
	// secondary-tier extensions.
	batch = batch[:0]
	for _, name := range o.reg.NamesByType(typeRegistryExtension) {
		if !processed.Contains(name) && o.reg.TypeMatches(name, typeSecondary) {
			ext, err := resolveAs[shared.RegistryExtension](o.reg, name)
			if err != nil {
				return err
			}
			batch = append(batch, ext)
			processed.Add(name)
		}
	}
	sortSlice(batch, cmp)
	accumulated = append(accumulated, batch...)
	if err := o.invokeMutators(mutable, batch, TierSecondary); err != nil {
		return err
	}

	// Catch-all: keep scanning until a full pass over the registry finds
	// nothing unprocessed. Termination is the extension authors' contract;
	// maxRounds optionally bounds it.
	rounds := 0
	for {
		batch = batch[:0]
		var batchNames []string
		for _, name := range o.reg.NamesByType(typeRegistryExtension) {
			if processed.Contains(name) {
				continue
			}
			ext, err := resolveAs[shared.RegistryExtension](o.reg, name)
			if err != nil {
				return err
			}
			batch = append(batch, ext)
			batchNames = append(batchNames, name)
			processed.Add(name)
		}
		if len(batch) == 0 {
			break
		}

		rounds++
		if o.maxRounds > 0 && rounds > o.maxRounds {
			return errors.ErrMutationRoundsExceeded(o.maxRounds, batchNames)
		}

		sortSlice(batch, cmp)
		accumulated = append(accumulated, batch...)
		if err := o.invokeMutators(mutable, batch, TierUnordered); err != nil {
			return err
		}
	}

	// Every registry mutation across every extension has now completed;
	// only then do factory hooks run, in accumulation order.
	for _, ext := range accumulated {
		if err := ext.CustomizeFactory(o.reg); err != nil {
			return errors.NewExtensionError(componentName(ext), "customize-factory", err)
		}
	}

	// Deferred plain seeds, in originally supplied order.
	return o.invokeCustomizers(regular)
}

// applyFactoryExtensions runs the factory-customization phase over
// registry-discovered extensions not already handled by the mutation phase:
// primary sorted, secondary sorted, unordered in discovery order. Derived
// registry metadata is invalidated afterwards, since extensions may have
// rewritten values the caches captured.
func (o *Orchestrator) applyFactoryExtensions(processed mapset.Set[string]) error {
	cmp := o.comparator()

	var primary []shared.Extension
	var secondaryNames, unorderedNames []string
	for _, name := range o.reg.NamesByType(typeExtension) {
		switch {
		case processed.Contains(name):
			// Already instantiated and invoked during the mutation phase.
		case o.reg.TypeMatches(name, typePrimary):
			ext, err := resolveAs[shared.Extension](o.reg, name)
			if err != nil {
				return err
			}
			primary = append(primary, ext)
		case o.reg.TypeMatches(name, typeSecondary):
			secondaryNames = append(secondaryNames, name)
		default:
			unorderedNames = append(unorderedNames, name)
		}
	}

	sortSlice(primary, cmp)
	if err := o.invokeCustomizers(primary); err != nil {
		return err
	}

	secondary := make([]shared.Extension, 0, len(secondaryNames))
	for _, name := range secondaryNames {
		ext, err := resolveAs[shared.Extension](o.reg, name)
		if err != nil {
			return err
		}
		secondary = append(secondary, ext)
	}
	sortSlice(secondary, cmp)
	if err := o.invokeCustomizers(secondary); err != nil {
		return err
	}

	unordered := make([]shared.Extension, 0, len(unorderedNames))
	for _, name := range unorderedNames {
		ext, err := resolveAs[shared.Extension](o.reg, name)
		if err != nil {
			return err
		}
		unordered = append(unordered, ext)
	}
	// No ranking signal exists for unordered extensions; discovery order is
	// the order.
	if err := o.invokeCustomizers(unordered); err != nil {
		return err
	}

	o.reg.InvalidateMetadata()

	o.log.Debug("factory customization complete",
		logger.Int("primary", len(primary)),
		logger.Int("secondary", len(secondary)),
		logger.Int("unordered", len(unordered)),
	)

	return nil
}

func (o *Orchestrator) invokeMutators(
	mutable shared.MutableRegistry,
	batch []shared.RegistryExtension,
	tier Tier,
) error {
	for _, ext := range batch {
		if err := ext.MutateRegistry(mutable); err != nil {
			return errors.NewExtensionError(componentName(ext), "mutate-registry", err)
		}
	}

	if len(batch) > 0 {
		o.log.Debug("registry mutation wave complete",
			logger.String("wave", tier.String()),
			logger.Int("count", len(batch)),
		)
	}

	return nil
}

func (o *Orchestrator) invokeCustomizers(exts []shared.Extension) error {
	for _, ext := range exts {
		if err := ext.CustomizeFactory(o.reg); err != nil {
			return errors.NewExtensionError(componentName(ext), "customize-factory", err)
		}
	}

	return nil
}

// comparator returns the registry-supplied comparator when one is
// configured, falling back to the default tier-then-order comparator.
func (o *Orchestrator) comparator() func(a, b any) int {
	if provider, ok := o.reg.(shared.ComparatorProvider); ok {
		if cmp := provider.OrderComparator(); cmp != nil {
			return cmp
		}
	}

	return defaultComparator
}

// resolveAs resolves a definition and asserts the capability its metadata
// advertised.
func resolveAs[T any](reg shared.Registry, name string) (T, error) {
	var zero T

	instance, err := reg.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errors.ErrTypeMismatch(name, shared.TypeOf[T](), instance)
	}

	return typed, nil
}

// componentName names an extension or interceptor for errors and logs.
func componentName(v any) string {
	if named, ok := v.(interface{ Name() string }); ok {
		return named.Name()
	}

	return fmt.Sprintf("%T", v)
}
