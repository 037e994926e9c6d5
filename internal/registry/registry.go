package registry

import (
	"reflect"
	"sync"

	"github.com/xraph/crucible/internal/errors"
	"github.com/xraph/crucible/internal/shared"
	"github.com/xraph/crucible/pkg/logger"
)

// registration holds a definition together with its singleton instance.
type registration struct {
	def      *shared.Definition
	instance any
	resolved bool
	mu       sync.Mutex
}

// InMemory is the standard definition registry: definition storage with
// metadata-only capability probes, idempotent singleton resolution through
// the interceptor chain, and a derived capability index that is rebuilt
// lazily after invalidation.
//
// It implements shared.MutableRegistry. The container is the only writer
// during orchestration; the locking mirrors the rest of the codebase and
// keeps reads cheap once startup has completed.
type InMemory struct {
	defs      map[string]*registration
	order     []string
	typeIndex map[reflect.Type][]string
	resolving []string
	chain     chain
	cmp       func(a, b any) int
	logger    logger.Logger
	mu        sync.RWMutex
}

// New creates an empty registry.
func New(log logger.Logger) *InMemory {
	if log == nil {
		log = logger.NewNoopLogger()
	}

	return &InMemory{
		defs:      make(map[string]*registration),
		typeIndex: make(map[reflect.Type][]string),
		logger:    log,
	}
}

// Register adds a definition under its name.
func (r *InMemory) Register(def *shared.Definition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return errors.ErrDefinitionExists(def.Name)
	}

	r.defs[def.Name] = &registration{def: def}
	r.order = append(r.order, def.Name)
	r.invalidateLocked()

	r.logger.Debug("definition registered",
		logger.String("name", def.Name),
		logger.String("type", def.Type.String()),
		logger.String("role", def.Role.String()),
	)

	return nil
}

// Replace overwrites the named definition in place, or registers it when
// absent. A definition that already produced its instance cannot be
// replaced.
func (r *InMemory) Replace(def *shared.Definition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.defs[def.Name]
	if !ok {
		r.defs[def.Name] = &registration{def: def}
		r.order = append(r.order, def.Name)
		r.invalidateLocked()

		return nil
	}

	existing.mu.Lock()
	defer existing.mu.Unlock()

	if existing.resolved {
		return errors.NewDefinitionError(def.Name, "replace", errors.ErrAlreadyInstantiated)
	}

	existing.def = def
	r.invalidateLocked()

	r.logger.Debug("definition replaced", logger.String("name", def.Name))

	return nil
}

// Remove deletes the named definition.
func (r *InMemory) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[name]; !ok {
		return errors.ErrDefinitionNotFound(name)
	}

	delete(r.defs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}
	r.invalidateLocked()

	r.logger.Debug("definition removed", logger.String("name", name))

	return nil
}

// Definition returns the named definition, if registered.
func (r *InMemory) Definition(name string) (*shared.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.defs[name]
	if !ok {
		return nil, false
	}

	return reg.def, true
}

// Names returns all registered names in registration order.
func (r *InMemory) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// NamesByType returns the names of definitions whose concrete type
// implements the given interface type, in registration order. The result is
// served from the capability index when it is still valid.
func (r *InMemory) NamesByType(iface reflect.Type) []string {
	r.mu.RLock()
	if cached, ok := r.typeIndex[iface]; ok {
		out := make([]string, len(cached))
		copy(out, cached)
		r.mu.RUnlock()

		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.typeIndex[iface]; ok {
		out := make([]string, len(cached))
		copy(out, cached)

		return out
	}

	names := make([]string, 0)
	for _, name := range r.order {
		if implementsType(r.defs[name].def.Type, iface) {
			names = append(names, name)
		}
	}
	r.typeIndex[iface] = names

	out := make([]string, len(names))
	copy(out, names)

	return out
}

// TypeMatches reports whether the named definition's concrete type
// implements the given interface type. Metadata only; the definition is not
// instantiated.
func (r *InMemory) TypeMatches(name string, iface reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.defs[name]
	if !ok {
		return false
	}

	return implementsType(reg.def.Type, iface)
}

// Resolve returns the named component, instantiating it on first use.
// Construction flows through the interceptor chain: definition-aware
// interceptors observe the definition first, then every installed
// interceptor's BeforeInit and AfterInit runs in chain order, each free to
// substitute the instance. Repeated calls return the same instance.
//
// A factory that resolves a name already being constructed, directly or
// through intermediaries, fails with a cycle error instead of deadlocking on
// the registration lock.
func (r *InMemory) Resolve(name string) (any, error) {
	r.mu.Lock()
	reg, ok := r.defs[name]
	if !ok {
		r.mu.Unlock()

		return nil, errors.ErrDefinitionNotFound(name)
	}
	for _, pending := range r.resolving {
		if pending == name {
			cycle := append(append([]string(nil), r.resolving...), name)
			r.mu.Unlock()

			return nil, errors.ErrDependencyCycle(name, cycle)
		}
	}
	r.resolving = append(r.resolving, name)
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		for i := len(r.resolving) - 1; i >= 0; i-- {
			if r.resolving[i] == name {
				r.resolving = append(r.resolving[:i], r.resolving[i+1:]...)

				break
			}
		}
		r.mu.Unlock()
	}()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.resolved {
		return reg.instance, nil
	}

	def := reg.def

	for _, aware := range r.interceptorsSnapshot().definitionAware {
		aware.ProcessDefinition(def, name)
	}

	// The factory runs without the registry lock held; it may re-enter the
	// registry to resolve dependencies or register further definitions.
	instance, err := def.Factory(r)
	if err != nil {
		return nil, errors.NewDefinitionError(name, "resolve", err)
	}

	instance, err = r.applyInterceptors(instance, name)
	if err != nil {
		return nil, err
	}

	reg.instance = instance
	reg.resolved = true

	r.logger.Debug("definition resolved",
		logger.String("name", name),
		logger.String("type", def.Type.String()),
	)

	return instance, nil
}

// applyInterceptors runs the chain's BeforeInit then AfterInit hooks over
// the freshly constructed instance. A hook returning a non-nil value
// replaces the instance for every subsequent hook; returning nil keeps the
// current one.
func (r *InMemory) applyInterceptors(instance any, name string) (any, error) {
	entries := r.interceptorsSnapshot().entries

	for _, ic := range entries {
		replaced, err := ic.BeforeInit(instance, name)
		if err != nil {
			return nil, err
		}
		if replaced != nil {
			instance = replaced
		}
	}

	for _, ic := range entries {
		replaced, err := ic.AfterInit(instance, name)
		if err != nil {
			return nil, err
		}
		if replaced != nil {
			instance = replaced
		}
	}

	return instance, nil
}

// IsInfrastructure reports whether the named definition carries the
// infrastructure role. Unknown names report false.
func (r *InMemory) IsInfrastructure(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.defs[name]
	if !ok {
		return false
	}

	return reg.def.Role == shared.RoleInfrastructure
}

// InvalidateMetadata drops the derived capability index. Extensions may have
// rewritten definitions the index captured; it is rebuilt lazily on the next
// query.
func (r *InMemory) InvalidateMetadata() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invalidateLocked()
}

// AddInterceptor installs an interceptor with move-to-end semantics.
func (r *InMemory) AddInterceptor(ic shared.Interceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chain.add(ic)
}

// InterceptorCount returns the number of installed interceptors.
func (r *InMemory) InterceptorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.chain.count()
}

// Interceptors returns the installed interceptors in chain order.
func (r *InMemory) Interceptors() []shared.Interceptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.chain.snapshot()
}

// SetOrderComparator supplies a custom comparator consumed by the
// orchestrator when sorting extensions and interceptors.
func (r *InMemory) SetOrderComparator(cmp func(a, b any) int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cmp = cmp
}

// OrderComparator returns the configured comparator, or nil when the
// default tier-then-order comparator should apply.
func (r *InMemory) OrderComparator() func(a, b any) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cmp
}

type chainSnapshot struct {
	entries         []shared.Interceptor
	definitionAware []shared.DefinitionAwareInterceptor
}

func (r *InMemory) interceptorsSnapshot() chainSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return chainSnapshot{
		entries:         r.chain.snapshot(),
		definitionAware: r.chain.definitionAware(),
	}
}

func (r *InMemory) invalidateLocked() {
	if len(r.typeIndex) == 0 {
		return
	}
	r.typeIndex = make(map[reflect.Type][]string)
}

// implementsType reports whether the concrete type implements the interface
// type. Probing an interface-typed definition checks assignability instead.
func implementsType(concrete, iface reflect.Type) bool {
	if concrete == nil || iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	if concrete.Kind() == reflect.Interface {
		return concrete.Implements(iface) || concrete == iface
	}

	return concrete.Implements(iface)
}

func validateDefinition(def *shared.Definition) error {
	if def == nil {
		return errors.ErrNilDefinition
	}
	if def.Name == "" {
		return errors.ErrEmptyName
	}
	if def.Type == nil {
		return errors.ErrNilType
	}
	if def.Factory == nil {
		return errors.NewDefinitionError(def.Name, "register", errors.ErrInvalidFactory)
	}

	return nil
}
