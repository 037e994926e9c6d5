package crucible

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/xraph/crucible/internal/errors"
	"github.com/xraph/crucible/internal/orchestrator"
	"github.com/xraph/crucible/internal/registry"
	"github.com/xraph/crucible/internal/shared"
	"github.com/xraph/crucible/pkg/logger"
)

// Container owns the definition registry and the interceptor chain, and
// exposes the two orchestration entry points of the startup sequence:
// ApplyExtensions, then InstallInterceptors. Both mutate shared container
// state and are not safe for concurrent callers; startup runs once, on one
// goroutine, to completion.
type Container struct {
	id       string
	registry *registry.InMemory
	orch     *orchestrator.Orchestrator
	logger   logger.Logger
	services []shared.Service
	enrolled map[string]struct{}
	started  atomic.Bool
	mu       sync.Mutex
}

// ContainerOption configures a Container.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	logger logger.Logger
	config Config
	cmp    func(a, b any) int
}

// WithLogger sets the container's logger. Defaults to a logger built from
// the configuration's logging section.
func WithLogger(log logger.Logger) ContainerOption {
	return func(o *containerOptions) {
		o.logger = log
	}
}

// WithConfig applies a full configuration, typically from LoadConfig.
func WithConfig(cfg Config) ContainerOption {
	return func(o *containerOptions) {
		o.config = cfg
	}
}

// WithOrderComparator supplies a custom comparator for extension and
// interceptor sorting, replacing the default tier-then-order comparator.
func WithOrderComparator(cmp func(a, b any) int) ContainerOption {
	return func(o *containerOptions) {
		o.cmp = cmp
	}
}

// New creates a container with an empty registry.
func New(opts ...ContainerOption) *Container {
	options := containerOptions{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&options)
	}

	log := options.logger
	if log == nil {
		log = logger.NewLogger(options.config.Logging)
	}

	id := uuid.NewString()
	log = log.Named("crucible").With(logger.String("container_id", id))

	reg := registry.New(log)
	if options.cmp != nil {
		reg.SetOrderComparator(options.cmp)
	}

	c := &Container{
		id:       id,
		registry: reg,
		logger:   log,
		enrolled: make(map[string]struct{}),
	}
	c.orch = orchestrator.New(reg,
		orchestrator.WithLogger(log),
		orchestrator.WithMaxMutationRounds(options.config.Orchestration.MaxMutationRounds),
		orchestrator.WithServiceEnroller(c.enrollService),
	)

	return c
}

// ID returns the container's unique instance ID.
func (c *Container) ID() string {
	return c.id
}

// Register adds a definition to the registry.
func (c *Container) Register(def *Definition) error {
	return c.registry.Register(def)
}

// Resolve returns the named component, instantiating it on first use.
func (c *Container) Resolve(name string) (any, error) {
	return c.registry.Resolve(name)
}

// Registry exposes the container's registry with its mutation surface.
func (c *Container) Registry() MutableRegistry {
	return c.registry
}

// Interceptors returns the installed interceptor chain in order.
func (c *Container) Interceptors() []Interceptor {
	return c.registry.Interceptors()
}

// ApplyExtensions runs the extension orchestration: supplied and
// registry-discovered registry extensions in priority waves, then every
// factory-customization hook, strictly after all registry mutation has
// completed. The first failure aborts and propagates.
func (c *Container) ApplyExtensions(extensions ...Extension) error {
	return c.orch.ApplyExtensions(extensions)
}

// InstallInterceptors discovers and installs construction interceptors into
// the chain. Runs after ApplyExtensions, against the stable registry.
func (c *Container) InstallInterceptors() error {
	return c.orch.InstallInterceptors()
}

// Bootstrap runs the full startup sequence: extension orchestration first,
// interceptor installation second.
func (c *Container) Bootstrap(extensions ...Extension) error {
	if c.started.Load() {
		return errors.ErrContainerStarted
	}

	if err := c.ApplyExtensions(extensions...); err != nil {
		return err
	}

	return c.InstallInterceptors()
}

// enrollService records a constructed Service for managed start and stop.
// Called by the chain's final detector interceptor; duplicate names are
// enrolled once.
func (c *Container) enrollService(svc shared.Service) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.enrolled[svc.Name()]; ok {
		return
	}
	c.enrolled[svc.Name()] = struct{}{}
	c.services = append(c.services, svc)
}

// Services returns the enrolled services in enrollment order.
func (c *Container) Services() []Service {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Service, len(c.services))
	copy(out, c.services)

	return out
}

// Start starts enrolled services in enrollment order. The first failure
// aborts startup and leaves the container stopped.
func (c *Container) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.ErrContainerStarted
	}

	for _, svc := range c.Services() {
		if err := svc.Start(ctx); err != nil {
			c.started.Store(false)

			return fmt.Errorf("start service %s: %w", svc.Name(), err)
		}

		c.logger.Info("service started", logger.String("service", svc.Name()))
	}

	c.logger.Info("container started", logger.Int("services", len(c.Services())))

	return nil
}

// Stop stops enrolled services in reverse enrollment order. Every service
// is stopped even when earlier ones fail; failures are aggregated.
func (c *Container) Stop(ctx context.Context) error {
	if !c.started.CompareAndSwap(true, false) {
		return errors.ErrContainerStopped
	}

	services := c.Services()

	var result error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(ctx); err != nil {
			result = multierr.Append(result, fmt.Errorf("stop service %s: %w", services[i].Name(), err))

			continue
		}

		c.logger.Info("service stopped", logger.String("service", services[i].Name()))
	}

	return result
}
