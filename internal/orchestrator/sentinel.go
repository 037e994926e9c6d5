package orchestrator

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/xraph/crucible/internal/shared"
	"github.com/xraph/crucible/pkg/logger"
)

// startupChecker is the diagnostic interceptor installed ahead of every
// real interceptor. It flags components constructed while the chain is
// still shorter than the reserved target count: such components will not be
// seen by later-installed interceptors and may silently miss wrapping
// behavior expected from them. It only logs; it never errors and never
// replaces the instance.
type startupChecker struct {
	reg      shared.Registry
	target   int
	log      logger.Logger
	observed atomic.Int64
}

func newStartupChecker(reg shared.Registry, target int, log logger.Logger) *startupChecker {
	return &startupChecker{
		reg:    reg,
		target: target,
		log:    log,
	}
}

func (c *startupChecker) BeforeInit(instance any, name string) (any, error) {
	return instance, nil
}

func (c *startupChecker) AfterInit(instance any, name string) (any, error) {
	if _, ok := instance.(shared.Interceptor); ok {
		return instance, nil
	}
	if c.reg.IsInfrastructure(name) {
		return instance, nil
	}

	if installed := c.reg.InterceptorCount(); installed < c.target {
		c.observed.Inc()
		c.log.Info("component constructed before all interceptors were installed; it is not eligible for interception by the full chain",
			logger.String("name", name),
			logger.String("type", fmt.Sprintf("%T", instance)),
			logger.Int("installed", installed),
			logger.Int("expected", c.target),
		)
	}

	return instance, nil
}

// Observed returns how many early constructions the checker flagged.
func (c *startupChecker) Observed() int64 {
	return c.observed.Load()
}

// serviceDetector enrolls constructed components implementing the Service
// lifecycle contract for container-managed start and stop. It is installed
// as the very last interceptor so it observes final instances.
type serviceDetector struct {
	enroll func(shared.Service)
	log    logger.Logger
}

func newServiceDetector(enroll func(shared.Service), log logger.Logger) *serviceDetector {
	return &serviceDetector{enroll: enroll, log: log}
}

func (d *serviceDetector) BeforeInit(instance any, name string) (any, error) {
	return instance, nil
}

func (d *serviceDetector) AfterInit(instance any, name string) (any, error) {
	if svc, ok := instance.(shared.Service); ok && d.enroll != nil {
		d.enroll(svc)
		d.log.Debug("service enrolled for lifecycle management",
			logger.String("service", svc.Name()),
			logger.String("definition", name),
		)
	}

	return instance, nil
}
