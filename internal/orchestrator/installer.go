package orchestrator

import (
	"github.com/xraph/crucible/internal/shared"
	"github.com/xraph/crucible/pkg/logger"
)

// InstallInterceptors discovers, tiers, sorts, and installs construction
// interceptors into the container's chain. It runs as a distinct startup
// step after ApplyExtensions, against the now-stable registry.
//
// The startup checker is installed before anything else so that it observes
// every construction that happens while the remaining interceptors are
// still being installed. Definition-aware interceptors are re-installed at
// the tail afterwards, and the service detector goes in as the absolute
// last entry so it sees final instances, including proxies substituted by
// earlier interceptors.
func (o *Orchestrator) InstallInterceptors() error {
	names := o.reg.NamesByType(typeInterceptor)

	// One slot is reserved for the checker itself.
	target := o.reg.InterceptorCount() + 1 + len(names)
	o.reg.AddInterceptor(newStartupChecker(o.reg, target, o.log))

	var primary, internal []shared.Interceptor
	var secondaryNames, unorderedNames []string
	for _, name := range names {
		switch classifyName(o.reg, name) {
		case TierPrimary:
			ic, err := resolveAs[shared.Interceptor](o.reg, name)
			if err != nil {
				return err
			}
			primary = append(primary, ic)
			internal = collectInternal(internal, ic)
		case TierSecondary:
			secondaryNames = append(secondaryNames, name)
		default:
			unorderedNames = append(unorderedNames, name)
		}
	}

	cmp := o.comparator()

	sortSlice(primary, cmp)
	o.install(primary)

	secondary := make([]shared.Interceptor, 0, len(secondaryNames))
	for _, name := range secondaryNames {
		ic, err := resolveAs[shared.Interceptor](o.reg, name)
		if err != nil {
			return err
		}
		secondary = append(secondary, ic)
		internal = collectInternal(internal, ic)
	}
	sortSlice(secondary, cmp)
	o.install(secondary)

	unordered := make([]shared.Interceptor, 0, len(unorderedNames))
	for _, name := range unorderedNames {
		ic, err := resolveAs[shared.Interceptor](o.reg, name)
		if err != nil {
			return err
		}
		unordered = append(unordered, ic)
		internal = collectInternal(internal, ic)
	}
	// Unordered interceptors install in discovery order.
	o.install(unordered)

	// Re-install definition-aware interceptors: each already-resident
	// instance moves to the tail in sorted order, so internal interceptors
	// run last regardless of their original tier.
	sortSlice(internal, cmp)
	o.install(internal)

	o.reg.AddInterceptor(newServiceDetector(o.enroll, o.log))

	o.log.Debug("interceptor installation complete",
		logger.Int("discovered", len(names)),
		logger.Int("internal", len(internal)),
		logger.Int("installed", o.reg.InterceptorCount()),
	)

	return nil
}

func (o *Orchestrator) install(ics []shared.Interceptor) {
	for _, ic := range ics {
		o.reg.AddInterceptor(ic)
	}
}

func collectInternal(internal []shared.Interceptor, ic shared.Interceptor) []shared.Interceptor {
	if _, ok := ic.(shared.DefinitionAwareInterceptor); ok {
		return append(internal, ic)
	}

	return internal
}
