package shared

import "context"

// Service is the lifecycle contract for long-lived components. Components
// whose constructed instance implements Service are detected by the
// container's final fixed interceptor and enrolled for managed start and
// stop.
type Service interface {
	// Name returns the unique name of the service.
	Name() string

	// Start starts the service.
	Start(ctx context.Context) error

	// Stop stops the service gracefully.
	Stop(ctx context.Context) error
}
