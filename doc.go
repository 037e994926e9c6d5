// Package crucible is a small dependency-injection container built around
// an extension orchestration protocol. Two families of trusted, same-process
// extensions customize startup: registry extensions mutate the pending
// definition registry before any regular component is built, and
// construction interceptors wrap every component's instantiation with
// before/after hooks that may substitute the instance.
//
// Orchestration is strictly ordered. Registry extensions run first, in
// priority waves (primary, secondary, then an iterative catch-all that
// re-discovers extensions registered as a side effect of running others);
// their factory-customization hooks run only after every registry mutation
// has completed. Plain factory extensions follow in the same tiering.
// Interceptor installation is a separate later step against the stable
// registry, with a diagnostic checker observing components constructed
// before the chain is complete.
//
// Startup is single-threaded, synchronous, and fail-fast: the first error
// raised while instantiating or invoking an extension aborts the run.
package crucible
