package crucible

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	crucibleerrors "github.com/xraph/crucible/internal/errors"
	"github.com/xraph/crucible/pkg/logger"
)

// hookLog records extension hook invocations in order.
type hookLog struct {
	calls []string
}

func (l *hookLog) add(call string) {
	l.calls = append(l.calls, call)
}

type registeringExtension struct {
	*BaseExtension
	log  *hookLog
	defs []*Definition
}

func (e *registeringExtension) MutateRegistry(reg MutableRegistry) error {
	e.log.add(e.Name() + ".mutate")
	for _, def := range e.defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}

	return nil
}

func (e *registeringExtension) CustomizeFactory(Registry) error {
	e.log.add(e.Name() + ".customize")

	return nil
}

type primaryRegisteringExtension struct{ registeringExtension }

func (e *primaryRegisteringExtension) PrimaryOrdered() {}

// fakeService is a controllable lifecycle component.
type fakeService struct {
	name     string
	events   *[]string
	startErr error
	stopErr  error
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	*s.events = append(*s.events, "start:"+s.name)

	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)

	return s.stopErr
}

func serviceDef(name string, svc *fakeService) *Definition {
	return &Definition{
		Name: name,
		Type: reflect.TypeOf(svc),
		Factory: func(Registry) (any, error) {
			return svc, nil
		},
	}
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()

	return New(WithLogger(logger.NewNoopLogger()))
}

func TestNew_UniqueIDs(t *testing.T) {
	a := newTestContainer(t)
	b := newTestContainer(t)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestBootstrap_EndToEnd(t *testing.T) {
	c := newTestContainer(t)

	var events []string
	svc := &fakeService{name: "worker", events: &events}

	log := &hookLog{}
	ext := &primaryRegisteringExtension{registeringExtension{
		BaseExtension: NewBaseExtension("services", "registers the worker"),
		log:           log,
		defs:          []*Definition{serviceDef("worker", svc)},
	}}

	require.NoError(t, c.Bootstrap(ext))
	assert.Equal(t, []string{"services.mutate", "services.customize"}, log.calls)

	// Lazy: the service is enrolled once something resolves it.
	assert.Empty(t, c.Services())

	_, err := c.Resolve("worker")
	require.NoError(t, err)
	require.Len(t, c.Services(), 1)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, []string{"start:worker", "stop:worker"}, events)
}

func TestBootstrap_ZeroExtensions(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.Bootstrap())
	// Chain bookends only: the startup checker and the service detector.
	assert.Len(t, c.Interceptors(), 2)
}

func TestBootstrap_AfterStartFails(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.Start(context.Background()))

	err := c.Bootstrap()
	assert.ErrorIs(t, err, crucibleerrors.ErrContainerStarted)
}

func TestContainer_StartStopOrder(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Bootstrap())

	var events []string
	first := &fakeService{name: "first", events: &events}
	second := &fakeService{name: "second", events: &events}
	require.NoError(t, c.Register(serviceDef("first", first)))
	require.NoError(t, c.Register(serviceDef("second", second)))

	_, err := c.Resolve("first")
	require.NoError(t, err)
	_, err = c.Resolve("second")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop(ctx))

	assert.Equal(t, []string{
		"start:first",
		"start:second",
		"stop:second",
		"stop:first",
	}, events)
}

func TestContainer_StartFailureRevertsState(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Bootstrap())

	var events []string
	boom := errors.New("boom")
	bad := &fakeService{name: "bad", events: &events, startErr: boom}
	never := &fakeService{name: "never", events: &events}
	require.NoError(t, c.Register(serviceDef("bad", bad)))
	require.NoError(t, c.Register(serviceDef("never", never)))

	_, err := c.Resolve("bad")
	require.NoError(t, err)
	_, err = c.Resolve("never")
	require.NoError(t, err)

	ctx := context.Background()
	require.ErrorIs(t, c.Start(ctx), boom)
	assert.Equal(t, []string{"start:bad"}, events)

	// The failed start leaves the container stopped, so a fixed-up retry
	// is possible.
	bad.startErr = nil
	require.NoError(t, c.Start(ctx))
}

func TestContainer_DoubleStart(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Bootstrap())

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.ErrorIs(t, c.Start(ctx), crucibleerrors.ErrContainerStarted)
}

func TestContainer_StopWithoutStart(t *testing.T) {
	c := newTestContainer(t)

	assert.ErrorIs(t, c.Stop(context.Background()), crucibleerrors.ErrContainerStopped)
}

func TestContainer_StopAggregatesErrors(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Bootstrap())

	var events []string
	badA := &fakeService{name: "a", events: &events, stopErr: errors.New("a failed")}
	badB := &fakeService{name: "b", events: &events, stopErr: errors.New("b failed")}
	require.NoError(t, c.Register(serviceDef("a", badA)))
	require.NoError(t, c.Register(serviceDef("b", badB)))

	_, err := c.Resolve("a")
	require.NoError(t, err)
	_, err = c.Resolve("b")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	err = c.Stop(ctx)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	// Both services were still asked to stop.
	assert.Contains(t, events, "stop:a")
	assert.Contains(t, events, "stop:b")
}

func TestContainer_ServiceEnrolledOnce(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Bootstrap())

	var events []string
	svc := &fakeService{name: "worker", events: &events}
	require.NoError(t, c.Register(serviceDef("worker", svc)))

	_, err := c.Resolve("worker")
	require.NoError(t, err)
	_, err = c.Resolve("worker")
	require.NoError(t, err)

	assert.Len(t, c.Services(), 1)
}

// replacingInterceptor substitutes constructed instances with a proxy.
type replacingInterceptor struct {
	proxy any
}

func (i *replacingInterceptor) BeforeInit(instance any, name string) (any, error) {
	return instance, nil
}

func (i *replacingInterceptor) AfterInit(instance any, name string) (any, error) {
	if _, ok := instance.(Interceptor); ok {
		return instance, nil
	}

	return i.proxy, nil
}

func TestContainer_DetectorSeesProxiedInstance(t *testing.T) {
	c := newTestContainer(t)

	var events []string
	real := &fakeService{name: "real", events: &events}
	proxy := &fakeService{name: "proxy", events: &events}

	ic := &replacingInterceptor{proxy: proxy}
	require.NoError(t, c.Register(&Definition{
		Name: "proxier",
		Type: reflect.TypeOf(ic),
		Factory: func(Registry) (any, error) {
			return ic, nil
		},
	}))
	require.NoError(t, c.Bootstrap())

	require.NoError(t, c.Register(serviceDef("real", real)))
	instance, err := c.Resolve("real")
	require.NoError(t, err)
	assert.Same(t, proxy, instance)

	// The detector runs last, so it enrolls the substituted instance.
	services := c.Services()
	require.Len(t, services, 1)
	assert.Equal(t, "proxy", services[0].Name())
}

func TestContainer_OrderComparatorOption(t *testing.T) {
	log := &hookLog{}

	mk := func(name string, order int) Extension {
		return &orderedHookExtension{
			BaseExtension: NewBaseExtension(name, ""),
			log:           log,
			order:         order,
		}
	}

	// Reverse the default: highest order value first.
	c := New(
		WithLogger(logger.NewNoopLogger()),
		WithOrderComparator(func(a, b any) int {
			return orderValue(b) - orderValue(a)
		}),
	)

	require.NoError(t, c.Register(&Definition{
		Name: "one",
		Type: reflect.TypeOf(&orderedHookExtension{}),
		Factory: func(Registry) (any, error) {
			return mk("one", 1), nil
		},
	}))
	require.NoError(t, c.Register(&Definition{
		Name: "ten",
		Type: reflect.TypeOf(&orderedHookExtension{}),
		Factory: func(Registry) (any, error) {
			return mk("ten", 10), nil
		},
	}))

	require.NoError(t, c.ApplyExtensions())
	assert.Equal(t, []string{"ten.customize", "one.customize"}, log.calls)
}

type orderedHookExtension struct {
	*BaseExtension
	log   *hookLog
	order int
}

func (e *orderedHookExtension) PrimaryOrdered() {}

func (e *orderedHookExtension) Order() int { return e.order }

func (e *orderedHookExtension) CustomizeFactory(Registry) error {
	e.log.add(e.Name() + ".customize")

	return nil
}

func orderValue(v any) int {
	if ordered, ok := v.(Ordered); ok {
		return ordered.Order()
	}

	return 0
}
