package container_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-injector/framework/container"
)

type recorder struct {
	mu     sync.Mutex
	events []container.ResolveEvent
}

func (r *recorder) hook(e container.ResolveEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestHooks_FiredPerIdentity(t *testing.T) {
	rec := &recorder{}
	b := container.NewBuilder(container.WithHooks(rec.hook))
	b.Provide(
		container.NewConstant(&Repo{}),
		container.Transient[*Service](func(r *Repo) *Service { return &Service{Repo: r} }),
	)
	inj := b.Build()

	_, err := container.Get[*Service](inj)
	require.NoError(t, err)

	require.Len(t, rec.events, 2)
	// Inner resolutions finish first.
	assert.Equal(t, container.IdentityOf[*Repo](), rec.events[0].Service)
	assert.Equal(t, 1, rec.events[0].Depth)
	assert.Equal(t, container.IdentityOf[*Service](), rec.events[1].Service)
	assert.Equal(t, 0, rec.events[1].Depth)
	assert.Equal(t, container.ShapeSingle, rec.events[1].Shape)
	assert.Equal(t, inj.ID(), rec.events[1].InjectorID)
	assert.NoError(t, rec.events[1].Err)
}

func TestHooks_ReportFailuresAndShapes(t *testing.T) {
	rec := &recorder{}
	inj := container.NewBuilder(container.WithHooks(rec.hook)).Build()

	_, _ = container.Get[container.Optional[*Repo]](inj)
	_, _ = container.Get[container.All[Greeter]](inj)

	require.Len(t, rec.events, 2)
	assert.Equal(t, container.ShapeOptional, rec.events[0].Shape)
	assert.ErrorIs(t, rec.events[0].Err, container.ErrMissingProvider)
	assert.Equal(t, container.ShapeCollection, rec.events[1].Shape)
}

func TestHooks_LazySequenceReportsOnClose(t *testing.T) {
	rec := &recorder{}
	b := container.NewBuilder(container.WithHooks(rec.hook))
	greeters(b)
	inj := b.Build()

	svcs, err := container.Get[*container.Services[Greeter]](inj)
	require.NoError(t, err)
	assert.Empty(t, rec.events)

	require.NoError(t, svcs.Close())
	require.Len(t, rec.events, 1)
	assert.Equal(t, container.ShapeLazy, rec.events[0].Shape)
}

func TestLogger_DebugOnCycle(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := container.NewBuilder(container.WithLogger(zap.New(core)))
	b.Provide(
		container.Transient[*cycleA](func(b *cycleB) *cycleA { return &cycleA{b: b} }),
		container.Transient[*cycleB](func(a *cycleA) *cycleB { return &cycleB{a: a} }),
	)
	inj := b.Build()

	_, err := container.Get[*cycleA](inj)
	require.Error(t, err)

	failures := logs.FilterMessage("resolution failed").All()
	require.NotEmpty(t, failures)
	assert.Equal(t, "*github.com/km-arc/go-injector/framework/container_test.cycleA", failures[0].ContextMap()["service"])
}
