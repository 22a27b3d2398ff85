package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-injector/framework/container"
)

// ── stub service providers ────────────────────────────────────────────────────

type englishProvider struct{}

func (englishProvider) Register(m *container.Module) {
	m.Provide(container.As[Greeter](container.Transient[*English](func() *English { return &English{} })))
	container.Implements[Greeter](m, container.IdentityOf[*English]())
}

type bootingProvider struct {
	booted bool
	err    error
}

func (p *bootingProvider) Register(m *container.Module) {
	m.Provide(container.NewConstant(&Settings{Name: "booting"}))
}

func (p *bootingProvider) Boot(inj *container.Injector) error {
	if _, err := container.Get[*Settings](inj); err != nil {
		return err
	}
	p.booted = true
	return p.err
}

// ── Merge semantics ───────────────────────────────────────────────────────────

func TestModule_MergeKeepsProvidersFromBoth(t *testing.T) {
	first := container.NewModule()
	first.Provide(container.As[Greeter](container.Transient[*English](func() *English { return &English{} })))
	first.DeclareInterface(container.IdentityOf[Greeter](), container.IdentityOf[*English]())

	second := container.NewModule()
	second.Provide(container.As[Greeter](container.Transient[*French](func() *French { return &French{} })))
	container.Implements[Greeter](second, container.IdentityOf[*French](), container.IdentityOf[*English]())

	b := container.NewBuilder()
	b.AddModule(first)
	b.AddModule(second)
	inj := b.Build()

	all, err := container.Get[container.All[Greeter]](inj)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hello", all[0].Greet())
	assert.Equal(t, "bonjour", all[1].Greet())
}

func TestModule_LaterParameterWins(t *testing.T) {
	first := container.NewModule()
	container.WithArg[*Foo](first, 1)
	second := container.NewModule()
	container.WithArg[*Foo](second, 2)

	b := container.NewBuilder()
	b.Provide(container.Transient[*Foo](newFoo))
	b.AddModule(first)
	b.AddModule(second)
	inj := b.Build()

	foo, err := container.Get[*Foo](inj)

	require.NoError(t, err)
	assert.Equal(t, 2, foo.Arg)
}

func TestModule_RemoveParameter(t *testing.T) {
	m := container.NewModule()
	container.WithArg[*Foo](m, 1)

	v, ok := m.RemoveParameter(container.ArgKey[*Foo, int]())
	require.True(t, ok)
	assert.Equal(t, 1, v)

	b := container.NewBuilder()
	b.Provide(container.Transient[*Foo](newFoo))
	b.AddModule(m)
	inj := b.Build()

	_, err := container.Get[*Foo](inj)
	assert.ErrorIs(t, err, container.ErrMissingParameter)
}

func TestModule_ContextualArgument(t *testing.T) {
	m := container.NewModule()
	m.Provide(container.Transient[*Foo](newFoo))
	m.When(container.IdentityOf[*Foo]()).Needs(container.IdentityOf[int]()).Give(9)

	b := container.NewBuilder()
	b.AddModule(m)
	inj := b.Build()

	assert.Equal(t, 9, container.MustGet[*Foo](inj).Arg)
}

// ── Builder ───────────────────────────────────────────────────────────────────

func TestBuilder_RemoveProviders(t *testing.T) {
	b := container.NewBuilder()
	greeters(b)

	removed := b.RemoveProviders(container.IdentityOf[Greeter]())
	inj := b.Build()

	assert.Len(t, removed, 2)
	assert.False(t, inj.Registry().Has(container.IdentityOf[Greeter]()))
	_, err := container.Get[Greeter](inj)
	assert.ErrorIs(t, err, container.ErrMissingProvider)
}

func TestBuilder_RemoveParameter(t *testing.T) {
	b := container.NewBuilder()
	b.Provide(container.Transient[*Foo](newFoo))
	container.WithArg[*Foo](b, 3)
	b.RemoveParameter(container.ArgKey[*Foo, int]())
	inj := b.Build()

	_, err := container.Get[*Foo](inj)

	assert.ErrorIs(t, err, container.ErrMissingParameter)
}

func TestBuilder_UseAfterBuildPanics(t *testing.T) {
	b := container.NewBuilder()
	b.Build()

	assert.Panics(t, func() { b.Provide(container.NewConstant(&Settings{})) })
	assert.Panics(t, func() { b.Build() })
}

func TestBuilder_RegistryIntrospection(t *testing.T) {
	b := container.NewBuilder()
	b.Provide(
		container.NewConstant(&Settings{}),
		container.NewConstant(&Repo{}),
	)
	inj := b.Build()

	assert.Equal(t, 2, inj.Registry().Len())
	assert.Equal(t,
		[]container.ServiceIdentity{container.IdentityOf[*Settings](), container.IdentityOf[*Repo]()},
		inj.Registry().Identities(),
	)
	assert.NotEqual(t, inj.ID(), container.NewBuilder().Build().ID())
}

// ── ServiceProvider ───────────────────────────────────────────────────────────

func TestServiceProvider_RegisterAndBoot(t *testing.T) {
	booting := &bootingProvider{}
	b := container.NewBuilder()
	b.Register(englishProvider{}, booting)
	inj := b.Build()

	g, err := container.Get[Greeter](inj)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	require.NoError(t, container.Boot(inj, b.Providers()...))
	assert.True(t, booting.booted)
}

func TestServiceProvider_BootJoinsFailures(t *testing.T) {
	failure := errors.New("bad settings")
	b := container.NewBuilder()
	b.Register(&bootingProvider{err: failure}, container.ModuleFunc(func(m *container.Module) {}))
	inj := b.Build()

	err := container.Boot(inj, b.Providers()...)

	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "bootingProvider")
}

func TestModuleFunc_Register(t *testing.T) {
	b := container.NewBuilder()
	b.Register(container.ModuleFunc(func(m *container.Module) {
		m.Provide(container.NewConstant(&Repo{DSN: "func"}))
	}))
	inj := b.Build()

	assert.Equal(t, "func", container.MustGet[*Repo](inj).DSN)
}
