package container

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Builder accumulates registrations and freezes them into an Injector.
//
//	b := container.NewBuilder(container.WithLogger(logger))
//	b.Provide(
//	    container.Singleton[*sql.DB](OpenDatabase),
//	    container.Transient[*UserService](NewUserService),
//	)
//	b.AddModule(mailModule)
//	inj := b.Build()
type Builder struct {
	opts       options
	registry   *ProviderRegistry
	interfaces interfaceTable
	root       RequestContext
	providers  []ServiceProvider
	built      bool
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{
		opts:       o,
		registry:   newProviderRegistry(),
		interfaces: make(interfaceTable),
		root:       NewRequestContext(),
	}
}

func (b *Builder) mustNotBeBuilt() {
	if b.built {
		panic("container: builder used after Build")
	}
}

// Provide registers providers under their result identities. Several
// providers for one identity are kept in registration order.
func (b *Builder) Provide(providers ...Provider) {
	b.mustNotBeBuilt()
	for _, p := range providers {
		b.registry.Register(p.Result(), p)
	}
}

// AddModule merges m: providers are appended after the ones already present,
// parameters overwrite existing keys and interface declarations are added.
func (b *Builder) AddModule(m *Module) {
	b.mustNotBeBuilt()
	b.registry.Merge(m.registry)
	for key, value := range m.parametersCopy() {
		b.root = b.root.WithParameter(key, value)
	}
	b.interfaces.merge(m.interfaces)
}

// Register builds a module from each service provider and adds it. The
// providers are remembered for Providers, so a kernel can Boot them later.
//
//	b.Register(providers.ConfigServiceProvider{Config: cfg}, providers.LoggingServiceProvider{})
func (b *Builder) Register(sps ...ServiceProvider) {
	b.mustNotBeBuilt()
	for _, sp := range sps {
		m := NewModule()
		sp.Register(m)
		b.AddModule(m)
		b.providers = append(b.providers, sp)
	}
}

// Providers returns the service providers passed to Register.
func (b *Builder) Providers() []ServiceProvider {
	out := make([]ServiceProvider, len(b.providers))
	copy(out, b.providers)
	return out
}

// InsertParameter sets a parameter on the root request context.
func (b *Builder) InsertParameter(key string, value any) {
	b.mustNotBeBuilt()
	b.root = b.root.WithParameter(key, value)
}

// RemoveParameter unsets a root parameter.
func (b *Builder) RemoveParameter(key string) {
	b.mustNotBeBuilt()
	b.root = b.root.WithoutParameter(key)
}

// RemoveProviders drops every provider registered for id and returns them.
func (b *Builder) RemoveProviders(id ServiceIdentity) []Provider {
	b.mustNotBeBuilt()
	return b.registry.remove(id)
}

// DeclareInterface declares implementers of iface.
func (b *Builder) DeclareInterface(iface ServiceIdentity, impls ...ServiceIdentity) {
	b.mustNotBeBuilt()
	b.interfaces.declare(iface, impls...)
}

// Build freezes the builder. It must not be used afterwards.
func (b *Builder) Build() *Injector {
	b.mustNotBeBuilt()
	b.built = true

	b.registry.threadSafe = b.opts.threadSafe
	inj := &Injector{
		id:         uuid.New(),
		registry:   b.registry,
		interfaces: b.interfaces.clone(),
		root:       b.root,
		logger:     b.opts.logger,
		hooks:      b.opts.hooks,
	}
	inj.logger.Debug("injector built",
		zap.Stringer("injector", inj.id),
		zap.Int("services", b.registry.Len()),
		zap.Bool("thread_safe", b.opts.threadSafe),
	)
	return inj
}
