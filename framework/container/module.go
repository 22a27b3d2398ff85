package container

import (
	"errors"
	"fmt"
	"maps"
)

// ── Module ────────────────────────────────────────────────────────────────────

// Module is a reusable bundle of providers, scoped parameters and interface
// declarations. Add it to a Builder with AddModule.
//
//	m := container.NewModule()
//	m.Provide(container.Singleton[*UserRepo](NewUserRepo))
//	container.WithArg[*UserRepo](m, "users")
//
//	b.AddModule(m)
type Module struct {
	registry   *ProviderRegistry
	parameters map[string]any
	interfaces interfaceTable
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{
		registry:   newProviderRegistry(),
		parameters: make(map[string]any),
		interfaces: make(interfaceTable),
	}
}

// Provide registers providers under their result identities.
func (m *Module) Provide(providers ...Provider) {
	for _, p := range providers {
		m.registry.Register(p.Result(), p)
	}
}

// InsertParameter sets a scoped parameter. A later module that sets the same
// key wins when both are added to a builder.
func (m *Module) InsertParameter(key string, value any) {
	m.parameters[key] = value
}

// RemoveParameter unsets a scoped parameter and returns its previous value.
func (m *Module) RemoveParameter(key string) (any, bool) {
	v, ok := m.parameters[key]
	delete(m.parameters, key)
	return v, ok
}

// DeclareInterface declares implementers of iface.
func (m *Module) DeclareInterface(iface ServiceIdentity, impls ...ServiceIdentity) {
	m.interfaces.declare(iface, impls...)
}

// ── ServiceProvider ───────────────────────────────────────────────────────────

// ServiceProvider contributes registrations to a module. Framework packages
// expose one each so an application can pick the pieces it needs.
//
//	type MailServiceProvider struct{}
//
//	func (MailServiceProvider) Register(m *container.Module) {
//	    m.Provide(container.Singleton[*Mailer](NewSMTPMailer))
//	}
type ServiceProvider interface {
	Register(m *Module)
}

// Booter is implemented by service providers that need the built injector,
// e.g. to warm singletons or validate configuration at start-up.
type Booter interface {
	Boot(inj *Injector) error
}

// ModuleFunc adapts a plain function to ServiceProvider.
type ModuleFunc func(m *Module)

// Register calls f(m).
func (f ModuleFunc) Register(m *Module) { f(m) }

// Boot runs Boot on every provider that implements Booter, in order. All
// providers are booted; the failures are joined.
func Boot(inj *Injector, providers ...ServiceProvider) error {
	var errs []error
	for _, sp := range providers {
		b, ok := sp.(Booter)
		if !ok {
			continue
		}
		if err := b.Boot(inj); err != nil {
			errs = append(errs, fmt.Errorf("boot %T: %w", sp, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Module) parametersCopy() map[string]any {
	return maps.Clone(m.parameters)
}
