package container

import "errors"

// Provider produces instances of Result().
//
// Provide returns a shared instance; ProvideOwned returns a value the caller
// owns exclusively and fails with OwnedNotSupported when the provider caches.
// Values are returned untyped; the injector checks them against the
// requested identity before handing them out.
type Provider interface {
	Result() ServiceIdentity
	Provide(inj *Injector, rc RequestContext) (any, error)
	ProvideOwned(inj *Injector, rc RequestContext) (any, error)
}

// Constructor builds a T. Dependencies are requested from inj using rc, which
// already has T appended to its path. inj is bound to rc, so Get[D](inj) is
// the same request as GetWith[D](inj, rc):
//
//	func NewUserService(inj *container.Injector, rc container.RequestContext) (*UserService, error) {
//	    repo, err := container.GetWith[*UserRepo](inj, rc)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &UserService{repo: repo}, nil
//	}
//
// Errors are propagated as returned; wrap the constructor in Fallible to
// attach the service identity to failures of its own.
type Constructor[T any] func(inj *Injector, rc RequestContext) (T, error)

// activate runs c for T: the path grows by T and a dependency that has no
// provider is reported against T.
func activate[T any](c Constructor[T], inj *Injector, rc RequestContext) (T, error) {
	id := IdentityOf[T]()
	child := rc.WithRequest(id)
	v, err := c(inj.bind(child), child)
	if err != nil {
		var zero T
		var ie *InjectError
		if errors.As(err, &ie) && ie.Kind == KindMissingProvider {
			return zero, missingDependency(id, ie.Service)
		}
		return zero, err
	}
	return v, nil
}

// ── Interface binding ─────────────────────────────────────────────────────────

// interfaceProvider registers an inner provider under another identity.
type interfaceProvider struct {
	iface ServiceIdentity
	inner Provider
}

// As registers p as an implementation of interface I. The implementer must be
// declared for I (see Builder.DeclareInterface); this is checked when the
// value is resolved.
//
//	b.Provide(container.As[Greeter](container.NewSingleton(NewEnglish)))
func As[I any](p Provider) Provider {
	return &interfaceProvider{iface: IdentityOf[I](), inner: p}
}

func (p *interfaceProvider) Result() ServiceIdentity { return p.iface }

func (p *interfaceProvider) Provide(inj *Injector, rc RequestContext) (any, error) {
	return p.inner.Provide(inj, rc)
}

func (p *interfaceProvider) ProvideOwned(inj *Injector, rc RequestContext) (any, error) {
	return p.inner.ProvideOwned(inj, rc)
}
