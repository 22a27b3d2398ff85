package container

import "fmt"

// ── Optional ──────────────────────────────────────────────────────────────────

// Optional requests a single T that may legitimately be absent. A missing
// provider yields Present == false; every other failure is still an error.
//
//	cache, err := container.Get[container.Optional[*RedisCache]](inj)
//	if cache.Present { ... }
type Optional[T any] struct {
	Value   T
	Present bool
}

func (o *Optional[T]) resolveShape(inj *Injector, rc RequestContext) error {
	v, err := inj.resolveOne(IdentityOf[T](), rc, ShapeOptional)
	if err != nil {
		if isKind(err, KindMissingProvider) {
			*o = Optional[T]{}
			return nil
		}
		return err
	}
	*o = Optional[T]{Value: as[T](v), Present: true}
	return nil
}

// ── Owned ─────────────────────────────────────────────────────────────────────

// Owned requests a T that no other consumer holds a reference to. Only
// providers that build a fresh value per request (transients) support it.
type Owned[T any] struct {
	Value T
}

func (o *Owned[T]) resolveShape(inj *Injector, rc RequestContext) error {
	v, err := inj.resolveOne(IdentityOf[T](), rc, ShapeOwned)
	if err != nil {
		return err
	}
	o.Value = as[T](v)
	return nil
}

// ── Collections ───────────────────────────────────────────────────────────────

// All requests every T the registered providers produce, in registration
// order. Providers whose condition does not hold are left out.
//
//	plugins, err := container.Get[container.All[Plugin]](inj)
type All[T any] []T

func (a *All[T]) resolveShape(inj *Injector, rc RequestContext) error {
	values, err := drain(newServices[T](inj, rc, ShapeCollection))
	if err != nil {
		return err
	}
	*a = values
	return nil
}

// AllOwned is All for owned values. Providers that cannot hand out owned
// values are skipped.
type AllOwned[T any] []T

func (a *AllOwned[T]) resolveShape(inj *Injector, rc RequestContext) error {
	values, err := drain(newServices[T](inj, rc, ShapeOwnedCollection))
	if err != nil {
		return err
	}
	*a = values
	return nil
}

func drain[T any](s *Services[T], err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, s.Len())
	for v, err := range s.Seq() {
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		out = append(out, v)
	}
	return out, s.Close()
}

// ── Arg ───────────────────────────────────────────────────────────────────────

// Arg requests a scoped argument: a value inserted ahead of time for the
// service that is currently being activated. The key combines the identity
// of that service with the identity of T (see ArgKey).
//
//	type Server struct{ Port int }
//
//	func NewServer(port container.Arg[int]) *Server { return &Server{Port: port.Value} }
//
//	b.Provide(container.Transient[*Server](NewServer))
//	container.WithArg[*Server](b, 8080)
type Arg[T any] struct {
	Value T
}

func (a *Arg[T]) resolveShape(_ *Injector, rc RequestContext) error {
	id := IdentityOf[Arg[T]]()
	parent, ok := rc.Parent()
	if !ok {
		return activationFailed(id, ErrNoParentRequest)
	}
	raw, ok := rc.Parameter(argKey(parent, IdentityOf[T]()))
	if !ok {
		return activationFailed(id, ErrMissingParameter)
	}
	v, ok := raw.(T)
	if !ok {
		return activationFailed(id, ErrParameterTypeInvalid)
	}
	a.Value = v
	return nil
}

// ArgKey returns the parameter key under which an Arg[A] for service S is
// looked up.
func ArgKey[S, A any]() string {
	return argKey(IdentityOf[S](), IdentityOf[A]())
}

func argKey(target, arg ServiceIdentity) string {
	return fmt.Sprintf("container.Arg[target=%q,type=%q]", target.Name(), arg.Name())
}

// ParameterSetter stores scoped parameters. Builder, Module and Factory
// implement it.
type ParameterSetter interface {
	InsertParameter(key string, value any)
}

// WithArg routes value to every Arg[A] requested by service S.
//
//	container.WithArg[*Server](b, 8080)
func WithArg[S, A any](target ParameterSetter, value A) {
	target.InsertParameter(ArgKey[S, A](), value)
}

// ── Factory ───────────────────────────────────────────────────────────────────

// Factory defers a request. It captures the injector and the context it was
// resolved in, so a service can make further requests after construction.
// This is a service-locator escape hatch; prefer declaring dependencies.
//
// A Factory is a value: copy it and insert parameters into the copy to
// specialise requests without affecting the original.
//
//	type Pool struct{ conns container.Factory[*Conn] }
//
//	func (p *Pool) Open(addr string) (*Conn, error) {
//	    f := p.conns
//	    container.WithArg[*Conn](&f, addr)
//	    return f.Get()
//	}
type Factory[T any] struct {
	inj *Injector
	rc  RequestContext
}

func (f *Factory[T]) resolveShape(inj *Injector, rc RequestContext) error {
	f.inj = inj
	f.rc = rc
	return nil
}

// Get performs the deferred request.
func (f Factory[T]) Get() (T, error) {
	if f.inj == nil {
		var zero T
		return zero, internalError("factory for " + IdentityOf[T]().Name() + " was not obtained from an injector")
	}
	return GetWith[T](f.inj, f.rc)
}

// RequestContext returns the context requests are made with.
func (f Factory[T]) RequestContext() RequestContext { return f.rc }

// InsertParameter sets a parameter for future requests made through f.
func (f *Factory[T]) InsertParameter(key string, value any) {
	f.rc = f.rc.WithParameter(key, value)
}

// RemoveParameter removes a parameter for future requests made through f.
func (f *Factory[T]) RemoveParameter(key string) {
	f.rc = f.rc.WithoutParameter(key)
}
