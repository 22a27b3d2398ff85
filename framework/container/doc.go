// Package container is a runtime service-resolution engine: register
// providers keyed by type, then request object graphs on demand.
//
// # Overview
//
// Providers are registered on a Builder (directly or through Modules) and
// frozen into an Injector with Build. Nothing is validated up front; a
// missing provider, a cycle or a provider of the wrong type is reported
// when the affected service is first requested.
//
// # Lifecycle
//
//  1. Configure: b := container.NewBuilder()
//  2. Register: b.Provide(...), b.AddModule(m), b.Register(serviceProviders...)
//  3. Freeze: inj := b.Build()
//  4. Resolve: container.Get[*UserService](inj)
//
// # Providers
//
//	// New value for every request
//	b.Provide(container.Transient[*Handler](NewHandler))
//
//	// Built once, shared afterwards
//	b.Provide(container.Singleton[*sql.DB](OpenDatabase))
//
//	// Pre-built value
//	b.Provide(container.NewConstant(cfg))
//
//	// Only while a predicate holds
//	b.Provide(container.NewConditional(container.Singleton[*Cache](NewCache), cacheEnabled))
//
// Constructors passed to Transient and Singleton are ordinary functions; each
// parameter is resolved as a request. A (T, error) constructor reports its own
// errors as ActivationFailed for T.
//
//	func NewUserService(repo *UserRepo, log *zap.Logger) (*UserService, error)
//
// Constructor[T] is the explicit form, receiving the injector and the
// request context.
//
// # Requests
//
//	svc, err := container.Get[*UserService](inj)                    // exactly one
//	opt, err := container.Get[container.Optional[*Cache]](inj)      // zero or one
//	own, err := container.Get[container.Owned[*Buffer]](inj)        // fresh, not shared
//	all, err := container.Get[container.All[Plugin]](inj)           // every provider
//	seq, err := container.Get[*container.Services[Plugin]](inj)     // lazily, Close when done
//	fac, err := container.Get[container.Factory[*Conn]](inj)        // later, via fac.Get()
//
// Inside a constructor, *Injector and RequestContext parameters receive the
// current injector and context. Arg[T] receives a scoped argument.
//
// # Interfaces
//
// Register a concrete provider under an interface with As, and declare the
// closed set of implementers:
//
//	b.Provide(container.As[Greeter](container.Singleton[*English](NewEnglish)))
//	container.Implements[Greeter](b, container.IdentityOf[*English]())
//
// # Scoped arguments
//
//	type Server struct{ port int }
//
//	func NewServer(port container.Arg[int]) *Server { return &Server{port: port.Value} }
//
//	b.Provide(container.Transient[*Server](NewServer))
//	container.WithArg[*Server](b, 8080)
//
// # Cycles and concurrency
//
// While a service is being activated its provider list is checked out of the
// registry. Requesting the same service again from within its own activation
// fails with CycleDetected and the error lists the chain, e.g.
// "A -> B -> A". The *Injector handed to a constructor is bound to its
// request, so a constructor calling Get[B](inj) is part of the same call
// tree and a locator-style cycle is reported the same way.
//
// With the default thread-safe injector a request from an unrelated
// goroutine waits instead, unless waiting would close a loop of goroutines
// blocked on each other. A service whose providers are held by an open
// Services is never waited for: the request fails with CycleDetected.
//
// # Errors
//
// Every failure is an *InjectError. Use errors.Is with the Err* sentinels to
// test the kind and errors.As to read the details.
package container
