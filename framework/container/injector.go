package container

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Options ───────────────────────────────────────────────────────────────────

type options struct {
	threadSafe bool
	logger     *zap.Logger
	hooks      []ResolveHook
}

func defaultOptions() options {
	return options{threadSafe: true, logger: zap.NewNop()}
}

// Option configures an injector at build time.
type Option func(*options)

// WithThreadSafe selects the ownership model. The default (true) lets the
// injector be shared between goroutines: a request for a service that
// another goroutine is activating waits for it. With false such a request
// fails with CycleDetected instead of waiting.
func WithThreadSafe(threadSafe bool) Option {
	return func(o *options) { o.threadSafe = threadSafe }
}

// WithLogger sets the logger used for diagnostics. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHooks appends resolution hooks.
func WithHooks(hooks ...ResolveHook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// ── Injector ──────────────────────────────────────────────────────────────────

// Injector resolves services from a frozen provider registry. An *Injector
// is a handle: copies of the pointer share every provider and every cached
// singleton.
//
// The handle passed to a constructor is bound to the request being
// activated, so Get on it continues that resolution instead of starting a
// new one. A locator-style cycle is then reported like any other.
type Injector struct {
	id         uuid.UUID
	registry   *ProviderRegistry
	interfaces interfaceTable
	root       RequestContext
	logger     *zap.Logger
	hooks      []ResolveHook

	// set on views handed to constructors
	bound *RequestContext
}

// bind returns a view of inj whose Get resolves against rc.
func (inj *Injector) bind(rc RequestContext) *Injector {
	view := *inj
	view.bound = &rc
	return &view
}

// current is the context Get starts from.
func (inj *Injector) current() RequestContext {
	if inj.bound != nil {
		return *inj.bound
	}
	return inj.root
}

// ID uniquely identifies this injector in logs and metrics.
func (inj *Injector) ID() uuid.UUID { return inj.id }

// Registry exposes the provider registry for introspection.
func (inj *Injector) Registry() *ProviderRegistry { return inj.registry }

// RootContext returns the context top-level requests start from. It carries
// the parameters inserted while building.
func (inj *Injector) RootContext() RequestContext { return inj.root }

// Logger returns the injector's logger.
func (inj *Injector) Logger() *zap.Logger { return inj.logger }

// ── Top-level requests ────────────────────────────────────────────────────────

// Get resolves T from the root context, or, on a handle passed to a
// constructor, from the context of the service being built.
//
//	svc, err := container.Get[*UserService](inj)
//	maybe, err := container.Get[container.Optional[*Cache]](inj)
//	all, err := container.Get[container.All[Plugin]](inj)
func Get[T any](inj *Injector) (T, error) {
	return GetWith[T](inj, inj.current())
}

// GetWith resolves T against rc. Constructors use it to request their
// dependencies with the context they were handed.
func GetWith[T any](inj *Injector, rc RequestContext) (T, error) {
	var out T
	err := inj.resolveTop(rc.fork(), reflect.ValueOf(&out).Elem())
	return out, err
}

// MustGet is like Get but panics on failure. Meant for program setup.
func MustGet[T any](inj *Injector) T {
	out, err := Get[T](inj)
	if err != nil {
		panic(err)
	}
	return out
}

// Get2 resolves two requests left to right against the same context.
func Get2[A, B any](inj *Injector, rc RequestContext) (A, B, error) {
	var (
		a A
		b B
	)
	err := Fill(inj, rc, &a, &b)
	return a, b, err
}

// Get3 resolves three requests left to right against the same context.
func Get3[A, B, C any](inj *Injector, rc RequestContext) (A, B, C, error) {
	var (
		a A
		b B
		c C
	)
	err := Fill(inj, rc, &a, &b, &c)
	return a, b, c, err
}

// Fill resolves each pointer's element type and stores the result, left to
// right. The first failure aborts the remaining requests.
//
//	var (
//	    repo   *UserRepo
//	    mailer container.Optional[Mailer]
//	)
//	if err := container.Fill(inj, rc, &repo, &mailer); err != nil { ... }
func Fill(inj *Injector, rc RequestContext, ptrs ...any) error {
	rc = rc.fork()
	for i, ptr := range ptrs {
		v := reflect.ValueOf(ptr)
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return fmt.Errorf("container: Fill argument %d is %T, not a non-nil pointer", i, ptr)
		}
		if err := inj.resolveTop(rc, v.Elem()); err != nil {
			return err
		}
	}
	return nil
}

// Resolve resolves a request given only its reflect.Type.
func Resolve(inj *Injector, rc RequestContext, t reflect.Type) (any, error) {
	dst := reflect.New(t).Elem()
	if err := inj.resolveTop(rc.fork(), dst); err != nil {
		return nil, err
	}
	return dst.Interface(), nil
}

// ── Dispatch ──────────────────────────────────────────────────────────────────

// shape is implemented (on the pointer receiver) by every request wrapper.
type shape interface {
	resolveShape(inj *Injector, rc RequestContext) error
}

var (
	shapeType          = reflect.TypeFor[shape]()
	injectorType       = reflect.TypeFor[*Injector]()
	requestContextType = reflect.TypeFor[RequestContext]()
)

func (inj *Injector) resolveTop(rc RequestContext, dst reflect.Value) error {
	err := resolveInto(inj, rc, dst)
	if isKind(err, KindConditionsNotMet) {
		inj.logger.Error("conditional skip signal escaped provider iteration",
			zap.Stringer("injector", inj.id),
			zap.Error(err),
		)
		return internalError("conditions-not-met escaped provider iteration: " + err.Error())
	}
	return err
}

// resolveInto resolves the request described by dst's type and stores it in
// dst, which must be settable.
func resolveInto(inj *Injector, rc RequestContext, dst reflect.Value) error {
	t := dst.Type()
	switch {
	case t == injectorType:
		if len(rc.path) == 0 {
			dst.Set(reflect.ValueOf(inj))
		} else {
			dst.Set(reflect.ValueOf(inj.bind(rc)))
		}
		return nil
	case t == requestContextType:
		dst.Set(reflect.ValueOf(rc))
		return nil
	case reflect.PointerTo(t).Implements(shapeType):
		return dst.Addr().Interface().(shape).resolveShape(inj, rc)
	case t.Kind() == reflect.Pointer && t.Implements(shapeType):
		ptr := reflect.New(t.Elem())
		if err := ptr.Interface().(shape).resolveShape(inj, rc); err != nil {
			return err
		}
		dst.Set(ptr)
		return nil
	}

	v, err := inj.resolveOne(IdentityFor(t), rc, ShapeSingle)
	if err != nil {
		return err
	}
	dst.Set(reflect.ValueOf(v))
	return nil
}

// resolveOne produces exactly one value of id. The provider list is checked
// out for the duration of the call and reclaimed on every exit path.
func (inj *Injector) resolveOne(id ServiceIdentity, rc RequestContext, shape Shape) (v any, err error) {
	start := time.Now()
	defer func() { inj.finish(id, shape, rc, start, err) }()

	providers, err := inj.registry.checkout(id, rc, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := inj.registry.reclaim(id, providers); rerr != nil && err == nil {
			v, err = nil, rerr
		}
	}()

	owned := shape == ShapeOwned
	found := false
	for _, p := range providers {
		candidate, perr := inj.provide(p, id, rc, owned)
		if perr != nil {
			if isKind(perr, KindConditionsNotMet) {
				continue
			}
			return nil, extendCycle(perr, id)
		}
		if found {
			return nil, multipleProviders(id, len(providers))
		}
		v, found = candidate, true
	}
	if !found {
		return nil, missingProvider(id)
	}
	return v, nil
}

// provide invokes one provider and checks what it produced.
func (inj *Injector) provide(p Provider, id ServiceIdentity, rc RequestContext, owned bool) (any, error) {
	var (
		v   any
		err error
	)
	if owned {
		v, err = p.ProvideOwned(inj, rc)
	} else {
		v, err = p.Provide(inj, rc)
	}
	if err != nil {
		return nil, err
	}
	return inj.interfaces.conform(id, v)
}

// finish logs notable outcomes and notifies hooks.
func (inj *Injector) finish(id ServiceIdentity, shape Shape, rc RequestContext, start time.Time, err error) {
	if err != nil {
		switch KindOf(err) {
		case KindCycleDetected, KindMissingProvider:
			inj.logger.Debug("resolution failed",
				zap.Stringer("injector", inj.id),
				zap.Stringer("service", id),
				zap.String("shape", string(shape)),
				zap.Error(err),
			)
		case KindInternalError:
			inj.logger.Error("resolution hit an internal error",
				zap.Stringer("injector", inj.id),
				zap.Stringer("service", id),
				zap.Error(err),
			)
		}
	}
	inj.emit(id, shape, rc, start, err)
}
