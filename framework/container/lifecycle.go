package container

import (
	"errors"
	"sync"
)

// ── Transient ─────────────────────────────────────────────────────────────────

// TransientProvider invokes its constructor on every request.
type TransientProvider[T any] struct {
	construct Constructor[T]
}

// NewTransient returns a provider that never caches.
//
//	b.Provide(container.NewTransient(NewRequestLogger))
func NewTransient[T any](c Constructor[T]) *TransientProvider[T] {
	return &TransientProvider[T]{construct: c}
}

func (p *TransientProvider[T]) Result() ServiceIdentity { return IdentityOf[T]() }

func (p *TransientProvider[T]) Provide(inj *Injector, rc RequestContext) (any, error) {
	return activate(p.construct, inj, rc)
}

// ProvideOwned hands out a fresh value; nothing else holds a reference to it.
func (p *TransientProvider[T]) ProvideOwned(inj *Injector, rc RequestContext) (any, error) {
	return activate(p.construct, inj, rc)
}

// ── Singleton ─────────────────────────────────────────────────────────────────

// SingletonProvider invokes its constructor once and caches the result for the
// lifetime of the provider. A failed construction is not cached; the next
// request retries from scratch.
type SingletonProvider[T any] struct {
	construct Constructor[T]

	mu       sync.RWMutex
	create   sync.Mutex
	instance T
	built    bool
	building uint64
}

// NewSingleton returns a caching provider.
//
//	b.Provide(container.NewSingleton(NewDatabase))
func NewSingleton[T any](c Constructor[T]) *SingletonProvider[T] {
	return &SingletonProvider[T]{construct: c}
}

func (p *SingletonProvider[T]) Result() ServiceIdentity { return IdentityOf[T]() }

func (p *SingletonProvider[T]) Provide(inj *Injector, rc RequestContext) (any, error) {
	// Fast path: already built.
	p.mu.RLock()
	if p.built {
		instance := p.instance
		p.mu.RUnlock()
		return instance, nil
	}
	// The same provider registered under two identities can be re-entered by
	// the call tree that is building it; report that instead of deadlocking.
	if p.building != 0 && rc.descendsFrom(p.building) {
		p.mu.RUnlock()
		return nil, cycleDetected(IdentityOf[T]())
	}
	p.mu.RUnlock()

	// Slow path: one creator at a time.
	p.create.Lock()
	defer p.create.Unlock()

	// Double-check after acquiring the creation lock.
	p.mu.Lock()
	if p.built {
		instance := p.instance
		p.mu.Unlock()
		return instance, nil
	}
	p.building = rc.token()
	p.mu.Unlock()

	instance, err := p.build(inj, rc)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// build runs the constructor with the creation lock held and publishes the
// result. building is cleared on every exit path, panics included.
func (p *SingletonProvider[T]) build(inj *Injector, rc RequestContext) (T, error) {
	defer func() {
		p.mu.Lock()
		p.building = 0
		p.mu.Unlock()
	}()

	instance, err := activate(p.construct, inj, rc)
	if err != nil {
		return instance, err
	}
	p.mu.Lock()
	p.instance = instance
	p.built = true
	p.mu.Unlock()
	return instance, nil
}

func (p *SingletonProvider[T]) ProvideOwned(*Injector, RequestContext) (any, error) {
	return nil, ownedNotSupported(IdentityOf[T]())
}

// ── Constant ──────────────────────────────────────────────────────────────────

// ConstantProvider always returns the same pre-built value.
type ConstantProvider[T any] struct {
	value T
}

// NewConstant wraps an already constructed value.
//
//	b.Provide(container.NewConstant(cfg))
func NewConstant[T any](value T) *ConstantProvider[T] {
	return &ConstantProvider[T]{value: value}
}

func (p *ConstantProvider[T]) Result() ServiceIdentity { return IdentityOf[T]() }

func (p *ConstantProvider[T]) Provide(*Injector, RequestContext) (any, error) {
	return p.value, nil
}

func (p *ConstantProvider[T]) ProvideOwned(*Injector, RequestContext) (any, error) {
	return nil, ownedNotSupported(IdentityOf[T]())
}

// ── Conditional ───────────────────────────────────────────────────────────────

// Condition decides per request whether a conditional provider participates.
type Condition func(inj *Injector, rc RequestContext) bool

// ConditionalProvider delegates to an inner provider only while its condition
// holds. Otherwise it reports ConditionsNotMet, which the injector treats as
// "skip this provider".
type ConditionalProvider struct {
	inner     Provider
	condition Condition
}

// NewConditional guards p with cond.
//
//	b.Provide(container.NewConditional(
//	    container.NewSingleton(NewRedisCache),
//	    func(inj *container.Injector, _ container.RequestContext) bool { return redisEnabled },
//	))
func NewConditional(p Provider, cond Condition) *ConditionalProvider {
	return &ConditionalProvider{inner: p, condition: cond}
}

func (p *ConditionalProvider) Result() ServiceIdentity { return p.inner.Result() }

func (p *ConditionalProvider) Provide(inj *Injector, rc RequestContext) (any, error) {
	if !p.condition(inj, rc) {
		return nil, conditionsNotMet(p.inner.Result())
	}
	return p.inner.Provide(inj, rc)
}

func (p *ConditionalProvider) ProvideOwned(inj *Injector, rc RequestContext) (any, error) {
	if !p.condition(inj, rc) {
		return nil, conditionsNotMet(p.inner.Result())
	}
	return p.inner.ProvideOwned(inj, rc)
}

// ── Fallible ──────────────────────────────────────────────────────────────────

// Fallible adapts a constructor whose own failures should be reported as
// ActivationFailed for T. Injection errors raised while resolving its
// dependencies pass through unchanged.
//
//	b.Provide(container.NewSingleton(container.Fallible(func(inj *container.Injector, rc container.RequestContext) (*sql.DB, error) {
//	    return sql.Open("postgres", dsn)
//	})))
func Fallible[T any](c Constructor[T]) Constructor[T] {
	return func(inj *Injector, rc RequestContext) (T, error) {
		v, err := c(inj, rc)
		if err == nil {
			return v, nil
		}
		var ie *InjectError
		if errors.As(err, &ie) {
			return v, err
		}
		var zero T
		return zero, activationFailed(IdentityOf[T](), err)
	}
}
