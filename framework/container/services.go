package container

import (
	"iter"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// lease is a checked-out provider list. It is released exactly once, either
// by Close or by the cleanup attached to the owning Services.
type lease struct {
	inj       *Injector
	id        ServiceIdentity
	shape     Shape
	rc        RequestContext
	start     time.Time
	providers []Provider

	once sync.Once
	err  error
}

func (l *lease) release() error {
	l.once.Do(func() {
		l.err = l.inj.registry.reclaim(l.id, l.providers)
		if l.err != nil {
			l.inj.logger.Error("failed to release providers",
				zap.Stringer("injector", l.inj.id),
				zap.Stringer("service", l.id),
				zap.Error(l.err),
			)
		}
		l.inj.emit(l.id, l.shape, l.rc, l.start, l.err)
	})
	return l.err
}

// Services is a lazy, single-pass sequence over every provider of T. Each
// step activates the next provider; providers whose condition does not hold
// are skipped.
//
// The provider list stays checked out until Close, so while a Services is
// open any other request for T fails with CycleDetected. An unreachable
// Services is released by the garbage collector, but callers should Close
// it explicitly.
//
//	svcs, err := container.Get[*container.Services[Plugin]](inj)
//	if err != nil { ... }
//	defer svcs.Close()
//	for p, err := range svcs.Seq() { ... }
//
// A Services must not be used from several goroutines at once.
type Services[T any] struct {
	lease   *lease
	cleanup runtime.Cleanup
	inj     *Injector
	next    int
	owned   bool
}

func newServices[T any](inj *Injector, rc RequestContext, shape Shape) (*Services[T], error) {
	s := &Services[T]{}
	if err := s.open(inj, rc, shape); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Services[T]) resolveShape(inj *Injector, rc RequestContext) error {
	return s.open(inj, rc, ShapeLazy)
}

// open checks out the providers of T and arms the release cleanup.
func (s *Services[T]) open(inj *Injector, rc RequestContext, shape Shape) error {
	id := IdentityOf[T]()
	start := time.Now()
	providers, err := inj.registry.checkout(id, rc, shape == ShapeLazy)
	if err != nil {
		inj.finish(id, shape, rc, start, err)
		return err
	}
	s.lease = &lease{
		inj:       inj,
		id:        id,
		shape:     shape,
		rc:        rc,
		start:     start,
		providers: providers,
	}
	s.inj = inj
	s.owned = shape == ShapeOwnedCollection
	s.cleanup = runtime.AddCleanup(s, func(l *lease) { _ = l.release() }, s.lease)
	return nil
}

// Len returns the number of providers not yet visited. Skipped providers are
// included, so it is an upper bound on the values still to come.
func (s *Services[T]) Len() int {
	return len(s.lease.providers) - s.next
}

// Next activates providers until one produces a value. ok is false once every
// provider has been visited. A failing provider is reported with ok true and
// a non-nil error; iteration may continue past it.
func (s *Services[T]) Next() (v T, ok bool, err error) {
	l := s.lease
	for s.next < len(l.providers) {
		p := l.providers[s.next]
		s.next++

		value, perr := s.inj.provide(p, l.id, l.rc, s.owned)
		if perr != nil {
			if isKind(perr, KindConditionsNotMet) {
				continue
			}
			if s.owned && isKind(perr, KindOwnedNotSupported) {
				continue
			}
			return v, true, extendCycle(perr, l.id)
		}
		return as[T](value), true, nil
	}
	return v, false, nil
}

// Seq adapts Next to a range-over-func iterator.
func (s *Services[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := s.Next()
			if !ok || !yield(v, err) {
				return
			}
		}
	}
}

// Close releases the provider list. It is safe to call more than once.
func (s *Services[T]) Close() error {
	s.cleanup.Stop()
	return s.lease.release()
}
