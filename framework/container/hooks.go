package container

import (
	"time"

	"github.com/google/uuid"
)

// Shape names the form in which an identity was requested.
type Shape string

const (
	ShapeSingle          Shape = "single"
	ShapeOptional        Shape = "optional"
	ShapeOwned           Shape = "owned"
	ShapeCollection      Shape = "collection"
	ShapeOwnedCollection Shape = "owned_collection"
	ShapeLazy            Shape = "lazy"
)

// ResolveEvent describes one finished resolution of one identity.
type ResolveEvent struct {
	InjectorID uuid.UUID
	Service    ServiceIdentity
	Shape      Shape
	// Depth is the length of the request path at the time of the request;
	// 0 for top-level requests.
	Depth    int
	Duration time.Duration
	Err      error
}

// ResolveHook observes resolutions. Hooks run synchronously on the resolving
// goroutine after the provider slot has been released, so they may resolve
// services themselves.
//
//	b := container.NewBuilder(container.WithHooks(func(e container.ResolveEvent) {
//	    log.Printf("%s resolved in %s", e.Service, e.Duration)
//	}))
type ResolveHook func(ResolveEvent)

func (inj *Injector) emit(id ServiceIdentity, shape Shape, rc RequestContext, start time.Time, err error) {
	if len(inj.hooks) == 0 {
		return
	}
	e := ResolveEvent{
		InjectorID: inj.id,
		Service:    id,
		Shape:      shape,
		Depth:      len(rc.path),
		Duration:   time.Since(start),
		Err:        err,
	}
	for _, hook := range inj.hooks {
		hook(e)
	}
}
