package routing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-injector/framework/container"
	fhttp "github.com/km-arc/go-injector/framework/http"
)

// Request-scoped parameter keys visible to constructors through
// RequestContext.Parameter during a resolution started by Resolve.
const (
	ParamRequest   = "http.request"
	ParamRequestID = "http.request_id"
)

type ctxKey struct{}

// Inject stores inj in every request's context.
//
//	r.Middleware(routing.Inject(inj))
func Inject(inj *container.Injector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), ctxKey{}, inj)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// Injector returns the injector stored by Inject.
func Injector(req *http.Request) (*container.Injector, bool) {
	inj, ok := req.Context().Value(ctxKey{}).(*container.Injector)
	return inj, ok
}

// RequestContext derives the resolution context for req: the injector's root
// parameters plus the request itself and its chi request ID.
func RequestContext(inj *container.Injector, req *http.Request) container.RequestContext {
	return inj.RootContext().
		WithParameter(ParamRequest, req).
		WithParameter(ParamRequestID, middleware.GetReqID(req.Context()))
}

// Resolve resolves T for req from the injector stored by Inject.
func Resolve[T any](req *http.Request) (T, error) {
	inj, ok := Injector(req)
	if !ok {
		var zero T
		return zero, fmt.Errorf("routing: no injector on request (missing Inject middleware): %w", container.ErrInternal)
	}
	return container.GetWith[T](inj, RequestContext(inj, req))
}

// Handle adapts fn into a handler that first resolves its dependency. A failed
// resolution answers 500 JSON and fn is never called.
//
//	r.Get("/users", routing.Handle(func(w http.ResponseWriter, r *http.Request, c *UserController) {
//	    c.Index(w, r)
//	}))
func Handle[T any](fn func(http.ResponseWriter, *http.Request, T)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		dep, err := Resolve[T](req)
		if err != nil {
			debug := false
			if inj, ok := Injector(req); ok {
				inj.Logger().Error("handler dependency unavailable",
					zap.String("request_id", middleware.GetReqID(req.Context())),
					zap.Error(err))
				debug = inj.Logger().Core().Enabled(zap.DebugLevel)
			}
			fhttp.NewResponse(w).InjectionFailed(err, debug)
			return
		}
		fn(w, req, dep)
	}
}
