package routing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-injector/framework/container"
	"github.com/km-arc/go-injector/framework/routing"
)

type greeter struct {
	path string
}

func newInjector(t *testing.T) *container.Injector {
	t.Helper()
	b := container.NewBuilder()
	b.Provide(container.NewTransient[*greeter](func(_ *container.Injector, rc container.RequestContext) (*greeter, error) {
		v, ok := rc.Parameter(routing.ParamRequest)
		if !ok {
			return &greeter{}, nil
		}
		return &greeter{path: v.(*http.Request).URL.Path}, nil
	}))
	return b.Build()
}

func TestInject_StoresInjector(t *testing.T) {
	inj := newInjector(t)
	r := routing.New(nil)
	r.Middleware(routing.Inject(inj))

	var got *container.Injector
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		got, _ = routing.Injector(req)
	})
	do(t, r, http.MethodGet, "/")

	assert.Same(t, inj, got)
}

func TestResolve_SeesRequestParameter(t *testing.T) {
	r := routing.New(nil)
	r.Middleware(routing.Inject(newInjector(t)))

	var g *greeter
	var err error
	r.Get("/hello", func(w http.ResponseWriter, req *http.Request) {
		g, err = routing.Resolve[*greeter](req)
	})
	do(t, r, http.MethodGet, "/hello")

	require.NoError(t, err)
	assert.Equal(t, "/hello", g.path)
}

func TestResolve_WithoutInjectMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := routing.Resolve[*greeter](req)

	assert.Equal(t, container.KindInternalError, container.KindOf(err))
}

func TestHandle_PassesDependency(t *testing.T) {
	r := routing.New(nil)
	r.Middleware(routing.Inject(newInjector(t)))
	r.Get("/greet", routing.Handle(func(w http.ResponseWriter, req *http.Request, g *greeter) {
		_, _ = w.Write([]byte("hello from " + g.path))
	}))

	rr := do(t, r, http.MethodGet, "/greet")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello from /greet", rr.Body.String())
}

func TestHandle_MissingProviderAnswers500(t *testing.T) {
	type unregistered struct{}

	r := routing.New(nil)
	r.Middleware(routing.Inject(newInjector(t)))
	called := false
	r.Get("/x", routing.Handle(func(http.ResponseWriter, *http.Request, *unregistered) {
		called = true
	}))

	rr := do(t, r, http.MethodGet, "/x")

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, container.KindMissingProvider.String(), body["kind"])
	assert.Contains(t, body["service"], "unregistered")
	assert.NotContains(t, body, "error")
}
