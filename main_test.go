package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-injector/framework/app"
	"github.com/km-arc/go-injector/framework/config"
)

func newDemo(t *testing.T, debug bool) *app.Application {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "Demo", Env: "testing", Debug: debug, Port: "0", ShutdownTimeout: time.Second},
		Injector: config.InjectorConfig{ThreadSafe: true},
		Log:      config.LogConfig{Level: "error", Format: "console"},
		Metrics:  config.MetricsConfig{Enabled: false, Namespace: "demo", Path: "/metrics"},
	}
	application, err := app.NewWithConfig(cfg, &DemoServiceProvider{})
	require.NoError(t, err)
	routes(application)
	return application
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func data(t *testing.T, rr *httptest.ResponseRecorder) any {
	t.Helper()
	var out struct {
		Data any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out.Data
}

func TestDemo_Home(t *testing.T) {
	rr := call(t, newDemo(t, false).Router(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := data(t, rr).(map[string]any)
	assert.Equal(t, "testing", body["env"])
	assert.Equal(t, "0.1.0", body["version"])
	assert.NotContains(t, body, "injector")

	rr = call(t, newDemo(t, true).Router(), http.MethodGet, "/", "")
	assert.Contains(t, data(t, rr).(map[string]any), "injector")
}

func TestDemo_Greetings(t *testing.T) {
	rr := call(t, newDemo(t, false).Router(), http.MethodGet, "/api/v1/greetings", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{"Hello, world!", "Bonjour, world !"}, data(t, rr))
}

func TestDemo_UserResource(t *testing.T) {
	r := newDemo(t, false).Router()

	rr := call(t, r, http.MethodPost, "/api/v1/users", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := data(t, rr).(map[string]any)
	assert.Equal(t, "Hello, Ada!", created["greeting"])

	rr = call(t, r, http.MethodGet, "/api/v1/users/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ada", data(t, rr).(map[string]any)["name"])

	rr = call(t, r, http.MethodPut, "/api/v1/users/1", `{"name":"Ada L","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ada L", data(t, rr).(map[string]any)["name"])

	rr = call(t, r, http.MethodDelete, "/api/v1/users/1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	for _, path := range []string{"/api/v1/users/1", "/api/v1/users/abc"} {
		rr = call(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}

	rr = call(t, r, http.MethodGet, "/api/v1/users", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, data(t, rr))
}

func TestDemo_UserValidation(t *testing.T) {
	rr := call(t, newDemo(t, false).Router(), http.MethodPost, "/api/v1/users", `{"name":"A","email":"nope"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDemo_ProfileNeedsToken(t *testing.T) {
	r := newDemo(t, false).Router()

	assert.Equal(t, http.StatusUnauthorized, call(t, r, http.MethodGet, "/profile", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
