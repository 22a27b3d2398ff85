package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-injector/framework/container"
	"github.com/km-arc/go-injector/framework/metrics"
)

type (
	engine  struct{}
	missing struct{}
)

func TestCollector_Hook(t *testing.T) {
	collector := metrics.NewCollector("test")
	b := container.NewBuilder(container.WithHooks(collector.Hook()))
	b.Provide(container.NewConstant(&engine{}))
	inj := b.Build()

	for range 3 {
		_, err := container.Get[*engine](inj)
		require.NoError(t, err)
	}
	_, err := container.Get[*missing](inj)
	require.Error(t, err)

	engineName := container.IdentityOf[*engine]().Name()
	missingName := container.IdentityOf[*missing]().Name()
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.Resolutions.WithLabelValues(engineName, "single", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Resolutions.WithLabelValues(missingName, "single", "missing_provider")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.Duration))
}

func TestCollector_Handler(t *testing.T) {
	collector := metrics.NewCollector("test")
	collector.Resolutions.WithLabelValues("svc", "single", metrics.OutcomeOK).Inc()

	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `test_resolutions_total{outcome="ok",service="svc",shape="single"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}

func TestCollector_SeparateRegistries(t *testing.T) {
	// Two collectors with the same namespace must not clash.
	assert.NotPanics(t, func() {
		metrics.NewCollector("same")
		metrics.NewCollector("same")
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", metrics.Outcome(nil))
	assert.Equal(t, "error", metrics.Outcome(errors.New("plain")))
	assert.Equal(t, "cycle_detected", metrics.Outcome(container.ErrCycleDetected))
	assert.Equal(t, "activation_failed", metrics.Outcome(container.ErrActivationFailed))
}
