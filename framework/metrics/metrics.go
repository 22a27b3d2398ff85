// Package metrics exposes injector activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-injector/framework/container"
)

// Outcomes recorded in the "outcome" label.
const (
	OutcomeOK = "ok"
)

// Collector holds the injector metrics on its own registry, so several
// collectors (one per test, say) never clash on registration.
type Collector struct {
	registry *prometheus.Registry

	Resolutions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewCollector creates the metrics under namespace and registers them, plus
// the Go runtime and process collectors, on a fresh registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of service resolutions by service, request shape and outcome",
		},
		[]string{"service", "shape", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Service resolution duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"shape"},
	)

	registry.MustRegister(
		resolutions,
		duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:    registry,
		Resolutions: resolutions,
		Duration:    duration,
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Hook records every resolution event.
//
//	b := container.NewBuilder(container.WithHooks(collector.Hook()))
func (c *Collector) Hook() container.ResolveHook {
	return func(e container.ResolveEvent) {
		shape := string(e.Shape)
		c.Resolutions.WithLabelValues(e.Service.Name(), shape, Outcome(e.Err)).Inc()
		c.Duration.WithLabelValues(shape).Observe(e.Duration.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Outcome is the label value for err: "ok" or the snake-cased error kind.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch container.KindOf(err) {
	case container.KindMissingProvider:
		return "missing_provider"
	case container.KindMissingDependency:
		return "missing_dependency"
	case container.KindCycleDetected:
		return "cycle_detected"
	case container.KindInvalidImplementation:
		return "invalid_implementation"
	case container.KindInvalidProvider:
		return "invalid_provider"
	case container.KindMultipleProviders:
		return "multiple_providers"
	case container.KindOwnedNotSupported:
		return "owned_not_supported"
	case container.KindActivationFailed:
		return "activation_failed"
	case container.KindInternalError:
		return "internal_error"
	}
	return "error"
}
