package providers

import (
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-injector/framework/config"
	"github.com/km-arc/go-injector/framework/container"
	"github.com/km-arc/go-injector/framework/metrics"
	"github.com/km-arc/go-injector/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider makes the loaded configuration injectable.
//
// Provided services:
//   - *config.Config
//   - config.AppConfig  (copy of Config.App)
type ConfigServiceProvider struct {
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(m *container.Module) {
	m.Provide(
		container.NewConstant(p.Config),
		container.Transient[config.AppConfig](func(cfg *config.Config) config.AppConfig {
			return cfg.App
		}),
	)
}

// Boot rejects an invalid configuration before the server starts.
func (p *ConfigServiceProvider) Boot(inj *container.Injector) error {
	cfg, err := container.Get[*config.Config](inj)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider provides *zap.Logger. A logger injected into a
// service is named after that service, so
//
//	func NewUserRepo(logger *zap.Logger) *UserRepo
//
// logs as "UserRepo". Resolved directly it is the root logger.
type LoggingServiceProvider struct {
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(m *container.Module) {
	root := p.Logger
	m.Provide(container.NewTransient[*zap.Logger](func(_ *container.Injector, rc container.RequestContext) (*zap.Logger, error) {
		// The path ends with the logger itself; the service before it asked for it.
		chain := rc.Path()
		if len(chain) < 2 {
			return root, nil
		}
		return root.Named(LoggerName(chain[len(chain)-2])), nil
	}))
}

// LoggerName is the logger name used for a service: its type name without
// pointer or package prefix.
func LoggerName(id container.ServiceIdentity) string {
	name := strings.TrimLeft(id.Name(), "*[]")
	name = path.Base(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider provides the Prometheus collector. A nil Collector
// registers nothing, which leaves metrics disabled.
type MetricsServiceProvider struct {
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(m *container.Module) {
	if p.Collector == nil {
		return
	}
	m.Provide(container.NewConstant(p.Collector))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider provides the HTTP router as a singleton. The router
// already carries the Inject middleware, and the metrics endpoint when a
// collector is registered and metrics are enabled.
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(m *container.Module) {
	m.Provide(container.Singleton[*routing.Router](newRouter))
}

// Boot builds the router so routing errors surface at start-up.
func (p *RoutingServiceProvider) Boot(inj *container.Injector) error {
	if _, err := container.Get[*routing.Router](inj); err != nil {
		return fmt.Errorf("router: %w", err)
	}
	return nil
}

func newRouter(
	inj *container.Injector,
	logger *zap.Logger,
	cfg *config.Config,
	collector container.Optional[*metrics.Collector],
) *routing.Router {
	r := routing.New(logger)
	r.Middleware(routing.Inject(inj))
	if cfg.Metrics.Enabled && collector.Present {
		r.Mount(cfg.Metrics.Path, collector.Value.Handler())
	}
	return r
}

// Framework returns the framework's providers in registration order.
func Framework(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) []container.ServiceProvider {
	return []container.ServiceProvider{
		&ConfigServiceProvider{Config: cfg},
		&LoggingServiceProvider{Logger: logger},
		&MetricsServiceProvider{Collector: collector},
		&RoutingServiceProvider{},
	}
}
