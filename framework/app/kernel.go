package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-injector/framework/config"
	"github.com/km-arc/go-injector/framework/container"
	gohttp "github.com/km-arc/go-injector/framework/http"
	"github.com/km-arc/go-injector/framework/logging"
	"github.com/km-arc/go-injector/framework/metrics"
	"github.com/km-arc/go-injector/framework/providers"
	"github.com/km-arc/go-injector/framework/routing"
)

// Application owns the injector and the framework services resolved from it.
type Application struct {
	config    *config.Config
	logger    *zap.Logger
	collector *metrics.Collector
	injector  *container.Injector
	router    *routing.Router
}

// New loads configuration from envFiles, builds the injector from the
// framework providers plus extra, and boots every provider.
//
//	application, err := app.New([]string{".env"}, &UserServiceProvider{})
func New(envFiles []string, extra ...container.ServiceProvider) (*Application, error) {
	cfg := config.Load(envFiles...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, extra...)
}

// NewWithConfig is New for an already loaded configuration.
func NewWithConfig(cfg *config.Config, extra ...container.ServiceProvider) (*Application, error) {
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}

	hooks := []container.ResolveHook{logging.Hook(logger)}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace)
		hooks = append(hooks, collector.Hook())
	}

	opts := append(cfg.Injector.Options(),
		container.WithLogger(logger),
		container.WithHooks(hooks...),
	)
	b := container.NewBuilder(opts...)
	b.Register(providers.Framework(cfg, logger, collector)...)
	b.Register(extra...)
	inj := b.Build()

	if err := container.Boot(inj, b.Providers()...); err != nil {
		return nil, err
	}

	router, err := container.Get[*routing.Router](inj)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	logger.Info("application booted",
		zap.String("env", cfg.App.Env),
		zap.Stringer("injector", inj.ID()),
		zap.Int("services", inj.Registry().Len()),
	)

	return &Application{
		config:    cfg,
		logger:    logger,
		collector: collector,
		injector:  inj,
		router:    router,
	}, nil
}

func (a *Application) Config() *config.Config        { return a.config }
func (a *Application) Logger() *zap.Logger           { return a.logger }
func (a *Application) Injector() *container.Injector { return a.injector }
func (a *Application) Router() *routing.Router       { return a.router }

// Metrics returns the collector, or nil when metrics are disabled.
func (a *Application) Metrics() *metrics.Collector { return a.collector }

func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

// Run serves HTTP on APP_PORT until ctx is cancelled, then shuts down
// gracefully within APP_SHUTDOWN_TIMEOUT.
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	err := application.Run(ctx)
func (a *Application) Run(ctx context.Context) error {
	defer func() { _ = a.logger.Sync() }()

	srv := &http.Server{
		Addr:              ":" + a.config.App.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			zap.String("app", a.config.App.Name),
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app: server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", zap.Duration("timeout", a.config.App.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	return nil
}

// ── Controller base ───────────────────────────────────────────────────────────

// Controller is an embeddable base for controllers resolved from the injector.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
