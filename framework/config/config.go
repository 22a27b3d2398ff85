package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/km-arc/go-injector/framework/container"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig
	Injector InjectorConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Name            string        `validate:"required"`
	Env             string        `validate:"oneof=local production testing"`
	Debug           bool
	Port            string        `validate:"required,numeric"`
	ShutdownTimeout time.Duration `validate:"gte=0"`
}

// InjectorConfig controls how the service injector is built.
type InjectorConfig struct {
	// ThreadSafe lets the injector be shared between request goroutines.
	ThreadSafe bool
}

// Options translates the configuration into builder options.
func (c InjectorConfig) Options() []container.Option {
	return []container.Option{container.WithThreadSafe(c.ThreadSafe)}
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string `validate:"required_if=Enabled true"`
	Path      string `validate:"omitempty,startswith=/"`
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	env := Get("APP_ENV", "local")
	return &Config{
		App: AppConfig{
			Name:            Get("APP_NAME", "GoInjector"),
			Env:             env,
			Debug:           GetBool("APP_DEBUG", env == "local"),
			Port:            Get("APP_PORT", "8000"),
			ShutdownTimeout: GetDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Injector: InjectorConfig{
			ThreadSafe: GetBool("INJECTOR_THREAD_SAFE", true),
		},
		Log: LogConfig{
			Level:  strings.ToLower(Get("LOG_LEVEL", defaultLevel(env))),
			Format: strings.ToLower(Get("LOG_FORMAT", defaultFormat(env))),
		},
		Metrics: MetricsConfig{
			Enabled:   GetBool("METRICS_ENABLED", true),
			Namespace: Get("METRICS_NAMESPACE", "injector"),
			Path:      Get("METRICS_PATH", "/metrics"),
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints and reports all
// violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Errorf("config: %s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(msgs...)
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// GetDuration returns a time.Duration env value ("5s", "250ms").
func GetDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// ── helpers ─────────────────────────────────────────────────────────────────

func defaultLevel(env string) string {
	if env == "production" {
		return "info"
	}
	return "debug"
}

func defaultFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}
