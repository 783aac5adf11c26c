package auditengine

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// engineConfig holds the resolved options for an engine.
type engineConfig struct {
	logger         *slog.Logger
	timeout        time.Duration
	registry       *Registry
	tracerProvider trace.TracerProvider
	progress       func(Event)
}

// Option configures an engine.
type Option func(*engineConfig)

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// WithTimeout bounds every adapter call, overriding configured timeouts.
func WithTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		c.timeout = d
	}
}

// WithRegistry replaces the built-in adapter factories.
func WithRegistry(r *Registry) Option {
	return func(c *engineConfig) {
		c.registry = r
	}
}

// WithTracerProvider sets the OpenTelemetry provider (default: the global one).
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *engineConfig) {
		c.tracerProvider = tp
	}
}

// WithProgress registers a callback for stage and tool progress. It is called
// concurrently from the run's goroutines.
func WithProgress(fn func(Event)) Option {
	return func(c *engineConfig) {
		c.progress = fn
	}
}

func applyOpts(opts []Option) *engineConfig {
	cfg := &engineConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	return cfg
}
