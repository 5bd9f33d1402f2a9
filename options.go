package adapter

import (
	"log/slog"
	"time"

	"github.com/imarval/mele-sap-adapter/observability"
	"github.com/imarval/mele-sap-adapter/record"
	"github.com/imarval/mele-sap-adapter/rfc"
	"github.com/imarval/mele-sap-adapter/store"
)

// Option configures an Adapter instance.
type Option func(*Adapter) error

// WithCaller sets the RFC transport the adapter invokes BAPIs through.
func WithCaller(c rfc.Caller) Option {
	return func(a *Adapter) error {
		a.caller = c
		return nil
	}
}

// WithStore sets the optional persistence backend (event history + DLQ).
func WithStore(s store.Store) Option {
	return func(a *Adapter) error {
		a.store = s
		return nil
	}
}

// WithLogger sets the structured logger for the Adapter instance.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) error {
		a.logger = logger
		return nil
	}
}

// WithMaxRetries sets the retry budget per event.
func WithMaxRetries(n int) Option {
	return func(a *Adapter) error {
		a.config.MaxRetries = n
		return nil
	}
}

// WithTenant sets the default SAP tenant context.
func WithTenant(t record.Tenant) Option {
	return func(a *Adapter) error {
		a.config.Tenant = t
		return nil
	}
}

// WithoutCommit disables the follow-up transaction commit on write calls.
func WithoutCommit() Option {
	return func(a *Adapter) error {
		a.config.DisableCommit = true
		return nil
	}
}

// WithPhysicalDelete makes Delete events request actual deletion instead of
// the deletion-flag update.
func WithPhysicalDelete() Option {
	return func(a *Adapter) error {
		a.config.PhysicalDelete = true
		return nil
	}
}

// WithShutdownTimeout bounds the wait for in-flight events on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *Adapter) error {
		a.config.ShutdownTimeout = d
		return nil
	}
}

// WithMetrics attaches metric instruments to the adapter.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) error {
		a.metrics = m
		return nil
	}
}

// WithTracer attaches an OpenTelemetry tracer to the adapter.
func WithTracer(t *observability.Tracer) Option {
	return func(a *Adapter) error {
		a.tracer = t
		return nil
	}
}

// WithObserver registers an observer notified after each processed event.
// Observer panics are recovered and logged, never propagated.
func WithObserver(obs Observer) Option {
	return func(a *Adapter) error {
		a.observers = append(a.observers, obs)
		return nil
	}
}
