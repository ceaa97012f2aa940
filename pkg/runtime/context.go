package runtime

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/molab-dev/molab/pkg/state"
)

// UpdateHandler receives cells whose value just changed. It is the external
// scheduler's hook: deciding what re-runs, including whether the mutating
// cell re-triggers itself (see Cell.AllowSelfLoops), happens entirely
// behind this function.
type UpdateHandler func(c state.Cell)

// ExecContext is the concrete execution context. It owns the state registry
// for one execution context's lifetime and forwards update events, fire and
// forget, to the configured handler.
type ExecContext struct {
	registry *state.Registry
	handler  UpdateHandler
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *state.Metrics
}

// Option configures an ExecContext.
type Option func(*ExecContext)

// WithRegistry sets the state registry the context owns.
// Defaults to a fresh empty registry.
func WithRegistry(r *state.Registry) Option {
	return func(c *ExecContext) {
		c.registry = r
	}
}

// WithUpdateHandler sets the scheduler hook invoked for every state update.
func WithUpdateHandler(h UpdateHandler) Option {
	return func(c *ExecContext) {
		c.handler = h
	}
}

// WithLogger sets the context's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *ExecContext) {
		c.logger = logger
	}
}

// WithTracerName enables an OpenTelemetry span per state update, using the
// global tracer provider under the given tracer name. Configure the
// provider in main(); without one the spans are no-ops.
func WithTracerName(name string) Option {
	return func(c *ExecContext) {
		c.tracer = otel.Tracer(name)
	}
}

// WithMetrics attaches the metrics set shared with the registry so update
// dispatches are counted alongside registry activity.
func WithMetrics(m *state.Metrics) Option {
	return func(c *ExecContext) {
		c.metrics = m
	}
}

// NewExecContext creates an execution context.
func NewExecContext(opts ...Option) *ExecContext {
	c := &ExecContext{}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = state.NewRegistry()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// StateRegistry returns the registry owned by this context.
func (c *ExecContext) StateRegistry() *state.Registry {
	return c.registry
}

// RegisterStateUpdate accepts a changed cell and hands it to the update
// handler. The core calls this on every mutation, unconditionally.
func (c *ExecContext) RegisterStateUpdate(cell state.Cell) {
	if c.tracer != nil {
		_, span := c.tracer.Start(context.Background(), "state.update",
			trace.WithAttributes(
				attribute.Int64("state.identity", int64(cell.Identity())),
				attribute.Bool("state.allow_self_loops", cell.AllowSelfLoops()),
			))
		defer span.End()
	}

	c.metrics.RecordUpdate()
	c.logger.Debug("state update",
		"identity", uint64(cell.Identity()),
		"names", c.registry.BoundNames(cell))

	if c.handler != nil {
		c.handler(cell)
	}
}

// Install binds this context to the calling goroutine, making it the
// ambient context state creation and mutation report to.
func (c *ExecContext) Install() {
	state.Install(c)
}

// Uninstall removes the calling goroutine's ambient context.
func (c *ExecContext) Uninstall() {
	state.Clear()
}
