package stream

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/fanout"
	"github.com/kbukum/codenexus/logger"
	"github.com/kbukum/codenexus/observability"
)

const componentName = "stream"

// errorResultPrefix starts every isolated per-handler failure string.
const errorResultPrefix = "Error processing stream "

// IsErrorResult reports whether a ProcessAll result is an isolated handler failure.
func IsErrorResult(s string) bool {
	return strings.HasPrefix(s, errorResultPrefix)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets how many handlers run at once. Values <= 1 run sequentially.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) { d.workers = n }
}

// WithLogger overrides the logger. By default the named "stream" logger is used.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics overrides the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m; d.metricsSet = true }
}

// Dispatcher applies batches to every registered handler.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	workers  int

	log        *logger.Logger
	metrics    *observability.Metrics
	metricsSet bool
}

// NewDispatcher creates a dispatcher with no handlers.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if !d.metricsSet {
		d.metrics = observability.DefaultMetrics()
	}
	return d
}

// AddHandler registers h. Registration order is the result order.
func (d *Dispatcher) AddHandler(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Handlers returns the registered handlers in order.
func (d *Dispatcher) Handlers() []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Handler, len(d.handlers))
	copy(out, d.handlers)
	return out
}

// ProcessAll applies batch to every handler and returns one result per
// handler in registration order. A failing or panicking handler yields
// "Error processing stream <id>: <reason>" and does not stop the others.
func (d *Dispatcher) ProcessAll(ctx context.Context, batch Batch) []string {
	if logger.RunIDFromContext(ctx) == "" {
		ctx = logger.ContextWithRunID(ctx, uuid.NewString())
	}
	handlers := d.Handlers()
	ctx, span := observability.StartSpan(ctx, "stream.process_all",
		attribute.Int("nexus.handlers", len(handlers)),
		attribute.Int("nexus.batch_size", len(batch)),
	)
	defer span.End()
	log := d.logger().WithContext(ctx)

	results := fanout.Run(ctx, d.workers, handlers, func(ctx context.Context, _ int, h Handler) (string, error) {
		return h.ProcessBatch(ctx, batch)
	})

	failed := 0
	out := fanout.Values(results, func(i int, err error) string {
		failed++
		h := handlers[i]
		appErr := apperrors.HandlerFailed(h.ID(), err)
		log.Warn("stream handler failed", logger.Fields(
			logger.FieldHandler, h.ID(),
			logger.FieldError, appErr.Error(),
			"panicked", results[i].Panicked,
		))
		return fmt.Sprintf("%s%s: %s", errorResultPrefix, h.ID(), reason(err))
	})
	for i, r := range results {
		d.metrics.RecordBatch(ctx, handlers[i].ID(), r.Err == nil)
	}

	log.Debug("batch dispatched", logger.Fields("handlers", len(handlers), "failed", failed))
	span.SetAttributes(attribute.Int("nexus.failed", failed))
	return out
}

func reason(err error) string {
	if pe, ok := err.(*fanout.PanicError); ok {
		return fmt.Sprint(pe.Value)
	}
	return err.Error()
}

// Stats returns every handler's stats in registration order.
func (d *Dispatcher) Stats() []Stats {
	handlers := d.Handlers()
	out := make([]Stats, len(handlers))
	for i, h := range handlers {
		out[i] = h.Stats()
	}
	return out
}

func (d *Dispatcher) logger() *logger.Logger {
	if d.log != nil {
		return d.log
	}
	return logger.Get(componentName)
}
