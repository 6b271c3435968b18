package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/fanout"
	"github.com/kbukum/codenexus/logger"
	"github.com/kbukum/codenexus/observability"
)

const managerComponent = "manager"

// ManagerStats is a snapshot of the manager-level counters.
type ManagerStats struct {
	TotalPipelines int   `json:"total_pipelines"`
	Processed      int64 `json:"processed"`
	Chained        int64 `json:"chained"`
	Errors         int64 `json:"errors"`
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithWorkers sets how many adapters ProcessData runs at once. Values <= 1 run sequentially.
func WithWorkers(n int) ManagerOption {
	return func(m *Manager) { m.workers = n }
}

// WithManagerLogger overrides the logger. By default the named "manager" logger is used.
func WithManagerLogger(l *logger.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithManagerMetrics overrides the metric instruments.
func WithManagerMetrics(mt *observability.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = mt; m.metricsSet = true }
}

// Manager orchestrates registered adapters in fan-out or chained mode.
type Manager struct {
	mu        sync.RWMutex
	pipelines []Pipeline
	workers   int

	processed atomic.Int64
	chained   atomic.Int64
	errors    atomic.Int64

	log        *logger.Logger
	metrics    *observability.Metrics
	metricsSet bool
}

// NewManager creates a manager with no adapters and zeroed counters.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if !m.metricsSet {
		m.metrics = observability.DefaultMetrics()
	}
	return m
}

// AddPipeline registers an adapter. Registration order is the chaining order.
func (m *Manager) AddPipeline(p Pipeline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines = append(m.pipelines, p)
}

// Pipelines returns the registered adapters in order.
func (m *Manager) Pipelines() []Pipeline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Pipeline, len(m.pipelines))
	copy(out, m.pipelines)
	return out
}

// Pipeline returns the adapter registered under id.
func (m *Manager) Pipeline(id string) (Pipeline, bool) {
	for _, p := range m.Pipelines() {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// ProcessData hands data to every adapter independently and returns their
// reports in registration order. An adapter that panics yields an
// "[ERROR] Pipeline <id> failed: ..." entry and does not affect the others.
func (m *Manager) ProcessData(ctx context.Context, data any) []string {
	ctx = ensureRunID(ctx)
	pipes := m.Pipelines()
	log := m.logger().WithContext(ctx)
	log.Debug("fan-out started", logger.Fields("adapters", len(pipes), "workers", m.workers))

	results := fanout.Run(ctx, m.workers, pipes, func(ctx context.Context, _ int, p Pipeline) (string, error) {
		return p.Process(ctx, data), nil
	})

	reports := fanout.Values(results, func(i int, err error) string {
		m.errors.Add(1)
		m.metrics.RecordPipelineError(ctx, pipes[i].ID(), "adapter")
		log.Error("pipeline failed", logger.Fields(
			logger.FieldPipeline, pipes[i].ID(),
			logger.FieldError, err.Error(),
		))
		return fmt.Sprintf("%s Pipeline %s failed: %v", ErrorTag, pipes[i].ID(), err)
	})
	for _, r := range results {
		if r.Err == nil {
			m.processed.Add(1)
		}
	}
	return reports
}

// ChainPipelines feeds data into the first adapter's stage chain and each
// chain's output into the next one, bypassing the adapters' parsers. It stops
// at the first chain-fatal failure and returns the last successful output
// together with the error.
func (m *Manager) ChainPipelines(ctx context.Context, data any) (any, error) {
	ctx = ensureRunID(ctx)
	ctx, span := observability.StartSpan(ctx, "manager.chain_pipelines")
	log := m.logger().WithContext(ctx)

	result := data
	for _, p := range m.Pipelines() {
		out, err := runChain(ctx, p, result)
		if err != nil {
			m.errors.Add(1)
			log.Error("chain broke", logger.Fields(
				logger.FieldPipeline, p.ID(),
				logger.FieldError, err.Error(),
			))
			span.SetAttributes(attribute.String("nexus.chain.broken_at", p.ID()))
			observability.EndSpan(span, err)
			return result, err
		}
		m.chained.Add(1)
		m.metrics.RecordChained(ctx, p.ID())
		result = out
	}

	log.Info("chain completed", logger.Fields("traversed", len(m.Pipelines())))
	observability.EndSpan(span, nil)
	return result, nil
}

func runChain(ctx context.Context, p Pipeline, in any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, apperrors.ChainFatal(p.ID(), "", fmt.Errorf("panic: %v", r))
		}
	}()
	return p.RunStages(ctx, in)
}

// recoveryStage is the stage reported by SimulateErrorRecovery.
const recoveryStage = 2

// SimulateErrorRecovery raises ErrInvalidDataFormat, recovers from it and
// reports the recovery. Only the errors counter changes.
func (m *Manager) SimulateErrorRecovery(ctx context.Context, data any) string {
	log := m.logger().WithContext(ensureRunID(ctx))
	log.Info("Simulating pipeline failure", logger.Fields("input", describe(data)))

	err := simulatedFailure()
	if !stderrors.Is(err, ErrInvalidDataFormat) {
		return fmt.Sprintf("%s Unexpected failure: %v", ErrorTag, err)
	}
	m.errors.Add(1)

	lines := []string{
		fmt.Sprintf("Error detected in Stage %d: %s", recoveryStage, ErrInvalidDataFormat),
		"Recovery initiated: Switching to backup processor",
		"Recovery successful: Pipeline restored, processing resumed",
	}
	for _, line := range lines {
		log.Info(line, logger.Fields(logger.FieldStage, recoveryStage))
	}
	return strings.Join(lines, "\n")
}

func simulatedFailure() error {
	return fmt.Errorf("stage %d: %w", recoveryStage, ErrInvalidDataFormat)
}

// Stats returns the manager counters.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{
		TotalPipelines: len(m.Pipelines()),
		Processed:      m.processed.Load(),
		Chained:        m.chained.Load(),
		Errors:         m.errors.Load(),
	}
}

// PipelineStats returns every adapter's counters in registration order.
func (m *Manager) PipelineStats() []Stats {
	pipes := m.Pipelines()
	out := make([]Stats, len(pipes))
	for i, p := range pipes {
		out[i] = p.Stats()
	}
	return out
}

func (m *Manager) logger() *logger.Logger {
	if m.log != nil {
		return m.log
	}
	return logger.Get(managerComponent)
}

func ensureRunID(ctx context.Context) context.Context {
	if logger.RunIDFromContext(ctx) != "" {
		return ctx
	}
	return logger.ContextWithRunID(ctx, uuid.NewString())
}
