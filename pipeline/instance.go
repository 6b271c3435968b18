package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
	"github.com/kbukum/codenexus/observability"
)

const componentName = "pipeline"

// Stats is a snapshot of an Instance's counters.
type Stats struct {
	PipelineID  string `json:"pipeline_id"`
	StagesCount int    `json:"stages_count"`
	StagesRun   int64  `json:"stages_run"`
	Errors      int64  `json:"errors"`
	Processed   int64  `json:"processed"`
}

// Option configures an Instance.
type Option func(*Instance)

// WithLogger overrides the logger. By default the named "pipeline" logger is used.
func WithLogger(l *logger.Logger) Option {
	return func(p *Instance) { p.log = l }
}

// WithMetrics overrides the metric instruments. By default observability.DefaultMetrics is used.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Instance) { p.metrics = m; p.metricsSet = true }
}

// WithStages registers stages at construction, before any run.
func WithStages(stages ...Stage) Option {
	return func(p *Instance) { p.stages = append(p.stages, stages...) }
}

// Instance drives an ordered stage chain and keeps its counters.
// The stage list may grow until the first RunStages call and is fixed afterwards.
type Instance struct {
	id string

	mu     sync.RWMutex
	stages []Stage
	frozen bool

	stagesRun atomic.Int64
	errors    atomic.Int64
	processed atomic.Int64

	log        *logger.Logger
	metrics    *observability.Metrics
	metricsSet bool
}

// NewInstance creates a stage chain driver with zeroed counters.
func NewInstance(id string, opts ...Option) *Instance {
	p := &Instance{id: id}
	for _, opt := range opts {
		opt(p)
	}
	if !p.metricsSet {
		p.metrics = observability.DefaultMetrics()
	}
	return p
}

// ID returns the pipeline identifier.
func (p *Instance) ID() string { return p.id }

// AddStage appends a stage. It fails with ErrStagesFrozen once the chain has run.
func (p *Instance) AddStage(s Stage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return apperrors.New(apperrors.ErrCodeStagesFrozen, "cannot add stage "+s.Name()).
			WithDetail("pipeline", p.id).
			WithCause(ErrStagesFrozen)
	}
	p.stages = append(p.stages, s)
	return nil
}

// Stages returns a copy of the registered stages.
func (p *Instance) Stages() []Stage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// RunStages feeds in through every stage in order. When a stage returns an
// error or panics the chain stops, the errors counter is incremented and a
// "[ERROR] Stage failed: ..." report is returned together with a CHAIN_FATAL error.
func (p *Instance) RunStages(ctx context.Context, in any) (any, error) {
	p.mu.Lock()
	p.frozen = true
	stages := p.stages
	p.mu.Unlock()

	ctx, span := observability.StartSpan(ctx, "pipeline.run_stages",
		attribute.String(observability.AttrPipeline, p.id),
		attribute.Int("nexus.stages", len(stages)),
	)

	result := in
	for _, st := range stages {
		start := time.Now()
		out, err := invoke(ctx, st, result)
		if err != nil {
			p.errors.Add(1)
			p.metrics.RecordPipelineError(ctx, p.id, "chain")
			fatal := apperrors.ChainFatal(p.id, st.Name(), err)
			p.logger().WithContext(ctx).Warn("stage chain aborted", logger.Fields(
				logger.FieldStage, st.Name(),
				logger.FieldError, err.Error(),
			))
			observability.EndSpan(span, fatal)
			return fmt.Sprintf("%s Stage failed: %s", ErrorTag, err), fatal
		}
		p.stagesRun.Add(1)
		p.metrics.RecordStage(ctx, p.id, st.Name(), time.Since(start))
		result = out
	}

	observability.EndSpan(span, nil)
	return result, nil
}

// invoke runs one stage, converting a panic into an error.
func invoke(ctx context.Context, st Stage, in any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic in stage %s: %v", st.Name(), r)
		}
	}()
	return st.Process(ctx, in)
}

// Stats returns a snapshot of the counters.
func (p *Instance) Stats() Stats {
	p.mu.RLock()
	n := len(p.stages)
	p.mu.RUnlock()
	return Stats{
		PipelineID:  p.id,
		StagesCount: n,
		StagesRun:   p.stagesRun.Load(),
		Errors:      p.errors.Load(),
		Processed:   p.processed.Load(),
	}
}

func (p *Instance) logger() *logger.Logger {
	if p.log != nil {
		return p.log.WithFields(logger.Fields(logger.FieldPipeline, p.id))
	}
	return logger.Get(componentName).WithFields(logger.Fields(logger.FieldPipeline, p.id))
}
