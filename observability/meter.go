package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/codenexus/logger"
)

const instrumentationName = "github.com/kbukum/codenexus"

// Attribute keys shared by metrics and spans.
const (
	AttrPipeline = "nexus.pipeline"
	AttrStage    = "nexus.stage"
	AttrHandler  = "nexus.handler"
	AttrStatus   = "nexus.status"
	AttrErrKind  = "nexus.error_kind"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider with an OTLP exporter.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by pipelines, the manager and stream handlers.
// A nil *Metrics records nothing.
type Metrics struct {
	stageRuns      metric.Int64Counter
	stageDuration  metric.Float64Histogram
	pipelineErrors metric.Int64Counter
	processed      metric.Int64Counter
	chained        metric.Int64Counter
	batches        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stageRuns, err := meter.Int64Counter("nexus.stage.runs",
		metric.WithDescription("Stages successfully invoked by a stage chain"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nexus.stage.runs counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("nexus.stage.duration",
		metric.WithDescription("Duration of a single stage invocation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nexus.stage.duration histogram: %w", err)
	}

	pipelineErrors, err := meter.Int64Counter("nexus.pipeline.errors",
		metric.WithDescription("Parse and chain-fatal errors by pipeline"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nexus.pipeline.errors counter: %w", err)
	}

	processed, err := meter.Int64Counter("nexus.pipeline.processed",
		metric.WithDescription("Adapter process calls that completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nexus.pipeline.processed counter: %w", err)
	}

	chained, err := meter.Int64Counter("nexus.manager.chained",
		metric.WithDescription("Pipelines traversed by chain runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nexus.manager.chained counter: %w", err)
	}

	batches, err := meter.Int64Counter("nexus.stream.batches",
		metric.WithDescription("Batches applied to stream handlers by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nexus.stream.batches counter: %w", err)
	}

	return &Metrics{
		stageRuns:      stageRuns,
		stageDuration:  stageDuration,
		pipelineErrors: pipelineErrors,
		processed:      processed,
		chained:        chained,
		batches:        batches,
	}, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// DefaultMetrics returns instruments bound to the global meter provider.
// Instruments created before InitMeter forward to the provider installed later.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(Meter(instrumentationName))
		if err != nil {
			logger.Warn("metrics disabled", logger.ErrorFields("new_metrics", err))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordStage records one successful stage invocation.
func (m *Metrics) RecordStage(ctx context.Context, pipeline, stage string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrStage, stage),
	)
	m.stageRuns.Add(ctx, 1, attrs)
	m.stageDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordPipelineError records a parse or chain-fatal error.
func (m *Metrics) RecordPipelineError(ctx context.Context, pipeline, kind string) {
	if m == nil {
		return
	}
	m.pipelineErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrErrKind, kind),
	))
}

// RecordProcessed records a completed adapter process call.
func (m *Metrics) RecordProcessed(ctx context.Context, pipeline string) {
	if m == nil {
		return
	}
	m.processed.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrPipeline, pipeline)))
}

// RecordChained records a pipeline traversed during a chain run.
func (m *Metrics) RecordChained(ctx context.Context, pipeline string) {
	if m == nil {
		return
	}
	m.chained.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrPipeline, pipeline)))
}

// RecordBatch records a batch applied to a stream handler.
func (m *Metrics) RecordBatch(ctx context.Context, handler string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.batches.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrHandler, handler),
		attribute.String(AttrStatus, status),
	))
}
