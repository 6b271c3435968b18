package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordStage(ctx, "json_pipeline", "input", time.Millisecond)
	metrics.RecordPipelineError(ctx, "json_pipeline", "parse")
	metrics.RecordProcessed(ctx, "json_pipeline")
	metrics.RecordChained(ctx, "json_pipeline")
	metrics.RecordBatch(ctx, "sensor_stream", true)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordStage(ctx, "p", "s", time.Millisecond)
	m.RecordPipelineError(ctx, "p", "chain")
	m.RecordProcessed(ctx, "p")
	m.RecordChained(ctx, "p")
	m.RecordBatch(ctx, "h", false)
}

func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordStage(ctx, "csv_pipeline", "input", time.Millisecond)
	metrics.RecordStage(ctx, "csv_pipeline", "transform", time.Millisecond)
	metrics.RecordPipelineError(ctx, "csv_pipeline", "parse")
	metrics.RecordProcessed(ctx, "csv_pipeline")
	metrics.RecordChained(ctx, "csv_pipeline")
	metrics.RecordChained(ctx, "json_pipeline")
	metrics.RecordBatch(ctx, "event_stream", false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	cases := map[string]int64{
		"nexus.stage.runs":         2,
		"nexus.pipeline.errors":    1,
		"nexus.pipeline.processed": 1,
		"nexus.manager.chained":    2,
		"nexus.stream.batches":     1,
	}
	for name, want := range cases {
		if got := sumFor(t, rm, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := StartSpan(context.Background(), "pipeline.run", attribute.String(AttrPipeline, "json_pipeline"))
	EndSpan(span, nil)

	_, failed := StartSpan(context.Background(), "pipeline.run")
	EndSpan(failed, errors.New("stage exploded"))

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "pipeline.run" {
		t.Errorf("expected span name 'pipeline.run', got %s", spans[0].Name)
	}
	if len(spans[0].Attributes) != 1 || spans[0].Attributes[0].Value.AsString() != "json_pipeline" {
		t.Errorf("unexpected attributes %v", spans[0].Attributes)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[1].Status.Code)
	}
	if len(spans[1].Events) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(1.0).Description(); got != sdktrace.AlwaysSample().Description() {
		t.Errorf("sampler(1.0) = %s", got)
	}
	if got := sampler(0).Description(); got != sdktrace.NeverSample().Description() {
		t.Errorf("sampler(0) = %s", got)
	}
	if got := sampler(0.5).Description(); got != sdktrace.TraceIDRatioBased(0.5).Description() {
		t.Errorf("sampler(0.5) = %s", got)
	}
}
