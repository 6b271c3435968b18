package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/codenexus/pipeline"
	"github.com/kbukum/codenexus/processor"
	"github.com/kbukum/codenexus/stream"
)

func runDemos(ctx context.Context, w io.Writer, m *pipeline.Manager, d *stream.Dispatcher) {
	processorDemo(w)
	streamDemo(ctx, w, d)
	pipelineDemo(ctx, w, m)
}

func processorDemo(w io.Writer) {
	fmt.Fprintln(w, "=== CODE NEXUS - DATA PROCESSOR FOUNDATION ===")
	fmt.Fprintln(w)
	inputs := []struct {
		p    processor.Processor
		data any
	}{
		{processor.Numeric{}, []int{1, 2, 3, 4, 5}},
		{processor.Text{}, "Hello Nexus World"},
		{processor.Log{}, map[string]string{"message": "Connection timeout", "type": "ERROR"}},
	}
	for i, in := range inputs {
		fmt.Fprintf(w, "Result %d: %s\n", i+1, processor.Run(in.p, in.data))
	}
	fmt.Fprintln(w)
}

func streamDemo(ctx context.Context, w io.Writer, d *stream.Dispatcher) {
	fmt.Fprintln(w, "=== CODE NEXUS - POLYMORPHIC STREAM SYSTEM ===")
	fmt.Fprintln(w)

	batch := stream.Batch{
		"temp:18.0", "temp:21.0",
		"buy:100", "sell:50", "buy:200", "buy:75",
		"login", "error", "logout",
	}
	results := d.ProcessAll(ctx, batch)

	fmt.Fprintln(w, "Batch 1 Results:")
	ok := true
	for i, h := range d.Handlers() {
		fmt.Fprintf(w, "- %s [%s]: %s\n", h.ID(), h.Type(), results[i])
		ok = ok && !stream.IsErrorResult(results[i])
	}
	fmt.Fprintln(w)

	var sensorAlerts, largeTx int
	for _, h := range d.Handlers() {
		switch h.(type) {
		case *stream.SensorHandler:
			sensorAlerts = len(h.FilterData(batch, stream.CriteriaTemp))
		case *stream.TransactionHandler:
			largeTx = len(h.FilterData(batch, stream.CriteriaLarge))
		}
	}
	fmt.Fprintln(w, "Stream filtering active: High-priority data only")
	fmt.Fprintf(w, "Filtered results: %d critical sensor alerts, %d large transaction\n", sensorAlerts, largeTx)
	if ok {
		fmt.Fprintln(w, "All streams processed successfully. Nexus throughput optimal")
	}
	fmt.Fprintln(w)
}

func pipelineDemo(ctx context.Context, w io.Writer, m *pipeline.Manager) {
	fmt.Fprintln(w, "=== CODE NEXUS - ENTERPRISE PIPELINE SYSTEM ===")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Multi-Format Data Processing ===")

	inputs := map[string]any{
		pipeline.FormatJSON:   pipeline.Mapping{{Key: "sensor", Value: "temp"}, {Key: "value", Value: 23.5}, {Key: "unit", Value: "C"}},
		pipeline.FormatCSV:    "user,action,timestamp",
		pipeline.FormatStream: []float64{22.5, 21.0, 22.1, 22.8, 21.9},
	}
	for _, p := range m.Pipelines() {
		in, found := inputs[p.Format()]
		if !found {
			continue
		}
		fmt.Fprintf(w, "%s:\n%s\n\n", p.ID(), p.Process(ctx, in))
	}

	fmt.Fprintln(w, "=== Manager Fan-out ===")
	for i, report := range m.ProcessData(ctx, inputs[pipeline.FormatCSV]) {
		fmt.Fprintf(w, "%s -> %s\n", m.Pipelines()[i].ID(), firstLine(report))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Pipeline Chaining Demo ===")
	out, err := m.ChainPipelines(ctx, inputs[pipeline.FormatJSON])
	if err != nil {
		fmt.Fprintf(w, "Chain broke: %v\n", err)
	}
	fmt.Fprintf(w, "Chain result:\n%v\n\n", out)

	fmt.Fprintln(w, "=== Error Recovery Test ===")
	fmt.Fprintln(w, m.SimulateErrorRecovery(ctx, inputs[pipeline.FormatJSON]))
	fmt.Fprintln(w)

	s := m.Stats()
	fmt.Fprintf(w, "Manager stats: %d pipelines, %d processed, %d chained, %d errors\n",
		s.TotalPipelines, s.Processed, s.Chained, s.Errors)
	if s.Chained == int64(s.TotalPipelines) {
		fmt.Fprintln(w, "Nexus Integration complete. All systems operational.")
	}
	fmt.Fprintln(w, strings.Repeat("=", 48))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
