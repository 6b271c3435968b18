// Package observability wires OpenTelemetry into the nexus core.
//
// Metrics records stage runs, chain failures, adapter throughput and stream
// handler batches. Spans are started around every stage chain run and every
// dispatcher fan-out. Without InitMeter/InitTracer the global otel providers
// are no-ops, so instrumentation costs nothing in tests and library use.
package observability
