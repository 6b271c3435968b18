// Package stream applies one raw batch to a set of heterogeneous handlers.
//
// Handlers (sensor, transaction, event) each summarize the same Batch in
// their own domain and keep cumulative counters. The Dispatcher runs every
// registered handler and isolates failures: a handler that errors or panics
// yields "Error processing stream <id>: <reason>" in its result slot while
// the others still run. Results are always in registration order, including
// when handlers run concurrently.
package stream
