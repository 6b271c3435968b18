// Package component defines the lifecycle contract shared by the nexus
// runtime pieces (the pipeline manager, the stream dispatcher and the HTTP
// server) and a Registry that starts them in order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line startup summary
package component
