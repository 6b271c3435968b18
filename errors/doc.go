// Package errors provides the structured error type shared by the pipeline,
// stream and server packages. Every recoverable failure class of the nexus
// core carries a machine-readable code so callers can branch on it without
// parsing report strings.
package errors
