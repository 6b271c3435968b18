// Package logger provides structured logging for the nexus packages
// using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers resolved by name from a process-wide registry.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Info("stage chain finished", logger.Fields(logger.FieldPipeline, "CSV_001"))
package logger
