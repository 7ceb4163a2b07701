// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and both console and JSON output.
//
// # Run Awareness
//
// A single invocation processes several cleaning runs. WithRun attaches the run's
// index and name to a logger so that every entry produced while processing a run
// can be attributed to it.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Cleaning started")
//
//	l := logger.WithRun(log, 0, "my-schema")
//	l.Error("Run failed", zap.Error(err))
package logger
