// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production). The sync driver reports every skipped row and
// failed batch through this logger, so log output doubles as the run's
// human-readable protocol.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (interactive CLI runs)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Catalog loaded", zap.Int("products", n))
package logger
