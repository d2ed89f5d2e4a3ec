// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the HTTP trigger.
//
// # Context Awareness
//
// The WithRequestID helper extracts the request id stored by the request id middleware
// and attaches it to the log entry, so that all logs of one trigger request can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json or console
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Partitions created", zap.Int("count", n))
//
//	// In a request handler:
//	l := logger.WithRequestID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
