// Package logger provides a structured logging facility based on Zap.
//
// New builds the application logger from Config (level and json/console format).
// Components receive the *zap.Logger explicitly; there is no global logger.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so all logs of one request (including the reconciliation run it
// triggers) can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
