// Package observe attaches metrics and tracing to a persistence system.
// Logging is built into the system itself through persistence.WithLogger.
//
// Metrics returns a listener for System.Subscribe. Trace wraps an
// adapter so each storage call becomes a span.
package observe
