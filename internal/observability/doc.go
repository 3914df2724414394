// Package observability provides structured logging and metrics
// for the AI gateway.
//
// This package implements:
//   - zap logger construction with request ID propagation
//   - Prometheus collectors for provider attempts and orchestrated requests
//   - A no-op Metrics implementation for tests and disabled metrics
package observability
