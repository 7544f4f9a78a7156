// Package logger provides provider-boundary logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ProviderLogger provides dedicated logging for statistics provider calls.
type ProviderLogger struct {
	*logrus.Entry
}

// NewProviderLogger creates a new provider logger.
func NewProviderLogger(baseLogger *logrus.Logger) *ProviderLogger {
	return &ProviderLogger{
		Entry: baseLogger.WithField("component", "provider"),
	}
}

// LogRequest logs a provider request outcome.
func (pl *ProviderLogger) LogRequest(provider, operation string, statusCode int, durationMs float64, cacheHit bool) {
	pl.WithFields(logrus.Fields{
		"provider":            provider,
		"operation":           operation,
		"status_code":         statusCode,
		"request_duration_ms": durationMs,
		"cache_hit":           cacheHit,
	}).Debug("Provider request completed")
}

// LogRateLimited logs a throttled provider request.
func (pl *ProviderLogger) LogRateLimited(provider, operation string, retryAfterMs float64) {
	pl.WithFields(logrus.Fields{
		"provider":       provider,
		"operation":      operation,
		"retry_after_ms": retryAfterMs,
	}).Warn("Provider request rate limited")
}

// LogCircuitBreaker logs circuit breaker state changes at the provider
// boundary.
func (pl *ProviderLogger) LogCircuitBreaker(provider, state string, consecutiveErrors int) {
	pl.WithFields(logrus.Fields{
		"provider":           provider,
		"state":              state,
		"consecutive_errors": consecutiveErrors,
	}).Warn("Provider circuit breaker state changed")
}
