// Package metrics provides the centralized Prometheus metrics registry for
// the props engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "props_engine",
		Name:      "analyses_total",
		Help:      "Total number of prop analyses completed",
	})
	AnalysisFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "props_engine",
		Name:      "analysis_failures_total",
		Help:      "Total number of prop analyses that failed, by reason",
	}, []string{"reason"})
	DailyRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "props_engine",
		Name:      "daily_runs_total",
		Help:      "Total number of daily analysis runs",
	})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "props_engine",
		Name:      "provider_requests_total",
		Help:      "Total number of statistics provider requests by operation and outcome",
	}, []string{"operation", "outcome"})
)

// Gauge metrics
var (
	LastRunPicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "props_engine",
		Name:      "last_run_picks",
		Help:      "Number of picks produced by the most recent daily run",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "props_engine",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed daily run",
	})
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "props_engine",
		Name:      "websocket_clients",
		Help:      "Number of connected websocket stream clients",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "props_engine",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of a single prop analysis in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	DailyRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "props_engine",
		Name:      "daily_run_duration_seconds",
		Help:      "Duration of a full daily analysis run in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "props_engine",
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of statistics provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(AnalysisFailuresTotal)
		registry.MustRegister(DailyRunsTotal)
		registry.MustRegister(ProviderRequestsTotal)

		// Register gauge metrics
		registry.MustRegister(LastRunPicks)
		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(WebsocketClients)

		// Register histogram metrics
		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(DailyRunDuration)
		registry.MustRegister(ProviderRequestDuration)

		// Register analysis outcome metrics
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(ConfidenceScore)
		registry.MustRegister(EdgePct)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAnalysis records a completed prop analysis.
func RecordAnalysis(durationSeconds float64) {
	AnalysesTotal.Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordAnalysisFailure records a failed prop analysis.
func RecordAnalysisFailure(reason string) {
	AnalysisFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordDailyRun records a completed daily run.
func RecordDailyRun(durationSeconds float64, picks int) {
	DailyRunsTotal.Inc()
	DailyRunDuration.Observe(durationSeconds)
	LastRunPicks.Set(float64(picks))
}

// RecordProviderRequest records a statistics provider request.
func RecordProviderRequest(operation, outcome string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(operation, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// UpdateWebsocketClients updates the connected client gauge.
func UpdateWebsocketClients(count float64) {
	WebsocketClients.Set(count)
}
