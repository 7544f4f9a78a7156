// Package metrics defines analysis-outcome metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis-outcome counter vectors
var (
	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "props_engine",
		Name:      "recommendations_total",
		Help:      "Total number of recommendations by prop type and label",
	}, []string{"prop_type", "recommendation"})
)

// Analysis-outcome histogram vectors
var (
	ConfidenceScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "props_engine",
		Name:      "confidence_score",
		Help:      "Confidence scores of completed analyses",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"prop_type"})

	EdgePct = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "props_engine",
		Name:      "edge_pct",
		Help:      "Absolute edge percentage of completed analyses",
		Buckets:   []float64{1, 2.5, 5, 10, 15, 20, 30, 50},
	}, []string{"prop_type"})
)

// RecordRecommendation records the outcome of one analysis.
func RecordRecommendation(propType, recommendation string, confidence, absEdgePct float64) {
	RecommendationsTotal.WithLabelValues(propType, recommendation).Inc()
	ConfidenceScore.WithLabelValues(propType).Observe(confidence)
	EdgePct.WithLabelValues(propType).Observe(absEdgePct)
}
