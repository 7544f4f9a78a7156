// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for scoring operations.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogAnalysis logs a completed prop analysis.
func (al *AnalysisLogger) LogAnalysis(playerID int, playerName, propType string, propLine, projected, confidence float64, recommendation string, durationMs float64) {
	al.WithFields(logrus.Fields{
		"player_id":            playerID,
		"player_name":          playerName,
		"prop_type":            propType,
		"prop_line":            propLine,
		"projected_value":      projected,
		"confidence_score":     confidence,
		"recommendation":       recommendation,
		"analysis_duration_ms": durationMs,
	}).Info("Prop analysis completed")
}

// LogAnalysisFailure logs a failed prop analysis.
func (al *AnalysisLogger) LogAnalysisFailure(playerID int, propType, reason string, err error) {
	al.WithFields(logrus.Fields{
		"player_id": playerID,
		"prop_type": propType,
		"reason":    reason,
	}).WithError(err).Warn("Prop analysis failed")
}

// LogRunSummary logs the outcome of a daily analysis run.
func (al *AnalysisLogger) LogRunSummary(runID string, games, analyzed, failures, picks int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"run_id":          runID,
		"games":           games,
		"props_analyzed":  analyzed,
		"failures":        failures,
		"picks":           picks,
		"run_duration_ms": durationMs,
	}).Info("Daily analysis run completed")
}
