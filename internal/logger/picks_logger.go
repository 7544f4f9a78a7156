// Package logger provides pick audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PicksLogger provides a dedicated audit trail of reported picks, so every
// recommendation that left the system can be reconstructed from logs.
type PicksLogger struct {
	*logrus.Entry
}

// NewPicksLogger creates a new picks logger.
func NewPicksLogger(baseLogger *logrus.Logger) *PicksLogger {
	return &PicksLogger{
		Entry: baseLogger.WithField("component", "picks"),
	}
}

// LogPick logs one reported pick.
func (pl *PicksLogger) LogPick(runID string, playerID int, playerName, propType string, propLine, projected, edgePct, confidence float64, recommendation string, generatedAt time.Time) {
	pl.WithFields(logrus.Fields{
		"run_id":           runID,
		"player_id":        playerID,
		"player_name":      playerName,
		"prop_type":        propType,
		"prop_line":        propLine,
		"projected_value":  projected,
		"edge_pct":         edgePct,
		"confidence_score": confidence,
		"recommendation":   recommendation,
		"generated_at":     generatedAt.Unix(),
	}).Info("Pick reported")
}

// LogExport logs a run export artifact.
func (pl *PicksLogger) LogExport(runID, format, path string, picks int) {
	pl.WithFields(logrus.Fields{
		"run_id": runID,
		"format": format,
		"path":   path,
		"picks":  picks,
	}).Info("Run exported")
}
