package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected logrus.Level
	}{
		{"debug level", "debug", logrus.DebugLevel},
		{"info level", "info", logrus.InfoLevel},
		{"warn level", "warn", logrus.WarnLevel},
		{"invalid defaults to info", "loud", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewLogger(tt.level)
			assert.Equal(t, tt.expected, log.GetLevel())
		})
	}
}

func TestNewLoggerFormatter(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses JSON", "production", true},
		{"development uses text", "development", false},
		{"unset uses text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvironmentVar, tt.environment)

			log := NewLogger("info")
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestAnalysisLoggerAnalysis(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogAnalysis(
		201939,
		"Stephen Curry",
		"points",
		27.5,
		30.3,
		0.73,
		"OVER",
		12.5,
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "analysis", logEntry["component"])
	assert.Equal(t, "Stephen Curry", logEntry["player_name"])
	assert.Equal(t, "OVER", logEntry["recommendation"])
	assert.Equal(t, 0.73, logEntry["confidence_score"])
}

func TestAnalysisLoggerRunSummary(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogRunSummary("run-1", 8, 120, 5, 15, 42000)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run-1", logEntry["run_id"])
	assert.Equal(t, float64(15), logEntry["picks"])
}

func TestProviderLoggerRequest(t *testing.T) {
	log, buf := setupTestLogger()
	providerLogger := NewProviderLogger(log)

	providerLogger.LogRequest("nbadata", "recent_games", 200, 85.2, false)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "provider", logEntry["component"])
	assert.Equal(t, "recent_games", logEntry["operation"])
	assert.Equal(t, false, logEntry["cache_hit"])
}

func TestPicksLoggerPick(t *testing.T) {
	log, buf := setupTestLogger()
	picksLogger := NewPicksLogger(log)

	generatedAt := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	picksLogger.LogPick("run-1", 201939, "Stephen Curry", "points",
		27.5, 30.3, 10.2, 0.73, "OVER", generatedAt)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "picks", logEntry["component"])
	assert.Equal(t, "points", logEntry["prop_type"])
	assert.Equal(t, float64(generatedAt.Unix()), logEntry["generated_at"])
}
