// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// EnvironmentVar names the environment variable checked for the
// production JSON-formatter toggle. It matches the PROPS_ENGINE prefix
// used by the config loader so deployments set a single namespace.
const EnvironmentVar = "PROPS_ENGINE_ENVIRONMENT"

// NewLogger creates a new configured logger instance
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(formatterFor(os.Getenv(EnvironmentVar)))

	return logger
}

// formatterFor selects JSON output for production so log aggregators can
// ingest entries, and colored text everywhere else.
func formatterFor(environment string) logrus.Formatter {
	if environment == "production" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	}
}
