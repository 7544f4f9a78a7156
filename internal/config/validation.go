// Package config provides configuration management for the props engine.
package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/davorpavlov/props-engine/internal/models"
)

// weightSumTolerance bounds how far factor weights may drift from 1.0
const weightSumTolerance = 1e-6

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("proptypes", validatePropTypes)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validatePropTypes validates the analyzed prop type list
func validatePropTypes(fl validator.FieldLevel) bool {
	propTypes, ok := fl.Field().Interface().([]string)
	if !ok || len(propTypes) == 0 {
		return false
	}

	for _, p := range propTypes {
		if !models.PropType(p).IsValid() {
			return false
		}
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Weights must name exactly the supported factors and sum to 1.0
	factors := models.AllFactors()
	if len(cfg.Scoring.Weights) != len(factors) {
		return fmt.Errorf("scoring weights must name exactly %d factors, got %d", len(factors), len(cfg.Scoring.Weights))
	}

	sum := 0.0
	for _, factor := range factors {
		w, ok := cfg.Scoring.Weights[string(factor)]
		if !ok {
			return fmt.Errorf("scoring weights missing factor %q", factor)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("scoring weight for %q must be between 0 and 1, got %v", factor, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", sum)
	}

	if err := requireStrictlyDescending("confidence_thresholds", cfg.Scoring.ConfidenceThresholds); err != nil {
		return err
	}
	if err := requireStrictlyDescending("edge_thresholds", cfg.Scoring.EdgeThresholds); err != nil {
		return err
	}

	if cfg.Provider.RetryWaitMinMillis > cfg.Provider.RetryWaitMaxMillis {
		return fmt.Errorf("provider retry_wait_min_millis cannot exceed retry_wait_max_millis")
	}

	if cfg.Scheduler.Enabled {
		if _, err := cron.ParseStandard(cfg.Scheduler.CronExpression); err != nil {
			return fmt.Errorf("invalid scheduler cron_expression %q: %w", cfg.Scheduler.CronExpression, err)
		}
	}

	return nil
}

// requireStrictlyDescending checks that a threshold list is ordered so the
// recommendation rules are evaluated most demanding first
func requireStrictlyDescending(name string, values []float64) error {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return fmt.Errorf("scoring %s must be strictly descending, got %v", name, values)
		}
	}
	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max", "len":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "proptypes":
			errMsg += fmt.Sprintf("- Field '%s' must list supported prop types only\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Provider.APIKey == "" {
			return fmt.Errorf("production environment requires a provider API key")
		}
		if isTestCredential(cfg.Provider.APIKey) {
			return fmt.Errorf("production environment should not use a test provider API key")
		}
	}

	return nil
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
