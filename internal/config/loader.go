// Package config provides configuration management for the props engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "PROPS_ENGINE"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. A missing config file is not an error; defaults and environment
// variables alone produce a runnable configuration.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration from the path named by
// PROPS_ENGINE_CONFIG_PATH, if set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers the full production default configuration so the
// engine runs with no config file at all
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "props-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("provider.base_url", "https://api.nbadata.net/v1")
	v.SetDefault("provider.timeout_seconds", 30)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.retry_wait_min_millis", 250)
	v.SetDefault("provider.retry_wait_max_millis", 8000)
	v.SetDefault("provider.rate_limit_per_second", 4.0)
	v.SetDefault("provider.circuit_breaker_max", 5)
	v.SetDefault("provider.cache.game_log_ttl_minutes", 30)
	v.SetDefault("provider.cache.team_context_ttl_minutes", 60)
	v.SetDefault("provider.cache.schedule_ttl_minutes", 15)
	v.SetDefault("provider.cache.lookup_ttl_hours", 24)

	v.SetDefault("scoring.weights", map[string]float64{
		"recent_form":      0.25,
		"opponent_matchup": 0.20,
		"home_away_split":  0.15,
		"opponent_defense": 0.20,
		"pace_factor":      0.10,
		"usage_factor":     0.10,
	})
	v.SetDefault("scoring.recent_window_size", 10)
	v.SetDefault("scoring.min_games_for_matchup", 3)
	v.SetDefault("scoring.min_games_for_split", 3)
	v.SetDefault("scoring.line_band_pct", 0.2)
	v.SetDefault("scoring.pace_reference_range.lo", 90.0)
	v.SetDefault("scoring.pace_reference_range.hi", 110.0)
	v.SetDefault("scoring.rank_reference_range.lo", 1.0)
	v.SetDefault("scoring.rank_reference_range.hi", 30.0)
	v.SetDefault("scoring.usage_minutes_range.lo", 20.0)
	v.SetDefault("scoring.usage_minutes_range.hi", 40.0)
	v.SetDefault("scoring.trend_tolerance", 0.1)
	v.SetDefault("scoring.trend_bonus", 0.05)
	v.SetDefault("scoring.projection_sensitivity", 0.4)
	v.SetDefault("scoring.confidence_thresholds", []float64{0.75, 0.65, 0.55})
	v.SetDefault("scoring.edge_thresholds", []float64{15, 10})

	v.SetDefault("analysis.prop_types", []string{"points", "rebounds", "assists", "threes"})
	v.SetDefault("analysis.min_confidence", 0.55)
	v.SetDefault("analysis.top_n", 20)
	v.SetDefault("analysis.players_per_team", 8)
	v.SetDefault("analysis.export_dir", "picks")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 300)
	v.SetDefault("server.idle_timeout_seconds", 60)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron_expression", "0 10 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", "8081")
}
