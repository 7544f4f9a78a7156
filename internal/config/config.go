// Package config provides configuration management for the props engine.
package config

import (
	"time"

	"github.com/davorpavlov/props-engine/internal/analysis"
	"github.com/davorpavlov/props-engine/internal/models"
	"github.com/davorpavlov/props-engine/internal/nbastats"
	"github.com/davorpavlov/props-engine/internal/scoring"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Provider  ProviderConfig  `mapstructure:"provider" validate:"required"`
	Scoring   ScoringConfig   `mapstructure:"scoring" validate:"required"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ProviderConfig represents the stats provider API configuration
type ProviderConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMinMillis int     `mapstructure:"retry_wait_min_millis" validate:"required,gt=0"`
	RetryWaitMaxMillis int     `mapstructure:"retry_wait_max_millis" validate:"required,gt=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CircuitBreakerMax  int     `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`

	Cache ProviderCacheConfig `mapstructure:"cache" validate:"required"`
}

// ProviderCacheConfig represents response cache TTLs per data class
type ProviderCacheConfig struct {
	GameLogTTLMinutes     int `mapstructure:"game_log_ttl_minutes" validate:"required,gt=0"`
	TeamContextTTLMinutes int `mapstructure:"team_context_ttl_minutes" validate:"required,gt=0"`
	ScheduleTTLMinutes    int `mapstructure:"schedule_ttl_minutes" validate:"required,gt=0"`
	LookupTTLHours        int `mapstructure:"lookup_ttl_hours" validate:"required,gt=0"`
}

// RangeConfig is an inclusive [lo, hi] normalization interval
type RangeConfig struct {
	Lo float64 `mapstructure:"lo"`
	Hi float64 `mapstructure:"hi"`
}

// ScoringConfig represents the scoring model configuration
type ScoringConfig struct {
	Weights               map[string]float64 `mapstructure:"weights" validate:"required,min=1"`
	RecentWindowSize      int                `mapstructure:"recent_window_size" validate:"required,gt=0"`
	MinGamesForMatchup    int                `mapstructure:"min_games_for_matchup" validate:"required,gt=0"`
	MinGamesForSplit      int                `mapstructure:"min_games_for_split" validate:"required,gt=0"`
	LineBandPct           float64            `mapstructure:"line_band_pct" validate:"required,gt=0,lt=1"`
	PaceReferenceRange    RangeConfig        `mapstructure:"pace_reference_range"`
	RankReferenceRange    RangeConfig        `mapstructure:"rank_reference_range"`
	UsageMinutesRange     RangeConfig        `mapstructure:"usage_minutes_range"`
	TrendTolerance        float64            `mapstructure:"trend_tolerance" validate:"required,gt=0"`
	TrendBonus            float64            `mapstructure:"trend_bonus" validate:"gte=0"`
	ProjectionSensitivity float64            `mapstructure:"projection_sensitivity" validate:"required,gt=0,lte=1"`
	ConfidenceThresholds  []float64          `mapstructure:"confidence_thresholds" validate:"required,len=3"`
	EdgeThresholds        []float64          `mapstructure:"edge_thresholds" validate:"required,len=2"`
}

// AnalysisConfig represents daily run configuration
type AnalysisConfig struct {
	PropTypes      []string `mapstructure:"prop_types" validate:"required,min=1,proptypes"`
	MinConfidence  float64  `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
	TopN           int      `mapstructure:"top_n" validate:"gte=0"`
	PlayersPerTeam int      `mapstructure:"players_per_team" validate:"required,gt=0"`
	ExportDir      string   `mapstructure:"export_dir"`
}

// ServerConfig represents HTTP API server configuration
type ServerConfig struct {
	Host                string `mapstructure:"host" validate:"required"`
	Port                int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds" validate:"required,gt=0"`
}

// SchedulerConfig represents the daily analysis scheduler configuration
type SchedulerConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	CronExpression string `mapstructure:"cron_expression"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// HTTPClientConfig converts the provider section into the stats client's
// transport configuration
func (c *Config) HTTPClientConfig() nbastats.HTTPClientConfig {
	return nbastats.HTTPClientConfig{
		Timeout:           time.Duration(c.Provider.TimeoutSeconds) * time.Second,
		MaxRetries:        c.Provider.MaxRetries,
		RetryWaitMin:      time.Duration(c.Provider.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax:      time.Duration(c.Provider.RetryWaitMaxMillis) * time.Millisecond,
		RateLimit:         c.Provider.RateLimitPerSecond,
		CircuitBreakerMax: c.Provider.CircuitBreakerMax,
	}
}

// CacheConfig converts the provider cache section into the stats cache TTLs
func (c *Config) CacheConfig() nbastats.CacheConfig {
	return nbastats.CacheConfig{
		GameLogTTL:     time.Duration(c.Provider.Cache.GameLogTTLMinutes) * time.Minute,
		TeamContextTTL: time.Duration(c.Provider.Cache.TeamContextTTLMinutes) * time.Minute,
		ScheduleTTL:    time.Duration(c.Provider.Cache.ScheduleTTLMinutes) * time.Minute,
		LookupTTL:      time.Duration(c.Provider.Cache.LookupTTLHours) * time.Hour,
	}
}

// ScoringModelConfig converts the scoring section into the engine's
// configuration. Factor names in the weights map must already have been
// validated.
func (c *Config) ScoringModelConfig() scoring.Config {
	weights := make(map[models.Factor]float64, len(c.Scoring.Weights))
	for name, w := range c.Scoring.Weights {
		weights[models.Factor(name)] = w
	}
	return scoring.Config{
		Weights:               weights,
		RecentWindowSize:      c.Scoring.RecentWindowSize,
		MinGamesForMatchup:    c.Scoring.MinGamesForMatchup,
		MinGamesForSplit:      c.Scoring.MinGamesForSplit,
		LineBandPct:           c.Scoring.LineBandPct,
		PaceReferenceRange:    scoring.Range{Lo: c.Scoring.PaceReferenceRange.Lo, Hi: c.Scoring.PaceReferenceRange.Hi},
		RankReferenceRange:    scoring.Range{Lo: c.Scoring.RankReferenceRange.Lo, Hi: c.Scoring.RankReferenceRange.Hi},
		UsageMinutesRange:     scoring.Range{Lo: c.Scoring.UsageMinutesRange.Lo, Hi: c.Scoring.UsageMinutesRange.Hi},
		TrendTolerance:        c.Scoring.TrendTolerance,
		TrendBonus:            c.Scoring.TrendBonus,
		ProjectionSensitivity: c.Scoring.ProjectionSensitivity,
		ConfidenceThresholds:  append([]float64(nil), c.Scoring.ConfidenceThresholds...),
		EdgeThresholds:        append([]float64(nil), c.Scoring.EdgeThresholds...),
	}
}

// AnalysisRunConfig converts the analysis section into the service's run
// configuration
func (c *Config) AnalysisRunConfig() analysis.Config {
	propTypes := make([]models.PropType, 0, len(c.Analysis.PropTypes))
	for _, p := range c.Analysis.PropTypes {
		propTypes = append(propTypes, models.PropType(p))
	}
	return analysis.Config{
		PropTypes:      propTypes,
		MinConfidence:  c.Analysis.MinConfidence,
		TopN:           c.Analysis.TopN,
		PlayersPerTeam: c.Analysis.PlayersPerTeam,
	}
}

// ReadTimeout returns the server read timeout as a duration
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout as a duration
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the server idle timeout as a duration
func (c *ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}
