// Package scoring implements the confidence scoring model for player props.
// The model combines six weighted factor scores computed from historical
// game data into a single confidence value, a projected stat value, and an
// over/under recommendation.
package scoring

import (
	"fmt"
	"math"

	"github.com/davorpavlov/props-engine/internal/models"
)

// weightEpsilon is the tolerance used when checking that weights sum to 1.0
const weightEpsilon = 1e-6

// Blend weights inside the recent form factor: normalized average versus
// consistency fraction.
const (
	formAvgWeight         = 0.6
	formConsistencyWeight = 0.4
)

// neutralScore is the score assigned when a factor has no signal
const neutralScore = 0.5

// Range is an inclusive [Lo, Hi] reference interval for normalization
type Range struct {
	Lo float64 `mapstructure:"lo" json:"lo"`
	Hi float64 `mapstructure:"hi" json:"hi"`
}

// Config is the immutable configuration for the scoring model. A single
// Config value is validated once at load time and shared by every analysis;
// nothing in the engine mutates it.
type Config struct {
	// Weights maps each of the six factors to its share of the confidence
	// score. The weights must sum to exactly 1.0 within 1e-6.
	Weights map[models.Factor]float64 `mapstructure:"weights"`

	// RecentWindowSize is the number of most recent games the form window
	// covers. The engine fetches twice this many games so that splits and
	// usage baselines have extra history to draw on.
	RecentWindowSize int `mapstructure:"recent_window_size"`

	// MinGamesForMatchup is the minimum head-to-head sample before the
	// matchup factor trusts the opponent-specific average.
	MinGamesForMatchup int `mapstructure:"min_games_for_matchup"`

	// MinGamesForSplit is the minimum home-or-away sample before the split
	// factor trusts the location-specific average.
	MinGamesForSplit int `mapstructure:"min_games_for_split"`

	// LineBandPct sets the normalization band for line-relative averages:
	// an average is normalized over [line*(1-band), line*(1+band)].
	LineBandPct float64 `mapstructure:"line_band_pct"`

	// PaceReferenceRange normalizes combined game pace
	PaceReferenceRange Range `mapstructure:"pace_reference_range"`

	// RankReferenceRange bounds defensive league ranks when the provider
	// does not report a team count.
	RankReferenceRange Range `mapstructure:"rank_reference_range"`

	// UsageMinutesRange normalizes recent average minutes played
	UsageMinutesRange Range `mapstructure:"usage_minutes_range"`

	// TrendTolerance is the slope band (stat units per game) inside which
	// a trend is called stable.
	TrendTolerance float64 `mapstructure:"trend_tolerance"`

	// TrendBonus is added to (up) or subtracted from (down) a factor score
	// when a trend is detected.
	TrendBonus float64 `mapstructure:"trend_bonus"`

	// ProjectionSensitivity scales how far the non-form factors move the
	// projection away from the baseline average. At 0.4 a full swing from
	// all factors at 0.0 to all at 1.0 moves the projection by ±20%.
	ProjectionSensitivity float64 `mapstructure:"projection_sensitivity"`

	// ConfidenceThresholds are the descending confidence cutoffs for the
	// STRONG / plain / LEAN recommendation rules.
	ConfidenceThresholds []float64 `mapstructure:"confidence_thresholds"`

	// EdgeThresholds are the descending |edge_pct| cutoffs paired with the
	// first two confidence thresholds.
	EdgeThresholds []float64 `mapstructure:"edge_thresholds"`
}

// DefaultConfig returns the production scoring configuration
func DefaultConfig() Config {
	return Config{
		Weights: map[models.Factor]float64{
			models.FactorRecentForm:      0.25,
			models.FactorOpponentMatchup: 0.20,
			models.FactorHomeAwaySplit:   0.15,
			models.FactorOpponentDefense: 0.20,
			models.FactorPace:            0.10,
			models.FactorUsage:           0.10,
		},
		RecentWindowSize:      10,
		MinGamesForMatchup:    3,
		MinGamesForSplit:      3,
		LineBandPct:           0.2,
		PaceReferenceRange:    Range{Lo: 90, Hi: 110},
		RankReferenceRange:    Range{Lo: 1, Hi: 30},
		UsageMinutesRange:     Range{Lo: 20, Hi: 40},
		TrendTolerance:        0.1,
		TrendBonus:            0.05,
		ProjectionSensitivity: 0.4,
		ConfidenceThresholds:  []float64{0.75, 0.65, 0.55},
		EdgeThresholds:        []float64{15, 10},
	}
}

// Validate checks the configuration and returns an error wrapping
// models.ErrInvalidConfig when it is unusable.
func (c Config) Validate() error {
	if len(c.Weights) != len(models.AllFactors()) {
		return fmt.Errorf("%w: expected %d factor weights, got %d",
			models.ErrInvalidConfig, len(models.AllFactors()), len(c.Weights))
	}

	sum := 0.0
	for _, factor := range models.AllFactors() {
		weight, ok := c.Weights[factor]
		if !ok {
			return fmt.Errorf("%w: missing weight for factor %q", models.ErrInvalidConfig, factor)
		}
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%w: weight for factor %q must be in [0,1], got %v",
				models.ErrInvalidConfig, factor, weight)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("%w: factor weights sum to %v, must sum to 1.0", models.ErrInvalidConfig, sum)
	}

	if c.RecentWindowSize <= 0 {
		return fmt.Errorf("%w: recent_window_size must be positive", models.ErrInvalidConfig)
	}
	if c.MinGamesForMatchup <= 0 || c.MinGamesForSplit <= 0 {
		return fmt.Errorf("%w: minimum game counts must be positive", models.ErrInvalidConfig)
	}
	if c.LineBandPct <= 0 || c.LineBandPct >= 1 {
		return fmt.Errorf("%w: line_band_pct must be in (0,1)", models.ErrInvalidConfig)
	}
	if c.TrendTolerance < 0 {
		return fmt.Errorf("%w: trend_tolerance must not be negative", models.ErrInvalidConfig)
	}
	if c.ProjectionSensitivity < 0 {
		return fmt.Errorf("%w: projection_sensitivity must not be negative", models.ErrInvalidConfig)
	}

	for _, r := range []struct {
		name string
		r    Range
	}{
		{"pace_reference_range", c.PaceReferenceRange},
		{"rank_reference_range", c.RankReferenceRange},
		{"usage_minutes_range", c.UsageMinutesRange},
	} {
		if r.r.Hi < r.r.Lo {
			return fmt.Errorf("%w: %s hi must not be below lo", models.ErrInvalidConfig, r.name)
		}
	}

	if len(c.ConfidenceThresholds) != 3 {
		return fmt.Errorf("%w: confidence_thresholds must have 3 entries", models.ErrInvalidConfig)
	}
	if err := requireDescending("confidence_thresholds", c.ConfidenceThresholds); err != nil {
		return err
	}
	for _, t := range c.ConfidenceThresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: confidence thresholds must be in [0,1]", models.ErrInvalidConfig)
		}
	}

	if len(c.EdgeThresholds) != 2 {
		return fmt.Errorf("%w: edge_thresholds must have 2 entries", models.ErrInvalidConfig)
	}
	if err := requireDescending("edge_thresholds", c.EdgeThresholds); err != nil {
		return err
	}

	return nil
}

// requireDescending checks that a threshold list is strictly descending
func requireDescending(name string, values []float64) error {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return fmt.Errorf("%w: %s must be strictly descending", models.ErrInvalidConfig, name)
		}
	}
	return nil
}
