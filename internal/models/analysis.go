package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Factor identifies one of the six scoring signals
type Factor string

// The six factors combined into a confidence score
const (
	FactorRecentForm      Factor = "recent_form"
	FactorOpponentMatchup Factor = "opponent_matchup"
	FactorHomeAwaySplit   Factor = "home_away_split"
	FactorOpponentDefense Factor = "opponent_defense"
	FactorPace            Factor = "pace_factor"
	FactorUsage           Factor = "usage_factor"
)

// AllFactors returns the six factors in weight-table order
func AllFactors() []Factor {
	return []Factor{
		FactorRecentForm,
		FactorOpponentMatchup,
		FactorHomeAwaySplit,
		FactorOpponentDefense,
		FactorPace,
		FactorUsage,
	}
}

// TrendDirection classifies the slope of a stat over recent games
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// FactorDetail is the tagged per-factor detail record. Each factor kind
// carries strongly-typed fields and exposes a generic name→value view for
// serialization.
type FactorDetail interface {
	FactorName() Factor
	Values() map[string]interface{}
}

// RecentFormDetail holds supporting values for the recent form factor
type RecentFormDetail struct {
	RecentAvg      float64        `json:"recent_avg"`
	ConsistencyPct float64        `json:"consistency_pct"`
	Trend          TrendDirection `json:"trend"`
	StdDev         float64        `json:"std_dev"`
	GamesAnalyzed  int            `json:"games_analyzed"`
	ReducedSample  bool           `json:"reduced_sample,omitempty"`
}

// FactorName returns the factor this detail belongs to
func (d RecentFormDetail) FactorName() Factor { return FactorRecentForm }

// Values returns a generic name→value view of the detail
func (d RecentFormDetail) Values() map[string]interface{} {
	return map[string]interface{}{
		"recent_avg":      d.RecentAvg,
		"consistency_pct": d.ConsistencyPct,
		"trend":           string(d.Trend),
		"std_dev":         d.StdDev,
		"games_analyzed":  d.GamesAnalyzed,
		"reduced_sample":  d.ReducedSample,
	}
}

// MatchupDetail holds supporting values for the opponent matchup factor
type MatchupDetail struct {
	VsOpponentAvg float64 `json:"vs_opponent_avg"`
	Games         int     `json:"games"`
	UsedFallback  bool    `json:"used_fallback,omitempty"`
}

// FactorName returns the factor this detail belongs to
func (d MatchupDetail) FactorName() Factor { return FactorOpponentMatchup }

// Values returns a generic name→value view of the detail
func (d MatchupDetail) Values() map[string]interface{} {
	return map[string]interface{}{
		"vs_opponent_avg": d.VsOpponentAvg,
		"games":           d.Games,
		"used_fallback":   d.UsedFallback,
	}
}

// SplitDetail holds supporting values for the home/away split factor
type SplitDetail struct {
	Location     string  `json:"location"`
	LocationAvg  float64 `json:"location_avg"`
	Games        int     `json:"games"`
	UsedFallback bool    `json:"used_fallback,omitempty"`
}

// FactorName returns the factor this detail belongs to
func (d SplitDetail) FactorName() Factor { return FactorHomeAwaySplit }

// Values returns a generic name→value view of the detail
func (d SplitDetail) Values() map[string]interface{} {
	return map[string]interface{}{
		"location":      d.Location,
		"location_avg":  d.LocationAvg,
		"games":         d.Games,
		"used_fallback": d.UsedFallback,
	}
}

// DefenseDetail holds supporting values for the opponent defense factor
type DefenseDetail struct {
	LeagueRank      int     `json:"league_rank"`
	TotalTeams      int     `json:"total_teams"`
	DefensiveRating float64 `json:"defensive_rating"`
}

// FactorName returns the factor this detail belongs to
func (d DefenseDetail) FactorName() Factor { return FactorOpponentDefense }

// Values returns a generic name→value view of the detail
func (d DefenseDetail) Values() map[string]interface{} {
	return map[string]interface{}{
		"league_rank":      d.LeagueRank,
		"total_teams":      d.TotalTeams,
		"defensive_rating": d.DefensiveRating,
	}
}

// PaceDetail holds supporting values for the pace factor
type PaceDetail struct {
	TeamPace     float64 `json:"team_pace"`
	OpponentPace float64 `json:"opponent_pace"`
	AvgPace      float64 `json:"avg_pace"`
}

// FactorName returns the factor this detail belongs to
func (d PaceDetail) FactorName() Factor { return FactorPace }

// Values returns a generic name→value view of the detail
func (d PaceDetail) Values() map[string]interface{} {
	return map[string]interface{}{
		"team_pace":     d.TeamPace,
		"opponent_pace": d.OpponentPace,
		"avg_pace":      d.AvgPace,
	}
}

// UsageDetail holds supporting values for the usage factor
type UsageDetail struct {
	RecentMinutes  float64        `json:"recent_minutes"`
	OverallMinutes float64        `json:"overall_minutes"`
	MinutesTrend   TrendDirection `json:"minutes_trend"`
	DataAvailable  bool           `json:"data_available"`
}

// FactorName returns the factor this detail belongs to
func (d UsageDetail) FactorName() Factor { return FactorUsage }

// Values returns a generic name→value view of the detail
func (d UsageDetail) Values() map[string]interface{} {
	return map[string]interface{}{
		"recent_minutes":  d.RecentMinutes,
		"overall_minutes": d.OverallMinutes,
		"minutes_trend":   string(d.MinutesTrend),
		"data_available":  d.DataAvailable,
	}
}

// FactorResult is the score and supporting detail produced by one factor
// calculator for a single analysis. Scores always lie in [0,1].
type FactorResult struct {
	Score  float64      `json:"score"`
	Detail FactorDetail `json:"detail"`
}

// Recommendation is the discrete label produced by the threshold rules
type Recommendation string

const (
	RecommendationStrongOver  Recommendation = "STRONG OVER"
	RecommendationOver        Recommendation = "OVER"
	RecommendationLeanOver    Recommendation = "LEAN OVER"
	RecommendationPass        Recommendation = "PASS"
	RecommendationLeanUnder   Recommendation = "LEAN UNDER"
	RecommendationUnder       Recommendation = "UNDER"
	RecommendationStrongUnder Recommendation = "STRONG UNDER"
)

// ConfidenceLabel buckets a confidence score for display
type ConfidenceLabel string

const (
	ConfidenceVeryHigh ConfidenceLabel = "very_high"
	ConfidenceHigh     ConfidenceLabel = "high"
	ConfidenceMedium   ConfidenceLabel = "medium"
	ConfidenceLow      ConfidenceLabel = "low"
	ConfidenceVeryLow  ConfidenceLabel = "very_low"
)

// LabelForConfidence maps a confidence score to its display bucket
func LabelForConfidence(score float64) ConfidenceLabel {
	switch {
	case score >= 0.80:
		return ConfidenceVeryHigh
	case score >= 0.70:
		return ConfidenceHigh
	case score >= 0.60:
		return ConfidenceMedium
	case score >= 0.50:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// PropAnalysis is the sole output of the scoring model. It is constructed
// once per (player, prop) analysis and never mutated afterwards.
type PropAnalysis struct {
	PlayerID        int                     `json:"player_id"`
	PlayerName      string                  `json:"player_name"`
	TeamID          int                     `json:"team_id"`
	OpponentTeamID  int                     `json:"opponent_team_id"`
	PropType        PropType                `json:"prop_type"`
	PropLine        float64                 `json:"prop_line"`
	ProjectedValue  float64                 `json:"projected_value"`
	Edge            float64                 `json:"edge"`
	EdgePct         float64                 `json:"edge_pct"`
	ConfidenceScore float64                 `json:"confidence_score"`
	ConfidenceLabel ConfidenceLabel         `json:"confidence_label"`
	Recommendation  Recommendation          `json:"recommendation"`
	IsHomeGame      bool                    `json:"is_home_game"`
	Factors         map[Factor]FactorResult `json:"factors"`
	Warnings        []string                `json:"warnings,omitempty"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// FactorScores returns the flat factor→score view used in exports
func (a *PropAnalysis) FactorScores() map[Factor]float64 {
	scores := make(map[Factor]float64, len(a.Factors))
	for name, result := range a.Factors {
		scores[name] = result.Score
	}
	return scores
}

// Rounded returns a display copy with values rounded to the precision the
// original reports used: projections and edges to 1 decimal place,
// scores to 3.
func (a *PropAnalysis) Rounded() PropAnalysis {
	out := *a
	out.ProjectedValue = roundTo(a.ProjectedValue, 1)
	out.Edge = roundTo(a.Edge, 1)
	out.EdgePct = roundTo(a.EdgePct, 1)
	out.ConfidenceScore = roundTo(a.ConfidenceScore, 3)

	rounded := make(map[Factor]FactorResult, len(a.Factors))
	for name, result := range a.Factors {
		result.Score = roundTo(result.Score, 3)
		rounded[name] = result
	}
	out.Factors = rounded
	return out
}

// roundTo rounds half away from zero at the given number of decimal places
func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
