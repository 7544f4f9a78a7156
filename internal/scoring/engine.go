package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davorpavlov/props-engine/internal/models"
)

// StatsProvider is the data the scoring model needs from the outside
// world. Implementations own all transport, retry and caching concerns;
// the engine itself performs no I/O beyond these calls.
type StatsProvider interface {
	// FetchRecentGames returns up to limit games for a player, newest first
	FetchRecentGames(ctx context.Context, playerID, limit int) (models.GameLog, error)

	// FetchGamesVsOpponent returns the player's games against one opponent
	FetchGamesVsOpponent(ctx context.Context, playerID, opponentID int) (models.GameLog, error)

	// FetchTeamContext returns team-level pace and defensive standing
	FetchTeamContext(ctx context.Context, teamID int) (models.TeamContext, error)
}

// Request identifies a single (player, prop) analysis
type Request struct {
	PlayerID       int
	PlayerName     string
	TeamID         int
	OpponentTeamID int
	PropType       models.PropType
	PropLine       float64
	IsHomeGame     bool
}

// Validate rejects requests before any data is fetched
func (r Request) Validate() error {
	if !r.PropType.IsValid() {
		return fmt.Errorf("%w: unknown prop type %q", models.ErrInvalidProp, r.PropType)
	}
	if r.PropLine <= 0 {
		return fmt.Errorf("%w: prop line must be positive, got %v", models.ErrInvalidProp, r.PropLine)
	}
	if r.PlayerID <= 0 {
		return fmt.Errorf("%w: player id must be positive", models.ErrInvalidProp)
	}
	return nil
}

// Engine computes prop analyses. It is stateless apart from its immutable
// configuration and is safe for concurrent use.
type Engine struct {
	provider StatsProvider
	cfg      Config
	log      *logrus.Logger
}

// NewEngine validates the configuration and returns a ready engine
func NewEngine(provider StatsProvider, cfg Config, log *logrus.Logger) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: stats provider is required", models.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{provider: provider, cfg: cfg, log: log}, nil
}

// Config returns the engine's scoring configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// AnalyzeProp runs the full model for one (player, prop) pair: fetch
// history, score the six factors, aggregate confidence, project the stat
// and derive a recommendation. The same request against the same data
// always produces the same analysis.
func (e *Engine) AnalyzeProp(ctx context.Context, req Request) (*models.PropAnalysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	statKey := req.PropType.StatKey()
	fetchLimit := e.cfg.RecentWindowSize * 2

	log, err := e.provider.FetchRecentGames(ctx, req.PlayerID, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent games for player %d: %w", req.PlayerID, err)
	}
	if log.Len() == 0 {
		return nil, fmt.Errorf("%w: no game history for player %d", models.ErrInsufficientData, req.PlayerID)
	}

	games := log.NewestFirst()
	windowSize := e.cfg.RecentWindowSize
	if windowSize > len(games) {
		windowSize = len(games)
	}
	window := games[:windowSize]

	var warnings []string
	reducedSample := windowSize < e.cfg.RecentWindowSize
	if reducedSample {
		warnings = append(warnings, fmt.Sprintf("only %d games available for a %d-game form window",
			windowSize, e.cfg.RecentWindowSize))
	}

	baselineAvg := Average(statValues(window, statKey))

	vsGames, warnings := e.fetchMatchupGames(ctx, req, warnings)
	teamCtx, oppCtx, warnings := e.fetchTeamContexts(ctx, req, warnings)

	factors := map[models.Factor]models.FactorResult{
		models.FactorRecentForm:      e.recentFormFactor(window, statKey, req.PropLine, reducedSample),
		models.FactorOpponentMatchup: e.matchupFactor(vsGames, statKey, req.PropLine, baselineAvg),
		models.FactorHomeAwaySplit:   e.splitFactor(games, statKey, req.IsHomeGame, req.PropLine, baselineAvg),
		models.FactorOpponentDefense: e.defenseFactor(oppCtx),
		models.FactorPace:            e.paceFactor(teamCtx, oppCtx),
		models.FactorUsage:           e.usageFactor(window, games),
	}

	confidence := e.confidenceScore(factors)
	projected := e.projectValue(baselineAvg, factors)
	edge := projected - req.PropLine

	edgePct := 0.0
	if req.PropLine != 0 {
		edgePct = edge / req.PropLine * 100
	} else {
		warnings = append(warnings, "edge_pct undefined for a zero line, reporting 0")
	}

	analysis := &models.PropAnalysis{
		PlayerID:        req.PlayerID,
		PlayerName:      req.PlayerName,
		TeamID:          req.TeamID,
		OpponentTeamID:  req.OpponentTeamID,
		PropType:        req.PropType,
		PropLine:        req.PropLine,
		ProjectedValue:  projected,
		Edge:            edge,
		EdgePct:         edgePct,
		ConfidenceScore: confidence,
		ConfidenceLabel: models.LabelForConfidence(confidence),
		Recommendation:  Recommend(e.cfg, confidence, edge, edgePct),
		IsHomeGame:      req.IsHomeGame,
		Factors:         factors,
		Warnings:        warnings,
		GeneratedAt:     time.Now().UTC(),
	}

	e.log.WithFields(logrus.Fields{
		"player_id":  req.PlayerID,
		"prop_type":  req.PropType,
		"prop_line":  req.PropLine,
		"confidence": confidence,
		"projected":  projected,
		"rec":        analysis.Recommendation,
	}).Debug("Prop analysis complete")

	return analysis, nil
}

// fetchMatchupGames fetches head-to-head history. A provider failure here
// degrades the matchup factor to its fallback instead of failing the whole
// analysis.
func (e *Engine) fetchMatchupGames(ctx context.Context, req Request, warnings []string) ([]models.GameRecord, []string) {
	if req.OpponentTeamID <= 0 {
		return nil, warnings
	}
	log, err := e.provider.FetchGamesVsOpponent(ctx, req.PlayerID, req.OpponentTeamID)
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"player_id":   req.PlayerID,
			"opponent_id": req.OpponentTeamID,
		}).Warn("Failed to fetch head-to-head games, matchup factor will use fallback")
		return nil, append(warnings, "head-to-head history unavailable")
	}
	return log.NewestFirst(), warnings
}

// fetchTeamContexts fetches both teams' pace and defensive standing.
// Failures degrade the defense and pace factors to neutral.
func (e *Engine) fetchTeamContexts(ctx context.Context, req Request, warnings []string) (models.TeamContext, models.TeamContext, []string) {
	var teamCtx, oppCtx models.TeamContext

	if req.TeamID > 0 {
		c, err := e.provider.FetchTeamContext(ctx, req.TeamID)
		if err != nil {
			e.log.WithError(err).WithField("team_id", req.TeamID).
				Warn("Failed to fetch team context")
			warnings = append(warnings, "team pace data unavailable")
		} else {
			teamCtx = c
		}
	}

	if req.OpponentTeamID > 0 {
		c, err := e.provider.FetchTeamContext(ctx, req.OpponentTeamID)
		if err != nil {
			e.log.WithError(err).WithField("team_id", req.OpponentTeamID).
				Warn("Failed to fetch opponent context")
			warnings = append(warnings, "opponent defense data unavailable")
		} else {
			oppCtx = c
		}
	}

	return teamCtx, oppCtx, warnings
}

// confidenceScore is the weighted sum of factor scores
func (e *Engine) confidenceScore(factors map[models.Factor]models.FactorResult) float64 {
	total := 0.0
	for name, result := range factors {
		total += result.Score * e.cfg.Weights[name]
	}
	return Clamp(total, 0, 1)
}

// projectValue adjusts the baseline average by how far the non-form
// factors sit from neutral. Form is excluded because the baseline average
// already is the form signal.
func (e *Engine) projectValue(baselineAvg float64, factors map[models.Factor]models.FactorResult) float64 {
	weightSum := 0.0
	weighted := 0.0
	for name, result := range factors {
		if name == models.FactorRecentForm {
			continue
		}
		w := e.cfg.Weights[name]
		weightSum += w
		weighted += result.Score * w
	}
	if weightSum == 0 {
		return baselineAvg
	}

	deviation := weighted/weightSum - neutralScore
	projected := baselineAvg * (1 + e.cfg.ProjectionSensitivity*deviation)
	if projected < 0 {
		projected = 0
	}
	return projected
}
