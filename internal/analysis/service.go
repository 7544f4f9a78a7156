// Package analysis orchestrates scoring runs: resolving players and teams,
// sweeping the day's slate, isolating per-item failures and shaping results
// for export and the API.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	applogger "github.com/davorpavlov/props-engine/internal/logger"
	"github.com/davorpavlov/props-engine/internal/metrics"
	"github.com/davorpavlov/props-engine/internal/models"
	"github.com/davorpavlov/props-engine/internal/nbastats"
	"github.com/davorpavlov/props-engine/internal/scoring"
)

// Config controls how daily runs sweep the slate
type Config struct {
	// PropTypes analyzed for every player in a daily run
	PropTypes []models.PropType `mapstructure:"prop_types"`
	// MinConfidence filters picks below this score out of run results
	MinConfidence float64 `mapstructure:"min_confidence"`
	// TopN caps how many picks a run reports (0 = unlimited)
	TopN int `mapstructure:"top_n"`
	// PlayersPerTeam caps how many roster players are analyzed per team,
	// taken in descending average-minutes order
	PlayersPerTeam int `mapstructure:"players_per_team"`
}

// DefaultConfig returns the production run configuration
func DefaultConfig() Config {
	return Config{
		PropTypes:      models.AllPropTypes(),
		MinConfidence:  0.55,
		TopN:           20,
		PlayersPerTeam: 8,
	}
}

// PropResult is one (prop type, line) outcome inside a player analysis.
// Either Analysis or Error is set, never both.
type PropResult struct {
	PropType models.PropType       `json:"prop_type"`
	PropLine float64               `json:"prop_line"`
	Analysis *models.PropAnalysis  `json:"analysis,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// PlayerAnalysis groups the prop results for one player
type PlayerAnalysis struct {
	Player   models.Player `json:"player"`
	Opponent models.Team   `json:"opponent"`
	IsHome   bool          `json:"is_home"`
	Results  []PropResult  `json:"results"`
}

// RunSummary describes one completed daily run
type RunSummary struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	GamesAnalyzed   int       `json:"games_analyzed"`
	PropsAnalyzed   int       `json:"props_analyzed"`
	Failures        int       `json:"failures"`
	PicksReported   int       `json:"picks_reported"`
	MinConfidence   float64   `json:"min_confidence"`
}

// RunResult is the full output of a daily analysis run
type RunResult struct {
	Summary RunSummary             `json:"summary"`
	Picks   []models.PropAnalysis  `json:"picks"`
}

// Service runs analyses against a provider and a scoring engine.
// It is safe for concurrent use.
type Service struct {
	provider nbastats.Provider
	engine   *scoring.Engine
	cfg      Config
	log      *logrus.Logger
	alog     *applogger.AnalysisLogger

	mu       sync.RWMutex
	observer func(models.PropAnalysis)
	lastRun  *RunResult
}

// NewService creates an analysis service
func NewService(provider nbastats.Provider, engine *scoring.Engine, cfg Config, log *logrus.Logger) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider is required", models.ErrInvalidConfig)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: scoring engine is required", models.ErrInvalidConfig)
	}
	if len(cfg.PropTypes) == 0 {
		cfg.PropTypes = models.AllPropTypes()
	}
	for _, pt := range cfg.PropTypes {
		if !pt.IsValid() {
			return nil, fmt.Errorf("%w: unknown prop type %q in run config", models.ErrInvalidConfig, pt)
		}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		provider: provider,
		engine:   engine,
		cfg:      cfg,
		log:      log,
		alog:     applogger.NewAnalysisLogger(log),
	}, nil
}

// SetResultObserver registers a callback invoked for every completed
// analysis during a run. Used by the websocket stream.
func (s *Service) SetResultObserver(fn func(models.PropAnalysis)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// LastRun returns the most recent completed run, or nil
func (s *Service) LastRun() *RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

// AnalyzePlayerProps resolves a player and opponent by name and analyzes
// the given prop lines. A zero line requests estimation from the player's
// recent average. Per-prop failures are reported in-line; only resolution
// failures abort the whole call.
func (s *Service) AnalyzePlayerProps(ctx context.Context, playerName, opponentName string, isHome bool, props map[models.PropType]float64) (*PlayerAnalysis, error) {
	player, err := s.provider.SearchPlayer(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("resolving player %q: %w", playerName, err)
	}
	opponent, err := s.provider.SearchTeam(ctx, opponentName)
	if err != nil {
		return nil, fmt.Errorf("resolving opponent %q: %w", opponentName, err)
	}

	out := &PlayerAnalysis{Player: player, Opponent: opponent, IsHome: isHome}
	for _, propType := range sortedPropTypes(props) {
		line := props[propType]
		if line == 0 {
			estimated, err := s.estimateLine(ctx, player.ID, propType)
			if err != nil {
				out.Results = append(out.Results, PropResult{
					PropType: propType,
					Error:    err.Error(),
				})
				continue
			}
			line = estimated
		}

		result := PropResult{PropType: propType, PropLine: line}
		analysis, err := s.analyzeOne(ctx, scoring.Request{
			PlayerID:       player.ID,
			PlayerName:     player.Name,
			TeamID:         player.TeamID,
			OpponentTeamID: opponent.ID,
			PropType:       propType,
			PropLine:       line,
			IsHomeGame:     isHome,
		})
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Analysis = analysis
		}
		out.Results = append(out.Results, result)
	}
	return out, nil
}

// RunDailyAnalysis sweeps today's slate: every scheduled game, the top
// roster players on both sides, every configured prop type. One player's
// failure never aborts the rest of the run.
func (s *Service) RunDailyAnalysis(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	startedAt := time.Now().UTC()

	runLog := s.log.WithField("run_id", runID)
	runLog.Info("Starting daily analysis run")

	games, err := s.provider.FetchTodaysGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching today's games: %w", err)
	}

	var (
		picks    []models.PropAnalysis
		analyzed int
		failures int
	)

	for _, game := range games {
		sides := []struct {
			teamID     int
			opponentID int
			isHome     bool
		}{
			{game.HomeTeamID, game.AwayTeamID, true},
			{game.AwayTeamID, game.HomeTeamID, false},
		}

		for _, side := range sides {
			roster, err := s.provider.FetchTeamRoster(ctx, side.teamID)
			if err != nil {
				runLog.WithError(err).WithField("team_id", side.teamID).
					Warn("Skipping team, roster unavailable")
				failures++
				continue
			}

			for _, player := range topPlayers(roster, s.cfg.PlayersPerTeam) {
				for _, propType := range s.cfg.PropTypes {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}

					line, err := s.estimateLine(ctx, player.PlayerID, propType)
					if err != nil {
						failures++
						continue
					}

					analyzed++
					analysis, err := s.analyzeOne(ctx, scoring.Request{
						PlayerID:       player.PlayerID,
						PlayerName:     player.PlayerName,
						TeamID:         side.teamID,
						OpponentTeamID: side.opponentID,
						PropType:       propType,
						PropLine:       line,
						IsHomeGame:     side.isHome,
					})
					if err != nil {
						failures++
						continue
					}
					if analysis.ConfidenceScore >= s.cfg.MinConfidence {
						picks = append(picks, *analysis)
					}
				}
			}
		}
	}

	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].ConfidenceScore > picks[j].ConfidenceScore
	})
	if s.cfg.TopN > 0 && len(picks) > s.cfg.TopN {
		picks = picks[:s.cfg.TopN]
	}

	completedAt := time.Now().UTC()
	result := &RunResult{
		Summary: RunSummary{
			RunID:         runID,
			StartedAt:     startedAt,
			CompletedAt:   completedAt,
			GamesAnalyzed: len(games),
			PropsAnalyzed: analyzed,
			Failures:      failures,
			PicksReported: len(picks),
			MinConfidence: s.cfg.MinConfidence,
		},
		Picks: picks,
	}

	s.mu.Lock()
	s.lastRun = result
	s.mu.Unlock()

	metrics.RecordDailyRun(completedAt.Sub(startedAt).Seconds(), len(picks))
	metrics.LastRunTimestamp.Set(float64(completedAt.Unix()))

	runLog.WithFields(logrus.Fields{
		"games":    len(games),
		"analyzed": analyzed,
		"failures": failures,
		"picks":    len(picks),
		"duration": completedAt.Sub(startedAt),
	}).Info("Daily analysis run complete")

	return result, nil
}

// analyzeOne runs the engine for one request and records metrics
func (s *Service) analyzeOne(ctx context.Context, req scoring.Request) (*models.PropAnalysis, error) {
	start := time.Now()
	analysis, err := s.engine.AnalyzeProp(ctx, req)
	if err != nil {
		metrics.RecordAnalysisFailure(failureReason(err))
		s.alog.LogAnalysisFailure(req.PlayerID, string(req.PropType), failureReason(err), err)
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordAnalysis(elapsed.Seconds())
	s.alog.LogAnalysis(analysis.PlayerID, analysis.PlayerName, string(analysis.PropType),
		analysis.PropLine, analysis.ProjectedValue, analysis.ConfidenceScore,
		string(analysis.Recommendation), float64(elapsed.Microseconds())/1000.0)
	metrics.RecordRecommendation(string(analysis.PropType), string(analysis.Recommendation),
		analysis.ConfidenceScore, math.Abs(analysis.EdgePct))

	s.mu.RLock()
	observer := s.observer
	s.mu.RUnlock()
	if observer != nil {
		observer(*analysis)
	}
	return analysis, nil
}

// estimateLine derives a synthetic line from the player's recent average,
// rounded to the nearest half point the way books post lines.
func (s *Service) estimateLine(ctx context.Context, playerID int, propType models.PropType) (float64, error) {
	window := s.engine.Config().RecentWindowSize
	log, err := s.provider.FetchRecentGames(ctx, playerID, window)
	if err != nil {
		return 0, fmt.Errorf("estimating %s line for player %d: %w", propType, playerID, err)
	}

	values := make([]float64, 0, log.Len())
	for _, game := range log.NewestFirst() {
		if v, ok := game.Stat(propType.StatKey()); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: no %s history for player %d", models.ErrInsufficientData, propType, playerID)
	}

	line := math.Round(scoring.Average(values)*2) / 2
	if line <= 0 {
		return 0, fmt.Errorf("%w: estimated %s line for player %d is zero", models.ErrInsufficientData, propType, playerID)
	}
	return line, nil
}

// failureReason buckets an analysis error for metrics
func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrInvalidProp):
		return "invalid_prop"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "provider_error"
	}
}

// topPlayers returns up to n roster players by descending average minutes
func topPlayers(roster []models.RosterPlayer, n int) []models.RosterPlayer {
	sorted := make([]models.RosterPlayer, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgMinutes > sorted[j].AvgMinutes
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// sortedPropTypes returns map keys in the canonical prop-type order so
// results are deterministic.
func sortedPropTypes(props map[models.PropType]float64) []models.PropType {
	out := make([]models.PropType, 0, len(props))
	for _, pt := range models.AllPropTypes() {
		if _, ok := props[pt]; ok {
			out = append(out, pt)
		}
	}
	for pt := range props {
		if !pt.IsValid() {
			out = append(out, pt)
		}
	}
	return out
}
