package scoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davorpavlov/props-engine/internal/models"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) FetchRecentGames(ctx context.Context, playerID, limit int) (models.GameLog, error) {
	args := m.Called(ctx, playerID, limit)
	return args.Get(0).(models.GameLog), args.Error(1)
}

func (m *mockProvider) FetchGamesVsOpponent(ctx context.Context, playerID, opponentID int) (models.GameLog, error) {
	args := m.Called(ctx, playerID, opponentID)
	return args.Get(0).(models.GameLog), args.Error(1)
}

func (m *mockProvider) FetchTeamContext(ctx context.Context, teamID int) (models.TeamContext, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(models.TeamContext), args.Error(1)
}

const (
	testPlayerID = 203
	testTeamID   = 1610612744
	testOppID    = 1610612747
)

// formGameLog builds a chronological season slice: points rising from the
// low twenties into the mid thirties, the first three games at home,
// steady minutes throughout.
func formGameLog() models.GameLog {
	points := []float64{22, 24, 26, 24, 26, 28, 29, 31, 33, 35}
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	games := make([]models.GameRecord, len(points))
	for i, pts := range points {
		games[i] = models.GameRecord{
			Date:       start.AddDate(0, 0, i*2),
			IsHome:     i < 3,
			OpponentID: 1610612700 + i,
			Stats: map[string]float64{
				models.StatPoints:  pts,
				models.StatMinutes: 35.6,
			},
		}
	}
	return models.GameLog{Games: games, Order: models.OrderChronological}
}

func matchupGameLog() models.GameLog {
	games := make([]models.GameRecord, 8)
	for i := range games {
		games[i] = models.GameRecord{
			Date:       time.Date(2025, 11, 1+i*7, 0, 0, 0, 0, time.UTC),
			OpponentID: testOppID,
			Stats: map[string]float64{
				models.StatPoints:  29.2,
				models.StatMinutes: 34.0,
			},
		}
	}
	return models.GameLog{Games: games, Order: models.OrderNewestFirst}
}

func scenarioProvider(t *testing.T) *mockProvider {
	t.Helper()
	provider := new(mockProvider)
	provider.On("FetchRecentGames", mock.Anything, testPlayerID, 20).Return(formGameLog(), nil)
	provider.On("FetchGamesVsOpponent", mock.Anything, testPlayerID, testOppID).Return(matchupGameLog(), nil)
	provider.On("FetchTeamContext", mock.Anything, testTeamID).Return(models.TeamContext{
		TeamID: testTeamID,
		Pace:   104,
	}, nil)
	provider.On("FetchTeamContext", mock.Anything, testOppID).Return(models.TeamContext{
		TeamID:          testOppID,
		DefensiveRating: 118.5,
		LeagueRank:      5,
		Pace:            102,
		TotalTeams:      30,
	}, nil)
	return provider
}

func scenarioRequest() Request {
	return Request{
		PlayerID:       testPlayerID,
		PlayerName:     "Test Player",
		TeamID:         testTeamID,
		OpponentTeamID: testOppID,
		PropType:       models.PropPoints,
		PropLine:       25.5,
		IsHomeGame:     true,
	}
}

func TestAnalyzePropScenario(t *testing.T) {
	provider := scenarioProvider(t)
	engine, err := NewEngine(provider, DefaultConfig(), nil)
	require.NoError(t, err)

	analysis, err := engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.NoError(t, err)
	require.NotNil(t, analysis)

	// A hot player against a generous defense should land in the
	// mid-seventies confidence band and recommend the over.
	assert.InDelta(t, 0.74, analysis.ConfidenceScore, 0.02)
	assert.Equal(t, models.RecommendationOver, analysis.Recommendation)
	assert.Greater(t, analysis.ProjectedValue, analysis.PropLine)
	assert.InDelta(t, 18.7, analysis.EdgePct, 0.5)
	assert.InDelta(t, analysis.ProjectedValue-analysis.PropLine, analysis.Edge, 1e-9)

	require.Len(t, analysis.Factors, len(models.AllFactors()))
	for _, factor := range models.AllFactors() {
		result, ok := analysis.Factors[factor]
		require.Truef(t, ok, "missing factor %s", factor)
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 1.0)
		require.NotNil(t, result.Detail)
		assert.Equal(t, factor, result.Detail.FactorName())
	}

	form, ok := analysis.Factors[models.FactorRecentForm].Detail.(models.RecentFormDetail)
	require.True(t, ok)
	assert.InDelta(t, 27.8, form.RecentAvg, 1e-9)
	assert.InDelta(t, 0.7, form.ConsistencyPct, 1e-9)
	assert.Equal(t, models.TrendUp, form.Trend)
	assert.False(t, form.ReducedSample)

	split, ok := analysis.Factors[models.FactorHomeAwaySplit].Detail.(models.SplitDetail)
	require.True(t, ok)
	assert.Equal(t, "home", split.Location)
	assert.InDelta(t, 24.0, split.LocationAvg, 1e-9)
	assert.False(t, split.UsedFallback)

	assert.Empty(t, analysis.Warnings)
	assert.Equal(t, models.ConfidenceHigh, analysis.ConfidenceLabel)
	assert.False(t, analysis.GeneratedAt.IsZero())

	provider.AssertExpectations(t)
}

func TestAnalyzePropDeterministic(t *testing.T) {
	provider := scenarioProvider(t)
	engine, err := NewEngine(provider, DefaultConfig(), nil)
	require.NoError(t, err)

	first, err := engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.NoError(t, err)
	second, err := engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.ProjectedValue, second.ProjectedValue)
	assert.Equal(t, first.Recommendation, second.Recommendation)
	assert.Equal(t, first.FactorScores(), second.FactorScores())
}

func TestNeutralFactorsAggregation(t *testing.T) {
	engine, err := NewEngine(new(mockProvider), DefaultConfig(), nil)
	require.NoError(t, err)

	neutral := make(map[models.Factor]models.FactorResult, len(models.AllFactors()))
	for _, factor := range models.AllFactors() {
		neutral[factor] = models.FactorResult{Score: 0.5}
	}

	assert.InDelta(t, 0.5, engine.confidenceScore(neutral), 1e-9)
	assert.InDelta(t, 27.8, engine.projectValue(27.8, neutral), 1e-9,
		"neutral factors leave the baseline untouched")
	assert.Equal(t, models.RecommendationPass, Recommend(engine.cfg, 0.5, 2.3, 9.0))
}

func TestAnalyzePropNoHistory(t *testing.T) {
	provider := new(mockProvider)
	provider.On("FetchRecentGames", mock.Anything, testPlayerID, 20).
		Return(models.GameLog{}, nil)

	engine, err := NewEngine(provider, DefaultConfig(), nil)
	require.NoError(t, err)

	analysis, err := engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.Error(t, err)
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnalyzePropInvalidRequest(t *testing.T) {
	engine, err := NewEngine(new(mockProvider), DefaultConfig(), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"unknown prop type", func(r *Request) { r.PropType = "steals" }},
		{"zero line", func(r *Request) { r.PropLine = 0 }},
		{"negative line", func(r *Request) { r.PropLine = -5.5 }},
		{"missing player id", func(r *Request) { r.PlayerID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scenarioRequest()
			tt.mutate(&req)

			analysis, err := engine.AnalyzeProp(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, analysis)
			assert.ErrorIs(t, err, models.ErrInvalidProp)
		})
	}
}

func TestAnalyzePropProviderNotFound(t *testing.T) {
	provider := new(mockProvider)
	provider.On("FetchRecentGames", mock.Anything, testPlayerID, 20).
		Return(models.GameLog{}, fmt.Errorf("player %d: %w", testPlayerID, models.ErrNotFound))

	engine, err := NewEngine(provider, DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalyzePropReducedSample(t *testing.T) {
	short := formGameLog()
	short.Games = short.Games[len(short.Games)-4:]

	provider := new(mockProvider)
	provider.On("FetchRecentGames", mock.Anything, testPlayerID, 20).Return(short, nil)
	provider.On("FetchGamesVsOpponent", mock.Anything, testPlayerID, testOppID).Return(matchupGameLog(), nil)
	provider.On("FetchTeamContext", mock.Anything, mock.AnythingOfType("int")).
		Return(models.TeamContext{Pace: 100, LeagueRank: 15, TotalTeams: 30}, nil)

	engine, err := NewEngine(provider, DefaultConfig(), nil)
	require.NoError(t, err)

	analysis, err := engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.NoError(t, err)

	form, ok := analysis.Factors[models.FactorRecentForm].Detail.(models.RecentFormDetail)
	require.True(t, ok)
	assert.True(t, form.ReducedSample)
	assert.Equal(t, 4, form.GamesAnalyzed)
	assert.NotEmpty(t, analysis.Warnings)
}

func TestAnalyzePropMatchupFallback(t *testing.T) {
	provider := new(mockProvider)
	provider.On("FetchRecentGames", mock.Anything, testPlayerID, 20).Return(formGameLog(), nil)
	provider.On("FetchGamesVsOpponent", mock.Anything, testPlayerID, testOppID).
		Return(models.GameLog{}, fmt.Errorf("provider unavailable"))
	provider.On("FetchTeamContext", mock.Anything, mock.AnythingOfType("int")).
		Return(models.TeamContext{Pace: 100, LeagueRank: 15, TotalTeams: 30}, nil)

	engine, err := NewEngine(provider, DefaultConfig(), nil)
	require.NoError(t, err)

	analysis, err := engine.AnalyzeProp(context.Background(), scenarioRequest())
	require.NoError(t, err, "a missing head-to-head sample must not fail the analysis")

	matchup, ok := analysis.Factors[models.FactorOpponentMatchup].Detail.(models.MatchupDetail)
	require.True(t, ok)
	assert.True(t, matchup.UsedFallback)
	assert.InDelta(t, 27.8, matchup.VsOpponentAvg, 1e-9, "fallback uses the recent average")
	assert.Contains(t, analysis.Warnings, "head-to-head history unavailable")
}
