package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davorpavlov/props-engine/internal/analysis"
	"github.com/davorpavlov/props-engine/internal/models"
	"github.com/davorpavlov/props-engine/internal/scoring"
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

func (m *mockProvider) FetchTodaysGames(ctx context.Context) ([]models.ScheduledGame, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ScheduledGame), args.Error(1)
}

func (m *mockProvider) FetchTeamRoster(ctx context.Context, teamID int) ([]models.RosterPlayer, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.RosterPlayer), args.Error(1)
}

func (m *mockProvider) SearchPlayer(ctx context.Context, name string) (models.Player, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Player), args.Error(1)
}

func (m *mockProvider) SearchTeam(ctx context.Context, name string) (models.Team, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Team), args.Error(1)
}

func (m *mockProvider) Name() string { return "mock" }

func newTestServer(t *testing.T, provider *mockProvider) *Server {
	t.Helper()
	engine, err := scoring.NewEngine(provider, scoring.DefaultConfig(), nil)
	require.NoError(t, err)
	service, err := analysis.NewService(provider, engine, analysis.DefaultConfig(), nil)
	require.NoError(t, err)
	return NewServer(DefaultServerConfig(), service, provider, nil, nil)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, new(mockProvider))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestHandleIndexListsEndpoints(t *testing.T) {
	server := newTestServer(t, new(mockProvider))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/daily-analysis")
}

func TestHandleNotFound(t *testing.T) {
	server := newTestServer(t, new(mockProvider))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestHandlePlayerSearch(t *testing.T) {
	provider := new(mockProvider)
	provider.On("SearchPlayer", mock.Anything, "curry").
		Return(models.Player{ID: 201939, Name: "Stephen Curry", TeamID: 10}, nil)
	server := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/player-search?name=curry", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stephen Curry")
}

func TestHandlePlayerSearchMissingName(t *testing.T) {
	server := newTestServer(t, new(mockProvider))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/player-search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlayerSearchNotFound(t *testing.T) {
	provider := new(mockProvider)
	provider.On("SearchPlayer", mock.Anything, "nobody").
		Return(models.Player{}, fmt.Errorf("lookup: %w", models.ErrNotFound))
	server := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/player-search?name=nobody", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTodaysGames(t *testing.T) {
	provider := new(mockProvider)
	provider.On("FetchTodaysGames", mock.Anything).Return([]models.ScheduledGame{{
		GameID:       "g1",
		HomeTeamID:   10,
		HomeTeamName: "Home Team",
		AwayTeamID:   12,
		AwayTeamName: "Away Team",
	}}, nil)
	server := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/todays-games", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func playerGameLog() models.GameLog {
	games := make([]models.GameRecord, 10)
	for i := range games {
		games[i] = models.GameRecord{
			Date:   time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
			IsHome: i%2 == 0,
			Stats: map[string]float64{
				models.StatPoints:  26 + float64(i%5),
				models.StatMinutes: 34,
			},
		}
	}
	return models.GameLog{Games: games, Order: models.OrderNewestFirst}
}

func TestHandlePlayerAnalysis(t *testing.T) {
	provider := new(mockProvider)
	provider.On("SearchPlayer", mock.Anything, "curry").
		Return(models.Player{ID: 201939, Name: "Stephen Curry", TeamID: 10}, nil)
	provider.On("SearchTeam", mock.Anything, "lakers").
		Return(models.Team{ID: 12, Name: "Los Angeles Lakers"}, nil)
	provider.On("FetchRecentGames", mock.Anything, 201939, mock.AnythingOfType("int")).
		Return(playerGameLog(), nil)
	provider.On("FetchGamesVsOpponent", mock.Anything, 201939, 12).
		Return(models.GameLog{}, nil)
	provider.On("FetchTeamContext", mock.Anything, mock.AnythingOfType("int")).
		Return(models.TeamContext{Pace: 100, LeagueRank: 10, TotalTeams: 30}, nil)
	server := newTestServer(t, provider)

	payload := bytes.NewBufferString(`{"player":"curry","opponent":"lakers","is_home":true,"props":{"points":27.5}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/player-analysis", payload)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "confidence_score")
	assert.Contains(t, rec.Body.String(), "Stephen Curry")
}

func TestHandlePlayerAnalysisBadBody(t *testing.T) {
	server := newTestServer(t, new(mockProvider))

	req := httptest.NewRequest(http.MethodPost, "/api/player-analysis", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDailyAnalysis(t *testing.T) {
	provider := new(mockProvider)
	provider.On("FetchTodaysGames", mock.Anything).Return([]models.ScheduledGame{{
		GameID:     "g1",
		HomeTeamID: 10,
		AwayTeamID: 12,
	}}, nil)
	provider.On("FetchTeamRoster", mock.Anything, 10).Return([]models.RosterPlayer{
		{PlayerID: 201939, PlayerName: "Stephen Curry", AvgMinutes: 34},
	}, nil)
	provider.On("FetchTeamRoster", mock.Anything, 12).Return([]models.RosterPlayer{}, nil)
	provider.On("FetchRecentGames", mock.Anything, 201939, mock.AnythingOfType("int")).
		Return(playerGameLog(), nil)
	provider.On("FetchGamesVsOpponent", mock.Anything, 201939, 12).
		Return(models.GameLog{}, nil)
	provider.On("FetchTeamContext", mock.Anything, mock.AnythingOfType("int")).
		Return(models.TeamContext{Pace: 100, LeagueRank: 10, TotalTeams: 30}, nil)
	server := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/daily-analysis", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])

	results, ok := body["results"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, results, "summary")
	assert.Contains(t, results, "picks")
}

func TestHandleDailyAnalysisBadQuery(t *testing.T) {
	provider := new(mockProvider)
	provider.On("FetchTodaysGames", mock.Anything).Return([]models.ScheduledGame{}, nil)
	server := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/daily-analysis?min_confidence=high", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
