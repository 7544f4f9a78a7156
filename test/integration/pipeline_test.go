//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davorpavlov/props-engine/internal/analysis"
	"github.com/davorpavlov/props-engine/internal/api"
	"github.com/davorpavlov/props-engine/internal/nbastats"
	"github.com/davorpavlov/props-engine/internal/scoring"
)

// fakeStatsAPI serves the provider wire format for a one-game slate:
// the Bay City Breakers host the Lakeshore Captains. Each roster carries
// one player with ten games of history.
type fakeStatsAPI struct {
	t        *testing.T
	requests int
}

const (
	homeTeamID   = 1610612744
	awayTeamID   = 1610612747
	homeStarID   = 203
	awayStarID   = 204
)

func (f *fakeStatsAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/schedule/today", func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		writeJSON(f.t, w, map[string]interface{}{
			"games": []map[string]interface{}{{
				"game_id":        "0022500123",
				"home_team_id":   homeTeamID,
				"home_team_name": "Bay City Breakers",
				"away_team_id":   awayTeamID,
				"away_team_name": "Lakeshore Captains",
				"tip_off":        time.Now().Add(6 * time.Hour).Format(time.RFC3339),
			}},
		})
	})

	mux.HandleFunc(fmt.Sprintf("/v1/teams/%d/roster", homeTeamID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, map[string]interface{}{
			"players": []map[string]interface{}{{
				"player_id": homeStarID, "player_name": "Alpha Guard", "position": "G", "avg_minutes": 35.1,
			}},
		})
	})
	mux.HandleFunc(fmt.Sprintf("/v1/teams/%d/roster", awayTeamID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, map[string]interface{}{
			"players": []map[string]interface{}{{
				"player_id": awayStarID, "player_name": "Beta Forward", "position": "F", "avg_minutes": 33.4,
			}},
		})
	})

	mux.HandleFunc(fmt.Sprintf("/v1/players/%d/games", homeStarID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, gamesPayload(28.5, awayTeamID))
	})
	mux.HandleFunc(fmt.Sprintf("/v1/players/%d/games", awayStarID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, gamesPayload(24.0, homeTeamID))
	})

	mux.HandleFunc(fmt.Sprintf("/v1/teams/%d/context", homeTeamID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, map[string]interface{}{
			"team_id": homeTeamID, "defensive_rating": 112.4, "league_rank": 8, "pace": 101.2, "total_teams": 30,
		})
	})
	mux.HandleFunc(fmt.Sprintf("/v1/teams/%d/context", awayTeamID), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, map[string]interface{}{
			"team_id": awayTeamID, "defensive_rating": 114.9, "league_rank": 4, "pace": 103.8, "total_teams": 30,
		})
	})

	mux.HandleFunc("/v1/players", func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		if strings.Contains(strings.ToLower(search), "alpha") {
			writeJSON(f.t, w, map[string]interface{}{
				"players": []map[string]interface{}{{"id": homeStarID, "name": "Alpha Guard", "team_id": homeTeamID}},
			})
			return
		}
		writeJSON(f.t, w, map[string]interface{}{"players": []interface{}{}})
	})

	mux.HandleFunc("/v1/teams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, map[string]interface{}{
			"teams": []map[string]interface{}{{"id": awayTeamID, "name": "Lakeshore Captains", "abbreviation": "LSC"}},
		})
	})

	return mux
}

// gamesPayload builds ten games around a base scoring level, newest first
func gamesPayload(base float64, opponentID int) map[string]interface{} {
	games := make([]map[string]interface{}, 0, 10)
	for i := 0; i < 10; i++ {
		games = append(games, map[string]interface{}{
			"date":             time.Now().AddDate(0, 0, -(i + 1)).Format("2006-01-02"),
			"is_home":          i%2 == 0,
			"opponent_team_id": opponentID,
			"stats": map[string]float64{
				"PTS":  base + float64(i%3),
				"REB":  5 + float64(i%2),
				"AST":  6,
				"FG3M": 2,
				"MIN":  34 + float64(i%4),
			},
		})
	}
	return map[string]interface{}{"games": games}
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

// buildStack wires the real transport, cache, engine, service and API
// server against the fake stats API.
func buildStack(t *testing.T) (*api.Server, *analysis.Service) {
	t.Helper()

	fake := &fakeStatsAPI{t: t}
	upstream := httptest.NewServer(fake.handler())
	t.Cleanup(upstream.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	httpCfg := nbastats.DefaultHTTPClientConfig()
	httpCfg.MaxRetries = 0
	httpCfg.RateLimit = 1000

	httpClient := nbastats.NewRateLimitedHTTPClient(httpCfg, logger)
	client := nbastats.NewClient(httpClient, upstream.URL+"/v1", "integration-key", logger)
	provider := nbastats.NewCachedProvider(client, nbastats.DefaultCacheConfig())

	engine, err := scoring.NewEngine(provider, scoring.DefaultConfig(), logger)
	require.NoError(t, err)

	runCfg := analysis.DefaultConfig()
	runCfg.MinConfidence = 0 // keep every pick so assertions see both players
	service, err := analysis.NewService(provider, engine, runCfg, logger)
	require.NoError(t, err)

	server := api.NewServer(api.DefaultServerConfig(), service, provider, nil, logger)
	return server, service
}

func TestDailyAnalysisPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server, service := buildStack(t)

	req := httptest.NewRequest(http.MethodGet, "/api/daily-analysis", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Success bool `json:"success"`
		Results struct {
			Summary analysis.RunSummary      `json:"summary"`
			Picks   []map[string]interface{} `json:"picks"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, 1, envelope.Results.Summary.GamesAnalyzed)
	assert.Zero(t, envelope.Results.Summary.Failures)
	assert.NotEmpty(t, envelope.Results.Picks)

	// Both rostered players produce picks across the configured prop types
	players := map[string]bool{}
	for _, pick := range envelope.Results.Picks {
		players[pick["player_name"].(string)] = true
	}
	assert.True(t, players["Alpha Guard"])
	assert.True(t, players["Beta Forward"])

	// The run is retained for later inspection
	require.NotNil(t, service.LastRun())
	assert.Equal(t, envelope.Results.Summary.RunID, service.LastRun().Summary.RunID)
}

func TestPlayerAnalysisPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server, _ := buildStack(t)

	body, err := json.Marshal(map[string]interface{}{
		"player":   "Alpha Guard",
		"opponent": "Lakeshore Captains",
		"is_home":  true,
		"props":    map[string]float64{"points": 27.5},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/player-analysis", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Success bool `json:"success"`
		Results struct {
			Player  map[string]interface{}   `json:"player"`
			Results []map[string]interface{} `json:"results"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "Alpha Guard", envelope.Results.Player["name"])
	require.Len(t, envelope.Results.Results, 1)

	propResult := envelope.Results.Results[0]
	assert.Equal(t, "points", propResult["prop_type"])
	assert.Equal(t, 27.5, propResult["prop_line"])
	require.NotNil(t, propResult["analysis"])
}
