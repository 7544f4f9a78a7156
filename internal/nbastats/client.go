package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	applogger "github.com/davorpavlov/props-engine/internal/logger"
	"github.com/davorpavlov/props-engine/internal/models"
)

const (
	providerName   = "nbadata"
	defaultBaseURL = "https://api.nbadata.net/v1"
	apiDateFormat  = "2006-01-02"
)

// Client is the HTTP implementation of Provider
type Client struct {
	httpClient  *RateLimitedHTTPClient
	baseURL     string
	apiKey      string
	logger      *logrus.Logger
	providerLog *applogger.ProviderLogger
}

// NewClient creates a provider client. An empty baseURL selects the
// production API.
func NewClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      apiKey,
		logger:      logger,
		providerLog: applogger.NewProviderLogger(logger),
	}
}

// Name returns the provider name used in logs and errors
func (c *Client) Name() string {
	return providerName
}

// apiGame is the wire format for one game log row
type apiGame struct {
	Date           string             `json:"date"`
	IsHome         bool               `json:"is_home"`
	OpponentTeamID int                `json:"opponent_team_id"`
	Stats          map[string]float64 `json:"stats"`
}

type apiGamesResponse struct {
	Games []apiGame `json:"games"`
}

type apiTeamContext struct {
	TeamID          int     `json:"team_id"`
	DefensiveRating float64 `json:"defensive_rating"`
	LeagueRank      int     `json:"league_rank"`
	Pace            float64 `json:"pace"`
	TotalTeams      int     `json:"total_teams"`
}

type apiScheduledGame struct {
	GameID       string `json:"game_id"`
	HomeTeamID   int    `json:"home_team_id"`
	HomeTeamName string `json:"home_team_name"`
	AwayTeamID   int    `json:"away_team_id"`
	AwayTeamName string `json:"away_team_name"`
	TipOff       string `json:"tip_off"`
}

type apiScheduleResponse struct {
	Games []apiScheduledGame `json:"games"`
}

type apiRosterResponse struct {
	Players []models.RosterPlayer `json:"players"`
}

type apiPlayersResponse struct {
	Players []models.Player `json:"players"`
}

type apiTeamsResponse struct {
	Teams []models.Team `json:"teams"`
}

// FetchRecentGames retrieves up to limit games for a player, newest first
func (c *Client) FetchRecentGames(ctx context.Context, playerID, limit int) (models.GameLog, error) {
	endpoint := fmt.Sprintf("%s/players/%d/games?limit=%d", c.baseURL, playerID, limit)

	var payload apiGamesResponse
	if err := c.getJSON(ctx, endpoint, fmt.Sprintf("player %d", playerID), &payload); err != nil {
		return models.GameLog{}, err
	}
	return c.toGameLog(payload.Games), nil
}

// FetchGamesVsOpponent retrieves a player's games against one opponent
func (c *Client) FetchGamesVsOpponent(ctx context.Context, playerID, opponentID int) (models.GameLog, error) {
	endpoint := fmt.Sprintf("%s/players/%d/games?opponent=%d", c.baseURL, playerID, opponentID)

	var payload apiGamesResponse
	if err := c.getJSON(ctx, endpoint, fmt.Sprintf("player %d", playerID), &payload); err != nil {
		return models.GameLog{}, err
	}
	return c.toGameLog(payload.Games), nil
}

// FetchTeamContext retrieves season-level pace and defensive standing
func (c *Client) FetchTeamContext(ctx context.Context, teamID int) (models.TeamContext, error) {
	endpoint := fmt.Sprintf("%s/teams/%d/context", c.baseURL, teamID)

	var payload apiTeamContext
	if err := c.getJSON(ctx, endpoint, fmt.Sprintf("team %d", teamID), &payload); err != nil {
		return models.TeamContext{}, err
	}
	return models.TeamContext{
		TeamID:          payload.TeamID,
		DefensiveRating: payload.DefensiveRating,
		LeagueRank:      payload.LeagueRank,
		Pace:            payload.Pace,
		TotalTeams:      payload.TotalTeams,
	}, nil
}

// FetchTodaysGames retrieves the day's scheduled games
func (c *Client) FetchTodaysGames(ctx context.Context) ([]models.ScheduledGame, error) {
	endpoint := fmt.Sprintf("%s/schedule/today", c.baseURL)

	var payload apiScheduleResponse
	if err := c.getJSON(ctx, endpoint, "today's schedule", &payload); err != nil {
		return nil, err
	}

	games := make([]models.ScheduledGame, 0, len(payload.Games))
	for _, g := range payload.Games {
		tipOff, err := time.Parse(time.RFC3339, g.TipOff)
		if err != nil {
			c.logger.WithField("game_id", g.GameID).WithError(err).
				Warn("Unparseable tip-off time in schedule")
		}
		games = append(games, models.ScheduledGame{
			GameID:       g.GameID,
			HomeTeamID:   g.HomeTeamID,
			HomeTeamName: g.HomeTeamName,
			AwayTeamID:   g.AwayTeamID,
			AwayTeamName: g.AwayTeamName,
			TipOff:       tipOff,
		})
	}
	return games, nil
}

// FetchTeamRoster retrieves a team's active roster
func (c *Client) FetchTeamRoster(ctx context.Context, teamID int) ([]models.RosterPlayer, error) {
	endpoint := fmt.Sprintf("%s/teams/%d/roster", c.baseURL, teamID)

	var payload apiRosterResponse
	if err := c.getJSON(ctx, endpoint, fmt.Sprintf("team %d roster", teamID), &payload); err != nil {
		return nil, err
	}
	return payload.Players, nil
}

// SearchPlayer resolves a player by name. The API returns matches ranked
// by relevance; the first match wins.
func (c *Client) SearchPlayer(ctx context.Context, name string) (models.Player, error) {
	endpoint := fmt.Sprintf("%s/players?search=%s", c.baseURL, url.QueryEscape(name))

	var payload apiPlayersResponse
	if err := c.getJSON(ctx, endpoint, fmt.Sprintf("player %q", name), &payload); err != nil {
		return models.Player{}, err
	}
	if len(payload.Players) == 0 {
		return models.Player{}, newNotFoundError(providerName, fmt.Sprintf("no player matching %q", name))
	}
	return payload.Players[0], nil
}

// SearchTeam resolves a team by name or abbreviation
func (c *Client) SearchTeam(ctx context.Context, name string) (models.Team, error) {
	endpoint := fmt.Sprintf("%s/teams?search=%s", c.baseURL, url.QueryEscape(name))

	var payload apiTeamsResponse
	if err := c.getJSON(ctx, endpoint, fmt.Sprintf("team %q", name), &payload); err != nil {
		return models.Team{}, err
	}
	if len(payload.Teams) == 0 {
		return models.Team{}, newNotFoundError(providerName, fmt.Sprintf("no team matching %q", name))
	}
	return payload.Teams[0], nil
}

// getJSON executes a GET request and decodes the JSON response, mapping
// HTTP status codes onto provider error codes.
func (c *Client) getJSON(ctx context.Context, endpoint, subject string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewProviderError(providerName, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewProviderError(providerName, ErrCodeNetworkError, "failed to fetch "+subject, err)
	}
	defer resp.Body.Close()

	c.providerLog.LogRequest(providerName, req.URL.Path, resp.StatusCode,
		float64(time.Since(start).Microseconds())/1000.0, false)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return newNotFoundError(providerName, subject+" not found")
	case resp.StatusCode == http.StatusUnauthorized:
		return NewProviderError(providerName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(providerName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewProviderError(providerName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d fetching %s: %s", resp.StatusCode, subject, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(providerName, ErrCodeInvalidData, "failed to parse "+subject+" response", err)
	}
	return nil
}

// toGameLog converts wire-format games to a GameLog. The API serves game
// logs most recent first; rows with unparseable dates are dropped.
func (c *Client) toGameLog(rows []apiGame) models.GameLog {
	games := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(apiDateFormat, row.Date)
		if err != nil {
			c.logger.WithField("date", row.Date).Warn("Dropping game with unparseable date")
			continue
		}
		games = append(games, models.GameRecord{
			Date:       date,
			IsHome:     row.IsHome,
			OpponentID: row.OpponentTeamID,
			Stats:      row.Stats,
		})
	}
	return models.GameLog{Games: games, Order: models.OrderNewestFirst}
}
