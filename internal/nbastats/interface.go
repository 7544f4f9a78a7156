// Package nbastats implements the statistics provider boundary: an HTTP
// client for an NBA statistics API with retry, rate limiting and response
// caching. All transport concerns live here; the scoring core only ever
// sees the Provider interface.
package nbastats

import (
	"context"

	"github.com/davorpavlov/props-engine/internal/models"
)

// Provider defines the full statistics surface the engine and the daily
// orchestrator consume. The scoring core depends only on the first three
// methods; the rest drive game discovery and lookups.
type Provider interface {
	// FetchRecentGames retrieves up to limit games for a player, newest first
	FetchRecentGames(ctx context.Context, playerID, limit int) (models.GameLog, error)

	// FetchGamesVsOpponent retrieves a player's games against one opponent
	FetchGamesVsOpponent(ctx context.Context, playerID, opponentID int) (models.GameLog, error)

	// FetchTeamContext retrieves season-level pace and defensive standing
	FetchTeamContext(ctx context.Context, teamID int) (models.TeamContext, error)

	// FetchTodaysGames retrieves the day's scheduled games
	FetchTodaysGames(ctx context.Context) ([]models.ScheduledGame, error)

	// FetchTeamRoster retrieves a team's active roster
	FetchTeamRoster(ctx context.Context, teamID int) ([]models.RosterPlayer, error)

	// SearchPlayer resolves a player by (partial) name
	SearchPlayer(ctx context.Context, name string) (models.Player, error)

	// SearchTeam resolves a team by (partial) name or abbreviation
	SearchTeam(ctx context.Context, name string) (models.Team, error)

	// Name identifies the provider in logs and errors
	Name() string
}

// Error codes carried by ProviderError
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// ProviderError wraps failures at the provider boundary with the provider
// name and a stable error code.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error so callers can classify with
// errors.Is, in particular against models.ErrNotFound.
func (e ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{Provider: provider, Code: code, Message: message, Err: err}
}

// newNotFoundError creates a not-found error that satisfies
// errors.Is(err, models.ErrNotFound)
func newNotFoundError(provider, message string) ProviderError {
	return ProviderError{Provider: provider, Code: ErrCodeNotFound, Message: message, Err: models.ErrNotFound}
}
