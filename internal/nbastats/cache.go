package nbastats

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/davorpavlov/props-engine/internal/models"
)

// CacheConfig sets TTLs per data class. Game logs move slowly during a
// day; schedules and contexts are refreshed more often.
type CacheConfig struct {
	GameLogTTL     time.Duration
	TeamContextTTL time.Duration
	ScheduleTTL    time.Duration
	LookupTTL      time.Duration
}

// DefaultCacheConfig returns the production cache TTLs
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		GameLogTTL:     30 * time.Minute,
		TeamContextTTL: 1 * time.Hour,
		ScheduleTTL:    15 * time.Minute,
		LookupTTL:      24 * time.Hour,
	}
}

// CachedProvider wraps a Provider with an in-memory TTL cache. Errors are
// never cached; only successful responses are stored.
type CachedProvider struct {
	inner Provider
	cache *cache.Cache
	cfg   CacheConfig
}

// NewCachedProvider wraps a provider with response caching
func NewCachedProvider(inner Provider, cfg CacheConfig) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: cache.New(cfg.GameLogTTL, 10*time.Minute),
		cfg:   cfg,
	}
}

// Name returns the wrapped provider's name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// FetchRecentGames retrieves recent games through the cache
func (p *CachedProvider) FetchRecentGames(ctx context.Context, playerID, limit int) (models.GameLog, error) {
	key := fmt.Sprintf("recent:%d:%d", playerID, limit)
	if cached, found := p.cache.Get(key); found {
		return cached.(models.GameLog), nil
	}

	log, err := p.inner.FetchRecentGames(ctx, playerID, limit)
	if err != nil {
		return models.GameLog{}, err
	}
	p.cache.Set(key, log, p.cfg.GameLogTTL)
	return log, nil
}

// FetchGamesVsOpponent retrieves head-to-head games through the cache
func (p *CachedProvider) FetchGamesVsOpponent(ctx context.Context, playerID, opponentID int) (models.GameLog, error) {
	key := fmt.Sprintf("vs:%d:%d", playerID, opponentID)
	if cached, found := p.cache.Get(key); found {
		return cached.(models.GameLog), nil
	}

	log, err := p.inner.FetchGamesVsOpponent(ctx, playerID, opponentID)
	if err != nil {
		return models.GameLog{}, err
	}
	p.cache.Set(key, log, p.cfg.GameLogTTL)
	return log, nil
}

// FetchTeamContext retrieves team context through the cache
func (p *CachedProvider) FetchTeamContext(ctx context.Context, teamID int) (models.TeamContext, error) {
	key := fmt.Sprintf("teamctx:%d", teamID)
	if cached, found := p.cache.Get(key); found {
		return cached.(models.TeamContext), nil
	}

	teamCtx, err := p.inner.FetchTeamContext(ctx, teamID)
	if err != nil {
		return models.TeamContext{}, err
	}
	p.cache.Set(key, teamCtx, p.cfg.TeamContextTTL)
	return teamCtx, nil
}

// FetchTodaysGames retrieves the schedule through the cache
func (p *CachedProvider) FetchTodaysGames(ctx context.Context) ([]models.ScheduledGame, error) {
	const key = "schedule:today"
	if cached, found := p.cache.Get(key); found {
		return cached.([]models.ScheduledGame), nil
	}

	games, err := p.inner.FetchTodaysGames(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, games, p.cfg.ScheduleTTL)
	return games, nil
}

// FetchTeamRoster retrieves a roster through the cache
func (p *CachedProvider) FetchTeamRoster(ctx context.Context, teamID int) ([]models.RosterPlayer, error) {
	key := fmt.Sprintf("roster:%d", teamID)
	if cached, found := p.cache.Get(key); found {
		return cached.([]models.RosterPlayer), nil
	}

	roster, err := p.inner.FetchTeamRoster(ctx, teamID)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, roster, p.cfg.TeamContextTTL)
	return roster, nil
}

// SearchPlayer resolves a player through the cache
func (p *CachedProvider) SearchPlayer(ctx context.Context, name string) (models.Player, error) {
	key := "player:" + name
	if cached, found := p.cache.Get(key); found {
		return cached.(models.Player), nil
	}

	player, err := p.inner.SearchPlayer(ctx, name)
	if err != nil {
		return models.Player{}, err
	}
	p.cache.Set(key, player, p.cfg.LookupTTL)
	return player, nil
}

// SearchTeam resolves a team through the cache
func (p *CachedProvider) SearchTeam(ctx context.Context, name string) (models.Team, error) {
	key := "team:" + name
	if cached, found := p.cache.Get(key); found {
		return cached.(models.Team), nil
	}

	team, err := p.inner.SearchTeam(ctx, name)
	if err != nil {
		return models.Team{}, err
	}
	p.cache.Set(key, team, p.cfg.LookupTTL)
	return team, nil
}

// Flush drops all cached responses
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}
