package models

import "time"

// GameOrder declares how the games in a GameLog are ordered. The scoring
// model needs to know which end of the slice is "recent".
type GameOrder string

const (
	// OrderNewestFirst means index 0 holds the most recent game
	OrderNewestFirst GameOrder = "newest_first"
	// OrderChronological means index 0 holds the oldest game
	OrderChronological GameOrder = "chronological"
)

// GameRecord is a single past game for a player. Records are immutable;
// they are produced by the statistics provider and never written back.
type GameRecord struct {
	Date       time.Time          `json:"date"`
	Stats      map[string]float64 `json:"stats"`
	IsHome     bool               `json:"is_home"`
	OpponentID int                `json:"opponent_id"`
}

// Stat returns the value for a stat key and whether it was present
func (g GameRecord) Stat(key string) (float64, bool) {
	v, ok := g.Stats[key]
	return v, ok
}

// GameLog is an ordered sequence of game records with an explicit ordering
type GameLog struct {
	Games []GameRecord `json:"games"`
	Order GameOrder    `json:"order"`
}

// Len returns the number of games in the log
func (l GameLog) Len() int {
	return len(l.Games)
}

// NewestFirst returns the games ordered most-recent-first. The underlying
// slice is copied when a reversal is needed so the log stays immutable.
func (l GameLog) NewestFirst() []GameRecord {
	if l.Order == OrderNewestFirst {
		return l.Games
	}
	reversed := make([]GameRecord, len(l.Games))
	for i, g := range l.Games {
		reversed[len(l.Games)-1-i] = g
	}
	return reversed
}

// Chronological returns the games ordered oldest-first
func (l GameLog) Chronological() []GameRecord {
	if l.Order == OrderChronological {
		return l.Games
	}
	reversed := make([]GameRecord, len(l.Games))
	for i, g := range l.Games {
		reversed[len(l.Games)-1-i] = g
	}
	return reversed
}

// Player is basic player identity information from the provider
type Player struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	TeamID int    `json:"team_id"`
}

// Team is basic team identity information from the provider
type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// RosterPlayer is a roster entry with enough information to drive a
// team-wide analysis sweep
type RosterPlayer struct {
	PlayerID   int     `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Position   string  `json:"position"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// ScheduledGame is an upcoming game from the provider's schedule
type ScheduledGame struct {
	GameID       string    `json:"game_id"`
	HomeTeamID   int       `json:"home_team_id"`
	HomeTeamName string    `json:"home_team_name"`
	AwayTeamID   int       `json:"away_team_id"`
	AwayTeamName string    `json:"away_team_name"`
	TipOff       time.Time `json:"tip_off"`
}
