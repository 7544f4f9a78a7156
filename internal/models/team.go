package models

// TeamContext is a read-only snapshot of aggregate team statistics for a
// season, consumed during a single analysis.
type TeamContext struct {
	TeamID          int     `json:"team_id"`
	DefensiveRating float64 `json:"defensive_rating"`
	// LeagueRank orders teams by how generous their defense is:
	// rank 1 allows the most, rank TotalTeams allows the least.
	LeagueRank int     `json:"league_rank"`
	Pace       float64 `json:"pace"`
	TotalTeams int     `json:"total_teams"`
}
