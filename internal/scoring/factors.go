package scoring

import (
	"github.com/davorpavlov/props-engine/internal/models"
)

// recentFormFactor scores how the player's form window stacks up against
// the prop line. The score blends the line-normalized window average with
// the fraction of window games clearing the line, then shifts by the trend
// bonus when the stat is clearly rising or falling.
func (e *Engine) recentFormFactor(window []models.GameRecord, statKey string, line float64, reducedSample bool) models.FactorResult {
	values := statValues(window, statKey)
	avg := Average(values)
	stdDev := StdDev(values)
	consistency := Consistency(values, line)

	chrono := statValues(reversed(window), statKey)
	trend := TrendOf(chrono, e.cfg.TrendTolerance)

	lo, hi := e.cfg.lineBand(line)
	score := formAvgWeight*Normalize(avg, lo, hi) + formConsistencyWeight*consistency
	switch trend {
	case models.TrendUp:
		score += e.cfg.TrendBonus
	case models.TrendDown:
		score -= e.cfg.TrendBonus
	}

	return models.FactorResult{
		Score: Clamp(score, 0, 1),
		Detail: models.RecentFormDetail{
			RecentAvg:      avg,
			ConsistencyPct: consistency,
			Trend:          trend,
			StdDev:         stdDev,
			GamesAnalyzed:  len(values),
			ReducedSample:  reducedSample,
		},
	}
}

// matchupFactor scores the player's head-to-head history against tonight's
// opponent. Thin samples fall back to the recent average so one hot game
// two seasons ago cannot dominate the score.
func (e *Engine) matchupFactor(vsGames []models.GameRecord, statKey string, line, recentAvg float64) models.FactorResult {
	values := statValues(vsGames, statKey)
	avg := Average(values)
	usedFallback := len(values) < e.cfg.MinGamesForMatchup
	if usedFallback {
		avg = recentAvg
	}

	lo, hi := e.cfg.lineBand(line)
	return models.FactorResult{
		Score: Normalize(avg, lo, hi),
		Detail: models.MatchupDetail{
			VsOpponentAvg: avg,
			Games:         len(values),
			UsedFallback:  usedFallback,
		},
	}
}

// splitFactor scores the player's average at tonight's venue type, drawn
// from the fetched game history. Thin location samples fall back to the
// overall recent average.
func (e *Engine) splitFactor(games []models.GameRecord, statKey string, isHome bool, line, recentAvg float64) models.FactorResult {
	location := "away"
	if isHome {
		location = "home"
	}

	locationGames := make([]models.GameRecord, 0, len(games))
	for _, g := range games {
		if g.IsHome == isHome {
			locationGames = append(locationGames, g)
		}
	}

	values := statValues(locationGames, statKey)
	avg := Average(values)
	usedFallback := len(values) < e.cfg.MinGamesForSplit
	if usedFallback {
		avg = recentAvg
	}

	lo, hi := e.cfg.lineBand(line)
	return models.FactorResult{
		Score: Normalize(avg, lo, hi),
		Detail: models.SplitDetail{
			Location:     location,
			LocationAvg:  avg,
			Games:        len(values),
			UsedFallback: usedFallback,
		},
	}
}

// defenseFactor scores the opponent's defensive quality by league rank.
// Rank 1 is the most generous defense, so low ranks score high for the
// over. A missing rank is a neutral signal.
func (e *Engine) defenseFactor(opponent models.TeamContext) models.FactorResult {
	detail := models.DefenseDetail{
		LeagueRank:      opponent.LeagueRank,
		TotalTeams:      opponent.TotalTeams,
		DefensiveRating: opponent.DefensiveRating,
	}

	total := float64(opponent.TotalTeams)
	if total == 0 {
		total = e.cfg.RankReferenceRange.Hi
	}
	if opponent.LeagueRank <= 0 || total <= 1 {
		return models.FactorResult{Score: neutralScore, Detail: detail}
	}

	score := (total - float64(opponent.LeagueRank)) / (total - 1)
	return models.FactorResult{Score: Clamp(score, 0, 1), Detail: detail}
}

// paceFactor scores the expected possession count of the game by averaging
// both teams' pace and normalizing over the league reference range.
func (e *Engine) paceFactor(team, opponent models.TeamContext) models.FactorResult {
	detail := models.PaceDetail{
		TeamPace:     team.Pace,
		OpponentPace: opponent.Pace,
	}
	if team.Pace == 0 || opponent.Pace == 0 {
		return models.FactorResult{Score: neutralScore, Detail: detail}
	}

	detail.AvgPace = (team.Pace + opponent.Pace) / 2
	score := Normalize(detail.AvgPace, e.cfg.PaceReferenceRange.Lo, e.cfg.PaceReferenceRange.Hi)
	return models.FactorResult{Score: score, Detail: detail}
}

// usageFactor scores the player's recent workload from minutes played.
// Games without minutes data carry no signal and produce a neutral score.
func (e *Engine) usageFactor(window, allGames []models.GameRecord) models.FactorResult {
	recentMinutes := statValues(window, models.StatMinutes)
	if len(recentMinutes) == 0 {
		return models.FactorResult{
			Score:  neutralScore,
			Detail: models.UsageDetail{MinutesTrend: models.TrendStable},
		}
	}

	recentAvg := Average(recentMinutes)
	overallAvg := Average(statValues(allGames, models.StatMinutes))
	chrono := statValues(reversed(window), models.StatMinutes)
	trend := TrendOf(chrono, e.cfg.TrendTolerance)

	score := Normalize(recentAvg, e.cfg.UsageMinutesRange.Lo, e.cfg.UsageMinutesRange.Hi)
	switch trend {
	case models.TrendUp:
		score += e.cfg.TrendBonus
	case models.TrendDown:
		score -= e.cfg.TrendBonus
	}

	return models.FactorResult{
		Score: Clamp(score, 0, 1),
		Detail: models.UsageDetail{
			RecentMinutes:  recentAvg,
			OverallMinutes: overallAvg,
			MinutesTrend:   trend,
			DataAvailable:  true,
		},
	}
}
