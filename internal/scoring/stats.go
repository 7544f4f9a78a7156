package scoring

import (
	"math"

	"github.com/davorpavlov/props-engine/internal/models"
)

// statValues extracts the values of a stat from a slice of games, skipping
// games where the stat is missing.
func statValues(games []models.GameRecord, statKey string) []float64 {
	values := make([]float64, 0, len(games))
	for _, game := range games {
		if v, ok := game.Stats[statKey]; ok {
			values = append(values, v)
		}
	}
	return values
}

// Average returns the arithmetic mean of values, or 0 for an empty slice
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Average(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Consistency returns the fraction of values meeting or exceeding threshold
func Consistency(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	hits := 0
	for _, v := range values {
		if v >= threshold {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}

// Slope returns the least-squares slope of values against their indices.
// Values must be in chronological order; a positive slope means the stat is
// rising game over game.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	// x values are 0..n-1, so the sums have closed forms
	sumX := float64(n*(n-1)) / 2
	sumXX := float64((n - 1) * n * (2*n - 1) / 6)
	sumY := 0.0
	sumXY := 0.0
	for i, v := range values {
		sumY += v
		sumXY += float64(i) * v
	}

	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}

// TrendOf classifies chronological values by their least-squares slope.
// Slopes within tolerance of zero are stable.
func TrendOf(values []float64, tolerance float64) models.TrendDirection {
	slope := Slope(values)
	switch {
	case slope > tolerance:
		return models.TrendUp
	case slope < -tolerance:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// Normalize maps v onto [0,1] over the reference interval [lo, hi],
// clamping values outside the interval. A degenerate interval (hi == lo)
// carries no signal and maps everything to 0.5.
func Normalize(v, lo, hi float64) float64 {
	if hi == lo {
		return neutralScore
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lineBand returns the normalization interval around a prop line
func (c Config) lineBand(line float64) (lo, hi float64) {
	return line * (1 - c.LineBandPct), line * (1 + c.LineBandPct)
}

// reversed returns a copy of games in the opposite order
func reversed(games []models.GameRecord) []models.GameRecord {
	out := make([]models.GameRecord, len(games))
	for i, g := range games {
		out[len(games)-1-i] = g
	}
	return out
}
