package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/davorpavlov/props-engine/internal/models"
)

// ExportJSON writes a run result as pretty-printed JSON
func ExportJSON(path string, run *RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating JSON export %s: %w", path, err)
	}
	defer f.Close()

	display := *run
	display.Picks = roundedPicks(run.Picks)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(display); err != nil {
		return fmt.Errorf("writing JSON export %s: %w", path, err)
	}
	return nil
}

// ExportCSV writes the picks of a run as a flat CSV table
func ExportCSV(path string, run *RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV export %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"player", "prop_type", "line", "projected", "edge", "edge_pct",
		"confidence", "label", "recommendation", "home",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV export %s: %w", path, err)
	}

	for _, pick := range roundedPicks(run.Picks) {
		row := []string{
			pick.PlayerName,
			string(pick.PropType),
			formatFloat(pick.PropLine),
			formatFloat(pick.ProjectedValue),
			formatFloat(pick.Edge),
			formatFloat(pick.EdgePct),
			strconv.FormatFloat(pick.ConfidenceScore, 'f', 3, 64),
			string(pick.ConfidenceLabel),
			string(pick.Recommendation),
			strconv.FormatBool(pick.IsHomeGame),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV export %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

// RenderConsole writes a human-readable run report
func RenderConsole(w io.Writer, run *RunResult) error {
	s := run.Summary
	fmt.Fprintf(w, "Daily analysis run %s\n", s.RunID)
	fmt.Fprintf(w, "  games: %d  props analyzed: %d  failures: %d  picks: %d (min confidence %.2f)\n\n",
		s.GamesAnalyzed, s.PropsAnalyzed, s.Failures, s.PicksReported, s.MinConfidence)

	if len(run.Picks) == 0 {
		fmt.Fprintln(w, "No picks cleared the confidence filter.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tPROP\tLINE\tPROJ\tEDGE%\tCONF\tREC")
	for _, pick := range roundedPicks(run.Picks) {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%+.1f\t%.3f\t%s\n",
			pick.PlayerName, pick.PropType, pick.PropLine, pick.ProjectedValue,
			pick.EdgePct, pick.ConfidenceScore, pick.Recommendation)
	}
	return tw.Flush()
}

func roundedPicks(picks []models.PropAnalysis) []models.PropAnalysis {
	out := make([]models.PropAnalysis, len(picks))
	for i := range picks {
		out[i] = picks[i].Rounded()
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
