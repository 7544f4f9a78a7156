// Package main provides the daily analysis CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/davorpavlov/props-engine/internal/analysis"
	"github.com/davorpavlov/props-engine/internal/config"
	applogger "github.com/davorpavlov/props-engine/internal/logger"
	"github.com/davorpavlov/props-engine/internal/models"
	"github.com/davorpavlov/props-engine/internal/nbastats"
	"github.com/davorpavlov/props-engine/internal/scheduler"
	"github.com/davorpavlov/props-engine/internal/scoring"
)

var (
	configFile    string
	exportDir     string
	opponentName  string
	isHome        bool
	propsArg      string
	cronOverride  string
	minConfidence float64

	cfg     *config.Config
	logger  *logrus.Logger
	service *analysis.Service
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().StringVarP(&exportDir, "export-dir", "o", "", "Directory for JSON and CSV exports (empty disables export)")
	runCmd.Flags().Float64Var(&minConfidence, "min-confidence", -1, "Override the minimum confidence filter")
	playerCmd.Flags().StringVar(&opponentName, "opponent", "", "Opponent team name or abbreviation")
	playerCmd.Flags().BoolVar(&isHome, "home", false, "Treat the game as a home game for the player")
	playerCmd.Flags().StringVar(&propsArg, "props", "points", "Comma-separated props, each 'type' or 'type=line'")
	scheduleCmd.Flags().StringVar(&cronOverride, "cron", "", "Override the configured cron expression")
}

var rootCmd = &cobra.Command{
	Use:   "daily-analysis",
	Short: "Analyze NBA player props",
	Long:  `Score player prop bets for today's slate or a single player and export the highest-confidence picks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze today's full slate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return runDailyAnalysis(ctx)
	},
}

var playerCmd = &cobra.Command{
	Use:   "player [name]",
	Short: "Analyze props for a single player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if opponentName == "" {
			return fmt.Errorf("--opponent is required")
		}
		return runPlayerAnalysis(cmd.Context(), args[0])
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily analysis on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScheduled(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(runCmd, playerCmd, scheduleCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func setupDependencies() error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	httpClient := nbastats.NewRateLimitedHTTPClient(cfg.HTTPClientConfig(), logger)
	client := nbastats.NewClient(httpClient, cfg.Provider.BaseURL, cfg.Provider.APIKey, logger)
	provider := nbastats.NewCachedProvider(client, cfg.CacheConfig())

	engine, err := scoring.NewEngine(provider, cfg.ScoringModelConfig(), logger)
	if err != nil {
		return err
	}

	runCfg := cfg.AnalysisRunConfig()
	if minConfidence >= 0 {
		runCfg.MinConfidence = minConfidence
	}

	service, err = analysis.NewService(provider, engine, runCfg, logger)
	return err
}

func runDailyAnalysis(ctx context.Context) error {
	run, err := service.RunDailyAnalysis(ctx)
	if err != nil {
		return fmt.Errorf("daily analysis failed: %w", err)
	}

	summary := run.Summary
	analysisLog := applogger.NewAnalysisLogger(logger)
	analysisLog.LogRunSummary(summary.RunID, summary.GamesAnalyzed, summary.PropsAnalyzed,
		summary.Failures, summary.PicksReported,
		float64(summary.CompletedAt.Sub(summary.StartedAt).Milliseconds()))

	picksLog := applogger.NewPicksLogger(logger)
	for _, pick := range run.Picks {
		picksLog.LogPick(summary.RunID, pick.PlayerID, pick.PlayerName, string(pick.PropType),
			pick.PropLine, pick.ProjectedValue, pick.EdgePct, pick.ConfidenceScore,
			string(pick.Recommendation), pick.GeneratedAt)
	}

	if err := analysis.RenderConsole(os.Stdout, run); err != nil {
		return err
	}

	if exportDir != "" {
		date := run.Summary.StartedAt.Format("2006-01-02")
		jsonPath := filepath.Join(exportDir, fmt.Sprintf("daily_analysis_%s.json", date))
		csvPath := filepath.Join(exportDir, fmt.Sprintf("daily_analysis_%s.csv", date))

		if err := analysis.ExportJSON(jsonPath, run); err != nil {
			return fmt.Errorf("JSON export failed: %w", err)
		}
		if err := analysis.ExportCSV(csvPath, run); err != nil {
			return fmt.Errorf("CSV export failed: %w", err)
		}
		picksLog.LogExport(summary.RunID, "json", jsonPath, len(run.Picks))
		picksLog.LogExport(summary.RunID, "csv", csvPath, len(run.Picks))
	}

	return nil
}

func runPlayerAnalysis(ctx context.Context, playerName string) error {
	props, err := parseProps(propsArg)
	if err != nil {
		return err
	}

	result, err := service.AnalyzePlayerProps(ctx, playerName, opponentName, isHome, props)
	if err != nil {
		return fmt.Errorf("player analysis failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runScheduled(ctx context.Context) error {
	cronExpression := cfg.Scheduler.CronExpression
	if cronOverride != "" {
		cronExpression = cronOverride
	}

	sched := scheduler.NewScheduler(service, logger)
	if err := sched.ScheduleDailyAnalysis(cronExpression, cfg.Analysis.ExportDir); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"cron":     cronExpression,
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Scheduler running, waiting for signal")

	<-ctx.Done()
	return sched.Stop()
}

// parseProps parses a comma-separated prop list. Each entry is either a
// bare prop type, which leaves the line for the engine to estimate, or
// 'type=line' with an explicit posted line.
func parseProps(arg string) (map[models.PropType]float64, error) {
	props := make(map[models.PropType]float64)
	for _, entry := range strings.Split(arg, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, lineStr, hasLine := strings.Cut(entry, "=")
		propType := models.PropType(strings.TrimSpace(name))
		if !propType.IsValid() {
			return nil, fmt.Errorf("unsupported prop type %q", name)
		}

		line := 0.0
		if hasLine {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(lineStr), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid line for %q: %w", name, err)
			}
			line = parsed
		}
		props[propType] = line
	}

	if len(props) == 0 {
		return nil, fmt.Errorf("no props given")
	}
	return props, nil
}
