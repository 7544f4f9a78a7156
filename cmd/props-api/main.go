// Package main provides the entry point for the props analysis API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davorpavlov/props-engine/internal/analysis"
	"github.com/davorpavlov/props-engine/internal/api"
	"github.com/davorpavlov/props-engine/internal/config"
	"github.com/davorpavlov/props-engine/internal/health"
	"github.com/davorpavlov/props-engine/internal/logger"
	"github.com/davorpavlov/props-engine/internal/metrics"
	"github.com/davorpavlov/props-engine/internal/nbastats"
	"github.com/davorpavlov/props-engine/internal/scheduler"
	"github.com/davorpavlov/props-engine/internal/scoring"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("PROPS_ENGINE_CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		log.Fatalf("Invalid configuration for %s: %v", cfg.App.Environment, err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Props engine API starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	// Stats provider: rate-limited HTTP client behind a response cache
	httpClient := nbastats.NewRateLimitedHTTPClient(cfg.HTTPClientConfig(), appLog)
	client := nbastats.NewClient(httpClient, cfg.Provider.BaseURL, cfg.Provider.APIKey, appLog)
	provider := nbastats.NewCachedProvider(client, cfg.CacheConfig())

	engine, err := scoring.NewEngine(provider, cfg.ScoringModelConfig(), appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build scoring engine")
	}

	service, err := analysis.NewService(provider, engine, cfg.AnalysisRunConfig(), appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build analysis service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Websocket hub streams completed analyses to connected clients
	hub := api.NewHub(appLog)
	go hub.Run(ctx)
	service.SetResultObserver(hub.Publish)

	apiServer := api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}, service, provider, hub, appLog)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Provider: health.PingFunc(func(ctx context.Context) error {
			_, err := provider.FetchTodaysGames(ctx)
			return err
		}),
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(service, appLog)
		if err := sched.ScheduleDailyAnalysis(cfg.Scheduler.CronExpression, cfg.Analysis.ExportDir); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule daily analysis")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		appLog.WithField("next_run", sched.GetNextRun()).Info("Daily analysis scheduled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	healthServer.SetReady(true)
	appLog.WithField("addr", cfg.Server.Host).Info("Props engine API ready")

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("API server failed")
		}
	}

	healthServer.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Failed to stop scheduler")
		}
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Failed to shut down API server")
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Failed to shut down health server")
	}

	appLog.Info("Props engine API stopped")
}
