// Package scheduler runs analysis jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/davorpavlov/props-engine/internal/analysis"
)

// Scheduler manages scheduled analysis runs
type Scheduler struct {
	cron            *cron.Cron
	analysisSvc     *analysis.Service
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(analysisSvc *analysis.Service, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		analysisSvc:     analysisSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleDailyAnalysis schedules a full slate analysis. When exportDir
// is non-empty the run is written there as JSON and CSV, named by date.
func (s *Scheduler) ScheduleDailyAnalysis(cronExpression, exportDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.logger.Info("Starting scheduled daily analysis")

		run, err := s.analysisSvc.RunDailyAnalysis(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled daily analysis failed")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"run_id": run.Summary.RunID,
			"picks":  run.Summary.PicksReported,
		}).Info("Scheduled daily analysis completed")

		if exportDir != "" {
			s.exportRun(exportDir, run)
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled daily analysis job")

	return nil
}

func (s *Scheduler) exportRun(dir string, run *analysis.RunResult) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.WithError(err).Error("Failed to create export directory")
		return
	}

	stamp := run.Summary.CompletedAt.Format("2006-01-02")
	jsonPath := filepath.Join(dir, fmt.Sprintf("daily_analysis_%s.json", stamp))
	csvPath := filepath.Join(dir, fmt.Sprintf("daily_analysis_%s.csv", stamp))

	if err := analysis.ExportJSON(jsonPath, run); err != nil {
		s.logger.WithError(err).Error("Failed to export run as JSON")
	}
	if err := analysis.ExportCSV(csvPath, run); err != nil {
		s.logger.WithError(err).Error("Failed to export run as CSV")
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler shutdown timed out with jobs still running")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
