// Package scheduler runs the periodic scan and the daily quota reset
// on cron schedules.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"fno-signals/internal/config"
	"fno-signals/internal/signal"
	"fno-signals/pkg/utils"
)

// Scheduler manages the cron tasks around the signal engine.
type Scheduler struct {
	cron        *cron.Cron
	engine      *signal.Engine
	instruments []string
	logger      zerolog.Logger
	ctx         context.Context
}

// NewScheduler builds a scheduler over the engine. Cron expressions
// include a seconds field.
func NewScheduler(ctx context.Context, engine *signal.Engine, instruments []string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		engine:      engine,
		instruments: instruments,
		logger:      logger,
		ctx:         ctx,
	}
}

// Register wires the scan and reset schedules.
func (s *Scheduler) Register(cfg config.SchedulerConfig) error {
	if _, err := s.cron.AddFunc(cfg.ScanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.ResetCron, s.resetTask); err != nil {
		return fmt.Errorf("register reset task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunScanNow triggers a scan outside the schedule, for manual runs.
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	if !utils.IsMarketOpen() {
		s.logger.Debug().Msg("Market closed, skipping scan")
		return
	}
	s.engine.Scan(s.ctx, s.instruments)
}

func (s *Scheduler) resetTask() {
	s.engine.ResetDailyCounters()
}
