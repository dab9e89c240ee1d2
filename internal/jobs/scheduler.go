package jobs

import (
	"context"
	"time"

	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/repository"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the background sweeps: passive energy regen, expired
// boost cleanup and the midnight daily-task re-arm.
type Scheduler struct {
	cron     *cron.Cron
	users    *repository.UserRepository
	tasks    *repository.TaskRepository
	tickSecs int
}

func NewScheduler(users *repository.UserRepository, tasks *repository.TaskRepository, tickSecs int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		users:    users,
		tasks:    tasks,
		tickSecs: tickSecs,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.sweepMinute); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * *", s.resetDailies); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("scheduler started", "regen_tick_seconds", s.tickSecs)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepMinute() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n, err := s.users.RegenEnergyAll(ctx, s.tickSecs); err != nil {
		logger.Error("energy regen sweep failed", "error", err)
	} else if n > 0 {
		logger.Debug("energy regenerated", "users", n)
	}

	if n, err := s.users.SweepExpiredBoosts(ctx); err != nil {
		logger.Error("boost sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("expired boosts swept", "users", n)
	}
}

func (s *Scheduler) resetDailies() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := s.tasks.ResetDailyAll(ctx)
	if err != nil {
		logger.Error("daily task reset failed", "error", err)
		return
	}
	logger.Info("daily tasks re-armed", "tasks", n)
}
