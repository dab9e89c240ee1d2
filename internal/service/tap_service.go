package service

import (
	"context"
	"errors"
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/repository"
	"tapgame_webapp/internal/rules"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TapService runs the tap path: lock the aggregate row, apply the shared
// reward rules, advance task progression, persist, audit. Concurrent taps
// for the same identity serialize on the row lock so no update is lost.
type TapService struct {
	db       *pgxpool.Pool
	userRepo *repository.UserRepository
	taskRepo *repository.TaskRepository
	audit    *AuditService
}

func NewTapService(db *pgxpool.Pool) *TapService {
	return &TapService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		taskRepo: repository.NewTaskRepository(db),
		audit:    NewAuditService(db),
	}
}

// Tap applies a batch of n taps for one user and returns the fresh
// aggregate. Business-rule failures (insufficient energy, bad count) leave
// no partial state behind.
func (s *TapService) Tap(ctx context.Context, userID int64, n int) (*domain.User, rules.TapResult, error) {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, rules.TapResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, rules.TapResult{}, ErrUserNotFound
		}
		return nil, rules.TapResult{}, err
	}

	res, err := rules.ApplyTaps(u, n, now)
	if err != nil {
		return nil, rules.TapResult{}, err
	}

	// Progression rides the same transaction and row lock. Its failure is
	// non-critical: the tap itself must still land.
	if err := s.advanceProgression(ctx, tx, u, res, now); err != nil {
		logger.Error("task progression failed", "error", err, "user_id", userID)
	}

	if err := s.userRepo.SaveState(ctx, tx, u); err != nil {
		return nil, rules.TapResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, rules.TapResult{}, err
	}

	s.audit.Log(ctx, userID, domain.AuditActionTap, domain.AuditCategoryTap, map[string]interface{}{
		"taps":         res.Taps,
		"coins_before": res.CoinsBefore,
		"coins_after":  res.CoinsAfter,
		"xp_earned":    res.XPEarned,
		"levels":       res.LevelsGained,
	})

	return u, res, nil
}

// advanceProgression pushes the tap's deltas into daily tasks and the
// aggregate's counters into achievements, persisting every change and
// inserting spawned tiers (duplicate spawns are suppressed by the unique
// task id).
func (s *TapService) advanceProgression(ctx context.Context, tx pgx.Tx, u *domain.User, res rules.TapResult, now time.Time) error {
	tasks, err := s.taskRepo.ListByUserTx(ctx, tx, u.ID)
	if err != nil {
		return err
	}

	deltas := rules.Counters{
		Taps:        int64(res.Taps),
		CoinsEarned: res.CoinsEarned,
		EnergyUsed:  int64(res.EnergyUsed),
	}
	dailyChanged := rules.AdvanceDailies(tasks, deltas, now)
	tasks, prog := rules.AdvanceAchievements(tasks, u, now)

	saved := make(map[int]bool)
	for _, i := range dailyChanged {
		if err := s.taskRepo.Save(ctx, tx, &tasks[i]); err != nil {
			return err
		}
		saved[i] = true
	}
	for _, i := range prog.Changed {
		if saved[i] {
			continue
		}
		if err := s.taskRepo.Save(ctx, tx, &tasks[i]); err != nil {
			return err
		}
	}
	for _, i := range prog.Spawned {
		if err := s.taskRepo.Insert(ctx, tx, &tasks[i]); err != nil {
			return err
		}
	}

	for _, ev := range prog.Events {
		s.audit.Log(ctx, u.ID, domain.AuditActionTaskClaim, domain.AuditCategoryTask, map[string]interface{}{
			"task_id": ev.TaskID,
			"reward":  ev.Reward,
			"spawned": ev.Spawned,
			"auto":    true,
		})
	}
	return nil
}
