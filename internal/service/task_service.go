package service

import (
	"context"
	"errors"
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/repository"
	"tapgame_webapp/internal/rules"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SocialVerifier checks out-of-band social task completion (joined the
// channel, followed the account). The production collaborator does not
// exist yet; the stub accepts everything.
type SocialVerifier interface {
	Verify(ctx context.Context, userID int64, taskID string) (bool, error)
}

// StubVerifier always passes. A real verification collaborator should
// replace it before social rewards carry value.
type StubVerifier struct{}

func (StubVerifier) Verify(ctx context.Context, userID int64, taskID string) (bool, error) {
	return true, nil
}

// TaskService handles listing, explicit claims and the daily reset.
type TaskService struct {
	db       *pgxpool.Pool
	userRepo *repository.UserRepository
	taskRepo *repository.TaskRepository
	audit    *AuditService
	verifier SocialVerifier
}

func NewTaskService(db *pgxpool.Pool) *TaskService {
	return &TaskService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		taskRepo: repository.NewTaskRepository(db),
		audit:    NewAuditService(db),
		verifier: StubVerifier{},
	}
}

// List returns the user's task progress records.
func (s *TaskService) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	return s.taskRepo.ListByUser(ctx, userID)
}

// Claim applies an explicit claim on a daily or social task and credits the
// reward, all in one transaction.
func (s *TaskService) Claim(ctx context.Context, userID int64, taskID string) (*domain.User, int64, error) {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}

	t, err := s.taskRepo.GetForUpdate(ctx, tx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, err
	}

	if t.Family == domain.TaskFamilySocial {
		ok, err := s.verifier.Verify(ctx, userID, taskID)
		if err != nil || !ok {
			return nil, 0, rules.ErrTaskRequirementsNotMet
		}
	}

	reward, err := rules.ClaimTask(t, u, now)
	if err != nil {
		return nil, 0, err
	}

	if err := s.taskRepo.Save(ctx, tx, t); err != nil {
		return nil, 0, err
	}
	if err := s.userRepo.SaveState(ctx, tx, u); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}

	s.audit.Log(ctx, userID, domain.AuditActionTaskClaim, domain.AuditCategoryTask, map[string]interface{}{
		"task_id": taskID,
		"reward":  reward,
	})

	return u, reward, nil
}

// DailyReset is the login-triggered daily rollover for one user: the streak
// advances (or restarts) and daily-family tasks clear. Re-running it on the
// same calendar day is a no-op.
func (s *TaskService) DailyReset(ctx context.Context, userID int64) (*domain.User, error) {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !rules.ResetDaily(u, now) {
		// already rolled over today
		return u, tx.Commit(ctx)
	}

	if err := s.taskRepo.ResetDailyForUser(ctx, tx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveState(ctx, tx, u); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, domain.AuditActionDailyReset, domain.AuditCategoryTask, map[string]interface{}{
		"streak": u.DailyStreak,
	})

	return u, nil
}
