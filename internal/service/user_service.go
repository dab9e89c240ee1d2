package service

import (
	"context"
	"errors"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/repository"
	"tapgame_webapp/internal/rules"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService owns aggregate lifecycle: lazy creation on first contact with
// an identity, plus read access for the profile endpoints.
type UserService struct {
	db       *pgxpool.Pool
	userRepo *repository.UserRepository
	taskRepo *repository.TaskRepository
	audit    *AuditService
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		taskRepo: repository.NewTaskRepository(db),
		audit:    NewAuditService(db),
	}
}

// GetOrCreate finds the aggregate for a Telegram identity, creating it with
// level-1 defaults and the starter task catalog on first contact.
func (s *UserService) GetOrCreate(ctx context.Context, tgID int64, username, firstName string) (*domain.User, bool, error) {
	u, err := s.userRepo.GetByTgID(ctx, tgID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	u = &domain.User{
		TgID:      tgID,
		Username:  username,
		FirstName: firstName,
	}
	rules.NewUserDefaults(u)

	if err := s.userRepo.Create(ctx, u); err != nil {
		// lost a create race: another request made the row first
		if existing, gerr := s.userRepo.GetByTgID(ctx, tgID); gerr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}

	// starter tasks are a non-critical side effect of signup
	if err := s.taskRepo.SeedStarter(ctx, u.ID); err != nil {
		logger.Error("failed to seed starter tasks", "error", err, "user_id", u.ID)
	}

	s.audit.Log(ctx, u.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, map[string]interface{}{
		"tg_id":   tgID,
		"created": true,
	})

	return u, true, nil
}

// GetByID returns one aggregate.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
