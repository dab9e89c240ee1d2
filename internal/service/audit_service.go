package service

import (
	"context"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditService appends action records. Audit is a non-critical side effect:
// a failed append is logged and swallowed so it can never fail the action
// that produced it.
type AuditService struct {
	repo *repository.AuditRepository
}

func NewAuditService(db *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(db),
	}
}

// Log appends one audit record.
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	entry := &domain.AuditLog{
		RequestID: uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogWithRequest appends one audit record carrying request metadata.
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	entry := &domain.AuditLog{
		RequestID: uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogTx appends one audit record inside the caller's transaction. Unlike
// Log, a failure here propagates: the record commits or rolls back with the
// mutation it describes.
func (s *AuditService) LogTx(ctx context.Context, tx pgx.Tx, userID int64, action, category string, details map[string]interface{}) error {
	entry := &domain.AuditLog{
		RequestID: uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
	}
	return s.repo.CreateWithTx(ctx, tx, entry)
}

// History returns the caller's own recent records.
func (s *AuditService) History(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
