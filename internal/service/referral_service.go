package service

import (
	"context"
	"errors"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferralService applies referral codes and pays the two-sided bonus. This
// is the only path that touches two aggregates in one transaction; rows are
// locked in id order to avoid deadlocks.
type ReferralService struct {
	db           *pgxpool.Pool
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	audit        *AuditService
}

func NewReferralService(db *pgxpool.Pool) *ReferralService {
	return &ReferralService{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		referralRepo: repository.NewReferralRepository(db),
		audit:        NewAuditService(db),
	}
}

// Apply resolves the code, validates the edge and pays both sides. Any
// failure rolls back every mutation.
func (s *ReferralService) Apply(ctx context.Context, referredUserID int64, code string) (*domain.User, error) {
	referrer, err := s.userRepo.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if referrer.ID == referredUserID {
		return nil, ErrSelfReferral
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// lock both aggregates in id order
	firstID, secondID := referrer.ID, referredUserID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	var locked [2]*domain.User
	for i, id := range []int64{firstID, secondID} {
		u, err := s.userRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUnknownReferredUser
			}
			return nil, err
		}
		locked[i] = u
	}

	ref, red := locked[0], locked[1]
	if ref.ID != referrer.ID {
		ref, red = red, ref
	}

	if err := checkReferralEdge(ref, red); err != nil {
		return nil, err
	}

	ref.Coins += domain.ReferrerBonus
	ref.TotalEarnings += domain.ReferrerBonus
	red.Coins += domain.ReferredBonus
	red.TotalEarnings += domain.ReferredBonus

	if err := s.referralRepo.Create(ctx, tx, ref.ID, red.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveState(ctx, tx, ref); err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveState(ctx, tx, red); err != nil {
		return nil, err
	}

	// the bonus ledger entries commit or roll back with the transfer
	if err := s.audit.LogTx(ctx, tx, ref.ID, domain.AuditActionReferralBonus, domain.AuditCategoryReferral, map[string]interface{}{
		"referred_id": red.ID,
		"bonus":       int64(domain.ReferrerBonus),
	}); err != nil {
		return nil, err
	}
	if err := s.audit.LogTx(ctx, tx, red.ID, domain.AuditActionReferralApplied, domain.AuditCategoryReferral, map[string]interface{}{
		"referrer_id": ref.ID,
		"bonus":       int64(domain.ReferredBonus),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return red, nil
}

// checkReferralEdge validates the edge between the two locked aggregates.
// A user carries at most one referrer for life, so an already stamped
// referred_by rejects the code whoever owns it.
func checkReferralEdge(referrer, referred *domain.User) error {
	if referrer.ID == referred.ID {
		return ErrSelfReferral
	}
	if referred.ReferredBy != nil {
		return ErrDuplicateReferral
	}
	return nil
}

// Stats returns referral totals for a user.
func (s *ReferralService) Stats(ctx context.Context, userID int64) (*repository.ReferralStats, error) {
	return s.referralRepo.GetStats(ctx, userID)
}

// List returns the edges the user created.
func (s *ReferralService) List(ctx context.Context, userID int64) ([]domain.Referral, error) {
	return s.referralRepo.ListByReferrer(ctx, userID)
}
