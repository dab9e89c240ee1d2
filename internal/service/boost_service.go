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

// BoostService sells time-windowed stat multipliers.
type BoostService struct {
	db       *pgxpool.Pool
	userRepo *repository.UserRepository
	audit    *AuditService
}

func NewBoostService(db *pgxpool.Pool) *BoostService {
	return &BoostService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		audit:    NewAuditService(db),
	}
}

// Offers returns the purchasable catalog.
func (s *BoostService) Offers() []rules.BoostOffer {
	return rules.BoostOffers
}

// Purchase activates one boost window for the user. Re-purchasing an active
// kind resets its timer; nothing stacks.
func (s *BoostService) Purchase(ctx context.Context, userID int64, kind domain.BoostKind) (*domain.User, error) {
	offer, ok := rules.OfferFor(kind)
	if !ok {
		return nil, rules.ErrUnknownBoost
	}
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

	if err := rules.ActivateBoost(u, kind, offer.Cost, offer.Duration, now); err != nil {
		return nil, err
	}

	if err := s.userRepo.SaveState(ctx, tx, u); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, domain.AuditActionBoostPurchase, domain.AuditCategoryBoost, map[string]interface{}{
		"kind":       string(kind),
		"cost":       offer.Cost,
		"expires_at": u.Boosts.Get(kind).ExpiresAt,
	})

	return u, nil
}
