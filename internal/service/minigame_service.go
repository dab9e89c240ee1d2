package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/repository"
	"tapgame_webapp/internal/rules"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MinigameService runs the chance games. Each call is a single independent
// weighted draw; nothing pending survives the transaction.
type MinigameService struct {
	db       *pgxpool.Pool
	userRepo *repository.UserRepository
	audit    *AuditService
}

func NewMinigameService(db *pgxpool.Pool) *MinigameService {
	return &MinigameService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		audit:    NewAuditService(db),
	}
}

// cryptoDraw returns a uniform draw in [0,1) from crypto/rand. A failing
// entropy source aborts the play rather than fixing the outcome.
func cryptoDraw() (float64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return 0, err
	}
	return float64(n.Int64()) / 1000000.0, nil
}

// Play stakes coins on one game and returns the outcome with the fresh
// aggregate.
func (s *MinigameService) Play(ctx context.Context, userID int64, kind rules.GameKind, stake int64) (*domain.User, rules.GameResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, rules.GameResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, rules.GameResult{}, ErrUserNotFound
		}
		return nil, rules.GameResult{}, err
	}

	draw, err := cryptoDraw()
	if err != nil {
		return nil, rules.GameResult{}, err
	}

	res, err := rules.PlayGame(u, kind, stake, draw)
	if err != nil {
		return nil, rules.GameResult{}, err
	}

	if err := s.userRepo.SaveState(ctx, tx, u); err != nil {
		return nil, rules.GameResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, rules.GameResult{}, err
	}

	s.audit.Log(ctx, userID, auditActionFor(kind), domain.AuditCategoryGame, map[string]interface{}{
		"stake":      res.Stake,
		"multiplier": res.Multiplier,
		"payout":     res.Payout,
		"net":        res.Net,
		"diamonds":   res.Diamonds,
	})

	return u, res, nil
}

func auditActionFor(kind rules.GameKind) string {
	switch kind {
	case rules.GameTreasure:
		return domain.AuditActionGameTreasure
	case rules.GameFlip:
		return domain.AuditActionGameFlip
	default:
		return domain.AuditActionGameSpin
	}
}
