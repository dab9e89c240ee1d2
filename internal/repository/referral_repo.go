package repository

import (
	"context"

	"tapgame_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralStats struct {
	TotalReferrals int   `json:"total_referrals"`
	TotalEarned    int64 `json:"total_earned"`
}

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Create inserts the edge and stamps referred_by on the referred user, all
// inside the caller's transaction.
func (r *ReferralRepository) Create(ctx context.Context, tx pgx.Tx, referrerID, referredID int64) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO referrals (referrer_id, referred_id) VALUES ($1, $2)`,
		referrerID, referredID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE id = $2 AND referred_by IS NULL`,
		referrerID, referredID)
	return err
}

// ListByReferrer returns all edges a user created, newest first.
func (r *ReferralRepository) ListByReferrer(ctx context.Context, userID int64) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, referrer_id, referred_id, created_at
		 FROM referrals
		 WHERE referrer_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, ref)
	}
	return res, rows.Err()
}

// GetStats returns referral totals for a user.
func (r *ReferralRepository) GetStats(ctx context.Context, userID int64) (*ReferralStats, error) {
	stats := &ReferralStats{}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`, userID,
	).Scan(&stats.TotalReferrals)
	if err != nil {
		return nil, err
	}
	stats.TotalEarned = int64(stats.TotalReferrals) * domain.ReferrerBonus
	return stats, nil
}
