package repository

import (
	"context"
	"errors"

	"tapgame_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

const userColumns = `id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''),
	coins, diamonds, total_earnings, level, experience, taps_count, coins_per_tap,
	energy, max_energy,
	tap_boost_multiplier, tap_boost_expires_at,
	energy_boost_multiplier, energy_boost_expires_at,
	xp_boost_multiplier, xp_boost_expires_at,
	level_boost_multiplier, level_boost_expires_at,
	daily_streak, last_login_date, referral_code, referred_by, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// row abstracts pgx.Row so scans work against both pool and tx queries.
type row interface {
	Scan(dest ...any) error
}

func scanUser(r row) (*domain.User, error) {
	var u domain.User
	err := r.Scan(
		&u.ID, &u.TgID, &u.Username, &u.FirstName,
		&u.Coins, &u.Diamonds, &u.TotalEarnings, &u.Level, &u.Experience, &u.TapsCount, &u.CoinsPerTap,
		&u.Energy, &u.MaxEnergy,
		&u.Boosts.TapPower.Multiplier, &u.Boosts.TapPower.ExpiresAt,
		&u.Boosts.Energy.Multiplier, &u.Boosts.Energy.ExpiresAt,
		&u.Boosts.XP.Multiplier, &u.Boosts.XP.ExpiresAt,
		&u.Boosts.Level.Multiplier, &u.Boosts.Level.ExpiresAt,
		&u.DailyStreak, &u.LastLoginDate, &u.ReferralCode, &u.ReferredBy, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByIDForUpdate locks the row for the duration of the transaction so
// concurrent actions for the same identity serialize instead of racing.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	return scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

// GetByReferralCode resolves a referral code to the owning user.
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// Create inserts a fresh aggregate. Caller is expected to have applied
// rules.NewUserDefaults first.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (tg_id, username, first_name, level, experience, coins_per_tap,
			energy, max_energy, referral_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		u.TgID, u.Username, u.FirstName, u.Level, u.Experience, u.CoinsPerTap,
		u.Energy, u.MaxEnergy, u.ReferralCode,
	).Scan(&u.ID, &u.CreatedAt)
}

// SaveState writes back every rules-mutable field inside the caller's
// transaction. Identity fields and created_at are never touched.
func (r *UserRepository) SaveState(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET
			coins = $1, diamonds = $2, total_earnings = $3,
			level = $4, experience = $5, taps_count = $6, coins_per_tap = $7,
			energy = $8, max_energy = $9,
			tap_boost_multiplier = $10, tap_boost_expires_at = $11,
			energy_boost_multiplier = $12, energy_boost_expires_at = $13,
			xp_boost_multiplier = $14, xp_boost_expires_at = $15,
			level_boost_multiplier = $16, level_boost_expires_at = $17,
			daily_streak = $18, last_login_date = $19
		 WHERE id = $20`,
		u.Coins, u.Diamonds, u.TotalEarnings,
		u.Level, u.Experience, u.TapsCount, u.CoinsPerTap,
		u.Energy, u.MaxEnergy,
		u.Boosts.TapPower.Multiplier, u.Boosts.TapPower.ExpiresAt,
		u.Boosts.Energy.Multiplier, u.Boosts.Energy.ExpiresAt,
		u.Boosts.XP.Multiplier, u.Boosts.XP.ExpiresAt,
		u.Boosts.Level.Multiplier, u.Boosts.Level.ExpiresAt,
		u.DailyStreak, u.LastLoginDate,
		u.ID,
	)
	return err
}

// TopEntry is one leaderboard row.
type TopEntry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	Level         int    `json:"level"`
	TotalEarnings int64  `json:"total_earnings"`
}

// GetTopByEarnings returns the leaderboard ordered by lifetime earnings.
func (r *UserRepository) GetTopByEarnings(ctx context.Context, limit int) ([]TopEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(username, ''), COALESCE(first_name, ''), level, total_earnings
		 FROM users
		 ORDER BY total_earnings DESC, id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TopEntry
	rank := 1
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.FirstName, &e.Level, &e.TotalEarnings); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		res = append(res, e)
	}
	return res, rows.Err()
}

// GetRank returns a user's position in the lifetime-earnings leaderboard.
func (r *UserRepository) GetRank(ctx context.Context, userID int64) (int, int64, error) {
	var rank int
	var earnings int64
	err := r.db.QueryRow(ctx, `
		WITH ranked AS (
			SELECT id, total_earnings,
			       RANK() OVER (ORDER BY total_earnings DESC) AS rank
			FROM users
		)
		SELECT rank, total_earnings FROM ranked WHERE id = $1
	`, userID).Scan(&rank, &earnings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, err
	}
	return rank, earnings, nil
}

// RegenEnergyAll applies one passive-regeneration tick to every aggregate in
// a single idempotent statement. Boost-aware: an open energy window doubles
// the gain. Safe to interleave with in-flight taps; the cap clamps both.
func (r *UserRepository) RegenEnergyAll(ctx context.Context, seconds int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET energy = LEAST(max_energy, energy + $1 *
			 CASE WHEN energy_boost_expires_at > NOW() THEN 2 ELSE 1 END)
		 WHERE energy < max_energy`, seconds)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SweepExpiredBoosts flips stored multipliers back to 1 once their window
// has closed. Advisory only: read sites compare the wall clock to the
// expiry and never trust the stored multiplier alone.
func (r *UserRepository) SweepExpiredBoosts(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET
			tap_boost_multiplier    = CASE WHEN tap_boost_expires_at    <= NOW() THEN 1 ELSE tap_boost_multiplier    END,
			energy_boost_multiplier = CASE WHEN energy_boost_expires_at <= NOW() THEN 1 ELSE energy_boost_multiplier END,
			xp_boost_multiplier     = CASE WHEN xp_boost_expires_at     <= NOW() THEN 1 ELSE xp_boost_multiplier     END,
			level_boost_multiplier  = CASE WHEN level_boost_expires_at  <= NOW() THEN 1 ELSE level_boost_multiplier  END
		WHERE (tap_boost_multiplier    > 1 AND tap_boost_expires_at    <= NOW())
		   OR (energy_boost_multiplier > 1 AND energy_boost_expires_at <= NOW())
		   OR (xp_boost_multiplier     > 1 AND xp_boost_expires_at     <= NOW())
		   OR (level_boost_multiplier  > 1 AND level_boost_expires_at  <= NOW())`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
