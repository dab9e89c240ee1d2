package repository

import (
	"context"
	"errors"

	"tapgame_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, user_id, task_id, family, metric, title, requirement,
	reward_coins, progress, completed, claimed, completed_at, claimed_at, created_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(r row) (*domain.Task, error) {
	var t domain.Task
	err := r.Scan(
		&t.ID, &t.UserID, &t.TaskID, &t.Family, &t.Metric, &t.Title, &t.Requirement,
		&t.RewardCoins, &t.Progress, &t.Completed, &t.Claimed, &t.CompletedAt, &t.ClaimedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByUser returns all progress records for one user, achievements last.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM user_tasks WHERE user_id = $1 ORDER BY family, task_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

// ListByUserTx is ListByUser inside the caller's transaction, used along the
// tap path so progression sees the same snapshot the row lock protects.
func (r *TaskRepository) ListByUserTx(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.Task, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+taskColumns+` FROM user_tasks WHERE user_id = $1 ORDER BY family, task_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

// GetForUpdate locks one task row within the caller's transaction.
func (r *TaskRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID int64, taskID string) (*domain.Task, error) {
	return scanTask(tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM user_tasks WHERE user_id = $1 AND task_id = $2 FOR UPDATE`,
		userID, taskID))
}

// Save writes back a mutated progress record.
func (r *TaskRepository) Save(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_tasks
		 SET progress = $1, completed = $2, claimed = $3, completed_at = $4, claimed_at = $5
		 WHERE id = $6`,
		t.Progress, t.Completed, t.Claimed, t.CompletedAt, t.ClaimedAt, t.ID)
	return err
}

// Insert creates one progress record. Duplicate (user, task id) pairs are
// suppressed, which makes progressive-achievement spawn idempotent.
func (r *TaskRepository) Insert(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_tasks (user_id, task_id, family, metric, title, requirement,
			reward_coins, progress, completed, claimed, completed_at, claimed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, task_id) DO NOTHING`,
		t.UserID, t.TaskID, t.Family, t.Metric, t.Title, t.Requirement,
		t.RewardCoins, t.Progress, t.Completed, t.Claimed, t.CompletedAt, t.ClaimedAt)
	return err
}

// SeedStarter installs the starter catalog for a fresh aggregate.
func (r *TaskRepository) SeedStarter(ctx context.Context, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range domain.StarterTasks() {
		t.UserID = userID
		if err := r.Insert(ctx, tx, &t); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ResetDailyForUser clears completion and progress on one user's daily
// tasks inside the caller's transaction.
func (r *TaskRepository) ResetDailyForUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_tasks
		 SET progress = 0, completed = false, claimed = false, completed_at = NULL, claimed_at = NULL
		 WHERE user_id = $1 AND family = 'daily'`, userID)
	return err
}

// ResetDailyAll is the scheduled midnight sweep over every user. Restricted
// to the daily family; other families never revert.
func (r *TaskRepository) ResetDailyAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_tasks
		 SET progress = 0, completed = false, claimed = false, completed_at = NULL, claimed_at = NULL
		 WHERE family = 'daily' AND (progress > 0 OR completed OR claimed)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
