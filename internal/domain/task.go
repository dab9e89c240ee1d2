package domain

import (
	"fmt"
	"time"
)

// TaskFamily - семейство задания
type TaskFamily string

const (
	TaskFamilyDaily       TaskFamily = "daily"
	TaskFamilySocial      TaskFamily = "social"
	TaskFamilyAchievement TaskFamily = "achievement"
)

// TaskMetric - счётчик, по которому растёт прогресс
type TaskMetric string

const (
	MetricTaps       TaskMetric = "taps"
	MetricEarnings   TaskMetric = "earnings"
	MetricLevel      TaskMetric = "level"
	MetricEnergyUsed TaskMetric = "energy_used"
	MetricManual     TaskMetric = "manual" // social tasks, verified out of band
)

// Task is one per-user progress record, unique per (user, task id).
// Completed is monotonic: it never reverts to false once true, except via
// the daily-reset sweep which is restricted to the daily family.
type Task struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	TaskID      string     `db:"task_id" json:"task_id"`
	Family      TaskFamily `db:"family" json:"family"`
	Metric      TaskMetric `db:"metric" json:"metric"`
	Title       string     `db:"title" json:"title"`
	Requirement int64      `db:"requirement" json:"requirement"`
	RewardCoins int64      `db:"reward_coins" json:"reward_coins"`
	Progress    int64      `db:"progress" json:"progress"`
	Completed   bool       `db:"completed" json:"completed"`
	Claimed     bool       `db:"claimed" json:"claimed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ClaimedAt   *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// CanClaim reports whether the reward is still pending for this task.
func (t *Task) CanClaim() bool {
	return t.Completed && !t.Claimed
}

// LevelAchievementID derives the task id for a level-target achievement.
func LevelAchievementID(level int64) string {
	return fmt.Sprintf("achievement-level-%d", level)
}

// CoinAchievementID derives the task id for a coin-target achievement.
func CoinAchievementID(target int64) string {
	return fmt.Sprintf("achievement-coins-%d", target)
}

// StarterTasks is the catalog seeded into a fresh aggregate.
func StarterTasks() []Task {
	return []Task{
		{TaskID: "daily-taps-100", Family: TaskFamilyDaily, Metric: MetricTaps, Title: "Tap 100 times", Requirement: 100, RewardCoins: 500},
		{TaskID: "daily-earn-1000", Family: TaskFamilyDaily, Metric: MetricEarnings, Title: "Earn 1 000 coins", Requirement: 1000, RewardCoins: 750},
		{TaskID: "social-join-channel", Family: TaskFamilySocial, Metric: MetricManual, Title: "Join our channel", Requirement: 1, RewardCoins: 2000},
		{TaskID: "social-invite-friend", Family: TaskFamilySocial, Metric: MetricManual, Title: "Invite a friend", Requirement: 1, RewardCoins: 2500},
		{TaskID: LevelAchievementID(5), Family: TaskFamilyAchievement, Metric: MetricLevel, Title: "Reach level 5", Requirement: 5, RewardCoins: 1000},
		{TaskID: CoinAchievementID(10000), Family: TaskFamilyAchievement, Metric: MetricEarnings, Title: "Earn 10 000 coins", Requirement: 10000, RewardCoins: 2000},
	}
}
