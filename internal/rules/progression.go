package rules

import (
	"strconv"
	"time"

	"tapgame_webapp/internal/domain"
)

// Progressive spawn constants: each completed tier spawns a harder successor.
const (
	LevelTierStep       = 5
	LevelTierRewardStep = 1000
	CoinTierRewardStep  = 2000
)

// Counters carries per-action deltas pushed into daily-family tasks.
type Counters struct {
	Taps        int64
	CoinsEarned int64
	EnergyUsed  int64
}

// AchievementEvent records one auto-granted achievement for auditing.
type AchievementEvent struct {
	TaskID  string `json:"task_id"`
	Reward  int64  `json:"reward"`
	Spawned string `json:"spawned,omitempty"`
}

// ProgressionResult indexes what AdvanceAchievements changed.
type ProgressionResult struct {
	Changed []int // updated existing rows
	Spawned []int // freshly created next tiers, appended at the tail
	Granted int64 // total coins credited from auto-granted rewards
	Events  []AchievementEvent
}

// AdvanceDailies increments daily-task progress from one action's deltas and
// marks crossed thresholds complete. The reward still needs an explicit
// claim. Returns indices of changed tasks.
func AdvanceDailies(tasks []domain.Task, d Counters, now time.Time) []int {
	var changed []int
	for i := range tasks {
		t := &tasks[i]
		if t.Family != domain.TaskFamilyDaily || t.Completed {
			continue
		}
		var inc int64
		switch t.Metric {
		case domain.MetricTaps:
			inc = d.Taps
		case domain.MetricEarnings:
			inc = d.CoinsEarned
		case domain.MetricEnergyUsed:
			inc = d.EnergyUsed
		}
		if inc == 0 {
			continue
		}
		t.Progress += inc
		if t.Progress >= t.Requirement {
			t.Completed = true
			ts := now
			t.CompletedAt = &ts
		}
		changed = append(changed, i)
	}
	return changed
}

// AdvanceAchievements pushes the aggregate's absolute counters into
// achievement tasks, auto-completes crossed thresholds, credits their
// rewards immediately (achievements have no claim step; daily and social
// do), and spawns the next tier exactly once per task id. The returned
// slice may be larger than the input when tiers were spawned.
func AdvanceAchievements(tasks []domain.Task, u *domain.User, now time.Time) ([]domain.Task, ProgressionResult) {
	var res ProgressionResult

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		seen[tasks[i].TaskID] = true
	}

	// Newly spawned tiers are evaluated in the same pass so a multi-level
	// jump can chain completions. Tiers grow strictly harder, so the loop
	// terminates.
	for i := 0; i < len(tasks); i++ {
		t := &tasks[i]
		if t.Family != domain.TaskFamilyAchievement || t.Completed {
			continue
		}

		before := t.Progress
		switch t.Metric {
		case domain.MetricTaps:
			t.Progress = u.TapsCount
		case domain.MetricEarnings:
			t.Progress = u.TotalEarnings
		case domain.MetricLevel:
			t.Progress = int64(u.Level)
		default:
			continue
		}

		if t.Progress < t.Requirement {
			if t.Progress != before {
				res.Changed = append(res.Changed, i)
			}
			continue
		}

		ts := now
		t.Completed = true
		t.CompletedAt = &ts
		t.Claimed = true
		t.ClaimedAt = &ts

		reward := t.RewardCoins * Multiplier(u, domain.BoostLevel, now)
		u.Coins += reward
		u.TotalEarnings += reward
		res.Granted += reward

		ev := AchievementEvent{TaskID: t.TaskID, Reward: reward}

		if child, ok := nextTier(*t, u); ok && !seen[child.TaskID] {
			seen[child.TaskID] = true
			ev.Spawned = child.TaskID
			tasks = append(tasks, child)
			res.Spawned = append(res.Spawned, len(tasks)-1)
		}

		res.Changed = append(res.Changed, i)
		res.Events = append(res.Events, ev)
	}
	return tasks, res
}

// nextTier derives the successor achievement: level targets step by 5 with
// +1000 reward, coin targets double with +2000 reward. Starting progress
// comes from the player's current level or balance.
func nextTier(parent domain.Task, u *domain.User) (domain.Task, bool) {
	switch parent.Metric {
	case domain.MetricLevel:
		next := parent.Requirement + LevelTierStep
		return domain.Task{
			UserID:      parent.UserID,
			TaskID:      domain.LevelAchievementID(next),
			Family:      domain.TaskFamilyAchievement,
			Metric:      domain.MetricLevel,
			Title:       "Reach level " + strconv.FormatInt(next, 10),
			Requirement: next,
			RewardCoins: parent.RewardCoins + LevelTierRewardStep,
			Progress:    int64(u.Level),
		}, true
	case domain.MetricEarnings:
		next := parent.Requirement * 2
		return domain.Task{
			UserID:      parent.UserID,
			TaskID:      domain.CoinAchievementID(next),
			Family:      domain.TaskFamilyAchievement,
			Metric:      domain.MetricEarnings,
			Title:       "Earn " + strconv.FormatInt(next, 10) + " coins",
			Requirement: next,
			RewardCoins: parent.RewardCoins + CoinTierRewardStep,
			Progress:    u.Coins,
		}, true
	}
	return domain.Task{}, false
}

// ClaimTask applies an explicit claim on a daily or social task and returns
// the granted reward. Daily tasks must have crossed their requirement;
// social tasks claim unconditionally (the out-of-band verification step is
// treated as always-succeeding). Achievements are granted automatically and
// cannot be claimed here.
func ClaimTask(t *domain.Task, u *domain.User, now time.Time) (int64, error) {
	if t.Claimed {
		return 0, ErrTaskAlreadyClaimed
	}
	switch t.Family {
	case domain.TaskFamilyDaily:
		if t.Progress < t.Requirement {
			return 0, ErrTaskRequirementsNotMet
		}
	case domain.TaskFamilySocial:
		t.Progress = t.Requirement
	default:
		return 0, ErrTaskNotClaimable
	}

	ts := now
	if !t.Completed {
		t.Completed = true
		t.CompletedAt = &ts
	}
	t.Claimed = true
	t.ClaimedAt = &ts

	reward := t.RewardCoins * Multiplier(u, domain.BoostLevel, now)
	u.Coins += reward
	u.TotalEarnings += reward
	return reward, nil
}
