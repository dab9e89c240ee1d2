package rules

import (
	"time"

	"tapgame_webapp/internal/domain"
)

// EnergyPerSecond is the passive regeneration rate.
const EnergyPerSecond = 1

// RegenEnergy applies passive regeneration for an elapsed interval, doubled
// under an active energy boost and capped at MaxEnergy. Safe to re-apply:
// regeneration is a pure function of elapsed time and the cap, so ticker
// re-ordering against taps loses nothing beyond normal interleaving.
func RegenEnergy(u *domain.User, elapsed time.Duration, now time.Time) int {
	if elapsed <= 0 || u.Energy >= u.MaxEnergy {
		return 0
	}
	gain := int(elapsed.Seconds()) * EnergyPerSecond * int(Multiplier(u, domain.BoostEnergy, now))
	if u.Energy+gain > u.MaxEnergy {
		gain = u.MaxEnergy - u.Energy
	}
	u.Energy += gain
	return gain
}

// sameDay compares calendar dates, ignoring time of day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ResetDaily recomputes the login streak for a new calendar day and stamps
// the login date: +1 when the previous login was yesterday, otherwise back
// to 1. Calling it twice on the same day is a no-op.
func ResetDaily(u *domain.User, today time.Time) bool {
	if u.LastLoginDate != nil && sameDay(*u.LastLoginDate, today) {
		return false
	}
	yesterday := today.AddDate(0, 0, -1)
	if u.LastLoginDate != nil && sameDay(*u.LastLoginDate, yesterday) {
		u.DailyStreak++
	} else {
		u.DailyStreak = 1
	}
	t := today
	u.LastLoginDate = &t
	return true
}

// ResetDailyTasks clears completion and progress on daily-family tasks only.
// Other families are never touched by the sweep.
func ResetDailyTasks(tasks []domain.Task) []int {
	var changed []int
	for i := range tasks {
		if tasks[i].Family != domain.TaskFamilyDaily {
			continue
		}
		if tasks[i].Progress == 0 && !tasks[i].Completed && !tasks[i].Claimed {
			continue
		}
		tasks[i].Progress = 0
		tasks[i].Completed = false
		tasks[i].Claimed = false
		tasks[i].CompletedAt = nil
		tasks[i].ClaimedAt = nil
		changed = append(changed, i)
	}
	return changed
}
