package rules

import (
	"testing"
	"time"

	"tapgame_webapp/internal/domain"
)

func TestRegenEnergy(t *testing.T) {
	now := time.Now()

	u := freshUser()
	u.Energy = 100
	if gain := RegenEnergy(u, 60*time.Second, now); gain != 60 || u.Energy != 160 {
		t.Fatalf("gain %d energy %d; want 60/160", gain, u.Energy)
	}

	// energy boost doubles the rate
	u.Boosts.Energy = domain.Boost{Multiplier: 2, ExpiresAt: now.Add(time.Hour)}
	if gain := RegenEnergy(u, 60*time.Second, now); gain != 120 || u.Energy != 280 {
		t.Fatalf("boosted gain %d energy %d; want 120/280", gain, u.Energy)
	}

	// capped at max
	u.Energy = u.MaxEnergy - 5
	if gain := RegenEnergy(u, time.Hour, now); gain != 5 || u.Energy != u.MaxEnergy {
		t.Fatalf("capped gain %d energy %d; want 5/%d", gain, u.Energy, u.MaxEnergy)
	}

	// already full: no-op
	if gain := RegenEnergy(u, time.Hour, now); gain != 0 {
		t.Fatalf("full regen gain = %d; want 0", gain)
	}
}

func TestResetDaily_Streak(t *testing.T) {
	today := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)

	cases := []struct {
		name       string
		last       *time.Time
		streak     int
		wantStreak int
	}{
		{"consecutive day", &yesterday, 4, 5},
		{"gap resets", &lastWeek, 9, 1},
		{"never logged in", nil, 0, 1},
	}

	for _, tc := range cases {
		u := freshUser()
		u.LastLoginDate = tc.last
		u.DailyStreak = tc.streak
		if !ResetDaily(u, today) {
			t.Fatalf("%s: reset reported no change", tc.name)
		}
		if u.DailyStreak != tc.wantStreak {
			t.Fatalf("%s: streak = %d; want %d", tc.name, u.DailyStreak, tc.wantStreak)
		}
		if u.LastLoginDate == nil || !sameDay(*u.LastLoginDate, today) {
			t.Fatalf("%s: lastLoginDate not stamped", tc.name)
		}
	}
}

func TestResetDaily_SameDayNoop(t *testing.T) {
	today := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	u := freshUser()
	ResetDaily(u, today)
	if ResetDaily(u, today.Add(5*time.Hour)) {
		t.Fatal("second reset on the same day changed state")
	}
	if u.DailyStreak != 1 {
		t.Fatalf("streak = %d; want 1", u.DailyStreak)
	}
}
