package domain

import (
	"testing"
	"time"
)

func TestReferralCodeDeterministic(t *testing.T) {
	a := ReferralCodeFor(123456789)
	b := ReferralCodeFor(123456789)
	if a != b {
		t.Fatalf("same tg id produced different codes: %q vs %q", a, b)
	}
	if a == ReferralCodeFor(123456790) {
		t.Fatal("distinct tg ids produced the same code")
	}
	if a[:3] != "tap" {
		t.Fatalf("code %q missing prefix", a)
	}
}

func TestAchievementIDRoundTrip(t *testing.T) {
	if got := LevelAchievementID(10); got != "achievement-level-10" {
		t.Fatalf("level id = %q", got)
	}
	if got := CoinAchievementID(20000); got != "achievement-coins-20000" {
		t.Fatalf("coin id = %q", got)
	}
}

func TestStarterTasksUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, task := range StarterTasks() {
		if seen[task.TaskID] {
			t.Fatalf("duplicate starter task id %q", task.TaskID)
		}
		seen[task.TaskID] = true
		if task.Requirement <= 0 || task.RewardCoins <= 0 {
			t.Fatalf("starter task %q has non-positive requirement or reward", task.TaskID)
		}
	}
}

func TestBoostActiveAtBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := Boost{Multiplier: 2, ExpiresAt: now}

	if b.ActiveAt(now) {
		t.Fatal("boost must be inactive exactly at expiry")
	}
	if !b.ActiveAt(now.Add(-time.Second)) {
		t.Fatal("boost must be active before expiry")
	}
}
