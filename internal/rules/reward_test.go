package rules

import (
	"errors"
	"testing"
	"time"

	"tapgame_webapp/internal/domain"
)

func freshUser() *domain.User {
	u := &domain.User{TgID: 1}
	NewUserDefaults(u)
	return u
}

func TestApplyTaps_SingleTap(t *testing.T) {
	u := freshUser()
	now := time.Now()

	res, err := ApplyTaps(u, 1, now)
	if err != nil {
		t.Fatalf("ApplyTaps: %v", err)
	}
	if res.CoinsEarned != 1 || res.XPEarned != 1 {
		t.Fatalf("res = %+v; want 1 coin, 1 xp", res)
	}
	if u.Coins != 1 || u.Experience != 1 || u.Level != 1 {
		t.Fatalf("user = coins %d xp %d level %d; want 1/1/1", u.Coins, u.Experience, u.Level)
	}
	if u.TotalEarnings != 1 || u.TapsCount != 1 {
		t.Fatalf("earnings %d taps %d; want 1/1", u.TotalEarnings, u.TapsCount)
	}
}

func TestApplyTaps_EnergyDrainIndependentOfBoosts(t *testing.T) {
	now := time.Now()
	for n := 1; n <= 10; n++ {
		for _, boosted := range []bool{false, true} {
			u := freshUser()
			if boosted {
				u.Boosts.TapPower = domain.Boost{Multiplier: 2, ExpiresAt: now.Add(time.Hour)}
				u.Boosts.XP = domain.Boost{Multiplier: 2, ExpiresAt: now.Add(time.Hour)}
			}
			before := u.Energy
			if _, err := ApplyTaps(u, n, now); err != nil {
				t.Fatalf("n=%d boosted=%v: %v", n, boosted, err)
			}
			if u.Energy != before-n {
				t.Fatalf("n=%d boosted=%v: energy %d; want %d", n, boosted, u.Energy, before-n)
			}
		}
	}
}

func TestApplyTaps_InsufficientEnergy(t *testing.T) {
	u := freshUser()
	u.Energy = 2
	if _, err := ApplyTaps(u, 3, time.Now()); !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("err = %v; want ErrInsufficientEnergy", err)
	}
	if u.Coins != 0 || u.Energy != 2 {
		t.Fatalf("aggregate mutated on failed tap: %+v", u)
	}
}

func TestApplyTaps_CountBounds(t *testing.T) {
	u := freshUser()
	for _, n := range []int{0, -1, 11} {
		if _, err := ApplyTaps(u, n, time.Now()); !errors.Is(err, ErrInvalidTapCount) {
			t.Fatalf("n=%d: err = %v; want ErrInvalidTapCount", n, err)
		}
	}
}

func TestApplyTaps_BoostMultipliers(t *testing.T) {
	now := time.Now()
	u := freshUser()
	u.Boosts.TapPower = domain.Boost{Multiplier: 2, ExpiresAt: now.Add(time.Minute)}

	res, err := ApplyTaps(u, 5, now)
	if err != nil {
		t.Fatalf("ApplyTaps: %v", err)
	}
	if res.CoinsEarned != 10 {
		t.Fatalf("coins = %d; want 10 (coinsPerTap 1 x2 x5)", res.CoinsEarned)
	}
	if res.XPEarned != 5 {
		t.Fatalf("xp = %d; want 5 (xp boost inactive)", res.XPEarned)
	}

	// expired window must not apply even though the stored multiplier is 2
	u2 := freshUser()
	u2.Boosts.TapPower = domain.Boost{Multiplier: 2, ExpiresAt: now.Add(-time.Second)}
	res2, _ := ApplyTaps(u2, 5, now)
	if res2.CoinsEarned != 5 {
		t.Fatalf("coins = %d; want 5 after expiry", res2.CoinsEarned)
	}
}

func TestLevelUp_AtThreshold(t *testing.T) {
	u := freshUser()
	u.Experience = 999

	if _, err := ApplyTaps(u, 1, time.Now()); err != nil {
		t.Fatalf("ApplyTaps: %v", err)
	}
	if u.Level != 2 || u.Experience != 0 {
		t.Fatalf("level %d xp %d; want 2/0", u.Level, u.Experience)
	}
	if u.MaxEnergy != 1100 || u.Energy != 1100 {
		t.Fatalf("energy %d/%d; want full 1100", u.Energy, u.MaxEnergy)
	}
	if u.CoinsPerTap != 1 {
		t.Fatalf("coinsPerTap = %d; want 1 (2/3+1)", u.CoinsPerTap)
	}
}

func TestLeveling_MultiLevelJump(t *testing.T) {
	u := freshUser()
	// 1000 (1→2) + 2000 (2→3) + 500 leftover
	gained := GrantXP(u, 3500)
	if gained != 2 || u.Level != 3 || u.Experience != 500 {
		t.Fatalf("gained %d level %d xp %d; want 2/3/500", gained, u.Level, u.Experience)
	}
	if u.CoinsPerTap != CoinsPerTapFor(3) || u.MaxEnergy != MaxEnergyFor(3) {
		t.Fatalf("derived stats not recomputed: %+v", u)
	}
}

func TestLeveling_ChunkedEqualsLumpSum(t *testing.T) {
	lump := freshUser()
	GrantXP(lump, 7777)

	chunked := freshUser()
	for i := 0; i < 7; i++ {
		GrantXP(chunked, 1000)
	}
	GrantXP(chunked, 777)

	if lump.Level != chunked.Level || lump.Experience != chunked.Experience {
		t.Fatalf("lump %d/%d != chunked %d/%d",
			lump.Level, lump.Experience, chunked.Level, chunked.Experience)
	}
}

func TestDerivedStats(t *testing.T) {
	cases := []struct {
		level       int
		maxEnergy   int
		coinsPerTap int64
	}{
		{1, 1000, 1},
		{2, 1100, 1},
		{3, 1200, 2},
		{6, 1500, 3},
		{10, 1900, 4},
	}
	for _, tc := range cases {
		if got := MaxEnergyFor(tc.level); got != tc.maxEnergy {
			t.Fatalf("MaxEnergyFor(%d) = %d; want %d", tc.level, got, tc.maxEnergy)
		}
		if got := CoinsPerTapFor(tc.level); got != tc.coinsPerTap {
			t.Fatalf("CoinsPerTapFor(%d) = %d; want %d", tc.level, got, tc.coinsPerTap)
		}
	}
}
