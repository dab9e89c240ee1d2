// Package rules holds the pure tap/reward/leveling/boost/progression rules.
// It performs no I/O and owns no clock: callers pass `now` explicitly. The
// online request handlers and the offline reducer both run this exact code,
// so the two execution paths cannot drift apart.
package rules

import (
	"time"

	"tapgame_webapp/internal/domain"
)

// Tap batch bounds per request.
const (
	MinTapBatch = 1
	MaxTapBatch = 10
)

// ExperienceToNext is the XP threshold to leave the given level.
func ExperienceToNext(level int) int64 {
	return int64(level) * 1000
}

// MaxEnergyFor derives the energy cap from a level.
func MaxEnergyFor(level int) int {
	return 1000 + (level-1)*100
}

// CoinsPerTapFor derives the per-tap coin yield from a level.
func CoinsPerTapFor(level int) int64 {
	return int64(level/3) + 1
}

// NewUserDefaults initializes a fresh aggregate: level 1, zero balances,
// full energy.
func NewUserDefaults(u *domain.User) {
	u.Level = 1
	u.Experience = 0
	u.CoinsPerTap = CoinsPerTapFor(1)
	u.MaxEnergy = MaxEnergyFor(1)
	u.Energy = u.MaxEnergy
	u.ReferralCode = domain.ReferralCodeFor(u.TgID)
	for _, kind := range domain.BoostKinds {
		u.Boosts.Get(kind).Multiplier = 1
	}
}

// TapResult describes the effect of one tap batch.
type TapResult struct {
	Taps         int   `json:"taps"`
	CoinsEarned  int64 `json:"coins_earned"`
	XPEarned     int64 `json:"xp_earned"`
	EnergyUsed   int   `json:"energy_used"`
	LevelsGained int   `json:"levels_gained"`
	CoinsBefore  int64 `json:"coins_before"`
	CoinsAfter   int64 `json:"coins_after"`
}

// ApplyTaps processes a batch of n taps against the aggregate. It mutates u
// in place and returns what changed; on error u is untouched.
func ApplyTaps(u *domain.User, n int, now time.Time) (TapResult, error) {
	if n < MinTapBatch || n > MaxTapBatch {
		return TapResult{}, ErrInvalidTapCount
	}
	if u.Energy < n {
		return TapResult{}, ErrInsufficientEnergy
	}

	tapMult := Multiplier(u, domain.BoostTapPower, now)
	xpMult := Multiplier(u, domain.BoostXP, now)

	res := TapResult{
		Taps:        n,
		CoinsEarned: u.CoinsPerTap * tapMult * int64(n),
		XPEarned:    1 * xpMult * int64(n),
		EnergyUsed:  n,
		CoinsBefore: u.Coins,
	}

	u.Coins += res.CoinsEarned
	u.TotalEarnings += res.CoinsEarned
	u.Experience += res.XPEarned
	u.TapsCount += int64(n)
	u.Energy -= n
	if u.Energy < 0 {
		u.Energy = 0
	}

	res.LevelsGained = applyLeveling(u)
	res.CoinsAfter = u.Coins
	return res, nil
}

// applyLeveling renormalizes experience below the current threshold, looping
// so a single large XP grant can cross several levels at once. Energy is
// refilled to the new cap on any level-up; the full restore is intentional.
func applyLeveling(u *domain.User) int {
	gained := 0
	for u.Experience >= ExperienceToNext(u.Level) {
		u.Experience -= ExperienceToNext(u.Level)
		u.Level++
		gained++
	}
	if gained > 0 {
		u.MaxEnergy = MaxEnergyFor(u.Level)
		u.CoinsPerTap = CoinsPerTapFor(u.Level)
		u.Energy = u.MaxEnergy
	}
	return gained
}

// GrantXP adds experience outside the tap path (admin grants, rewards) and
// runs the same leveling loop. Returns levels gained.
func GrantXP(u *domain.User, xp int64) int {
	if xp <= 0 {
		return 0
	}
	u.Experience += xp
	return applyLeveling(u)
}
