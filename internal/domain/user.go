package domain

import "time"

// BoostKind names one of the four purchasable boost slots.
type BoostKind string

const (
	BoostTapPower BoostKind = "tap_power"
	BoostEnergy   BoostKind = "energy"
	BoostXP       BoostKind = "xp"
	BoostLevel    BoostKind = "level"
)

var BoostKinds = []BoostKind{BoostTapPower, BoostEnergy, BoostXP, BoostLevel}

// Boost is a time-windowed multiplier. The stored multiplier is advisory:
// read sites must compare the wall clock against ExpiresAt and never trust
// Multiplier alone, because the expiry sweep may lag.
type Boost struct {
	Multiplier int       `db:"multiplier" json:"multiplier"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
}

// ActiveAt reports whether the boost window is open at the given instant.
func (b Boost) ActiveAt(now time.Time) bool {
	return now.Before(b.ExpiresAt)
}

// Boosts holds one slot per kind.
type Boosts struct {
	TapPower Boost `json:"tap_power"`
	Energy   Boost `json:"energy"`
	XP       Boost `json:"xp"`
	Level    Boost `json:"level"`
}

// Get returns the slot for a kind, nil for an unknown kind.
func (b *Boosts) Get(kind BoostKind) *Boost {
	switch kind {
	case BoostTapPower:
		return &b.TapPower
	case BoostEnergy:
		return &b.Energy
	case BoostXP:
		return &b.XP
	case BoostLevel:
		return &b.Level
	}
	return nil
}

// User is one player's complete persisted game state. Created lazily on
// first contact, never deleted in normal operation.
type User struct {
	ID        int64  `db:"id" json:"id"`
	TgID      int64  `db:"tg_id" json:"tg_id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`

	Coins         int64 `db:"coins" json:"coins"`
	Diamonds      int64 `db:"diamonds" json:"diamonds"`
	TotalEarnings int64 `db:"total_earnings" json:"total_earnings"`

	Level       int   `db:"level" json:"level"`
	Experience  int64 `db:"experience" json:"experience"`
	TapsCount   int64 `db:"taps_count" json:"taps_count"`
	CoinsPerTap int64 `db:"coins_per_tap" json:"coins_per_tap"`

	Energy    int `db:"energy" json:"energy"`
	MaxEnergy int `db:"max_energy" json:"max_energy"`

	Boosts Boosts `json:"boosts"`

	DailyStreak   int        `db:"daily_streak" json:"daily_streak"`
	LastLoginDate *time.Time `db:"last_login_date" json:"last_login_date,omitempty"`

	ReferralCode string `db:"referral_code" json:"referral_code"`
	ReferredBy   *int64 `db:"referred_by" json:"referred_by,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ExperienceToNext is the XP threshold for the current level.
func (u *User) ExperienceToNext() int64 {
	return int64(u.Level) * 1000
}
