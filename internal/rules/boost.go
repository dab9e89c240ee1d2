package rules

import (
	"time"

	"tapgame_webapp/internal/domain"
)

// BoostOffer is one purchasable boost window.
type BoostOffer struct {
	Kind     domain.BoostKind `json:"kind"`
	Cost     int64            `json:"cost"`
	Duration time.Duration    `json:"duration"`
}

// BoostOffers is the store catalog. Every offer doubles its stat for the
// window: tap_power doubles coins per tap, xp doubles tap XP, energy doubles
// passive regen, level doubles task reward coins.
var BoostOffers = []BoostOffer{
	{Kind: domain.BoostTapPower, Cost: 1000, Duration: 30 * time.Minute},
	{Kind: domain.BoostEnergy, Cost: 800, Duration: 30 * time.Minute},
	{Kind: domain.BoostXP, Cost: 1200, Duration: 30 * time.Minute},
	{Kind: domain.BoostLevel, Cost: 2000, Duration: 30 * time.Minute},
}

// OfferFor looks up the catalog entry for a kind.
func OfferFor(kind domain.BoostKind) (BoostOffer, bool) {
	for _, o := range BoostOffers {
		if o.Kind == kind {
			return o, true
		}
	}
	return BoostOffer{}, false
}

// Multiplier resolves the effective multiplier for a kind at an instant.
// The stored multiplier field is never trusted on its own: an expired window
// is inactive even if the sweep has not flipped the field back yet.
func Multiplier(u *domain.User, kind domain.BoostKind, now time.Time) int64 {
	b := u.Boosts.Get(kind)
	if b == nil || !b.ActiveAt(now) {
		return 1
	}
	return 2
}

// ActivateBoost deducts the cost and opens (or re-opens) the window for the
// kind. Re-purchase while active overwrites the expiry; duration and
// multiplier never stack.
func ActivateBoost(u *domain.User, kind domain.BoostKind, cost int64, duration time.Duration, now time.Time) error {
	b := u.Boosts.Get(kind)
	if b == nil {
		return ErrUnknownBoost
	}
	if u.Coins < cost {
		return ErrInsufficientFunds
	}
	u.Coins -= cost
	b.Multiplier = 2
	b.ExpiresAt = now.Add(duration)
	return nil
}

// SweepBoosts flips expired multipliers back to 1. The sweep is advisory:
// correctness does not depend on it running, only the stored field does.
// Returns true if anything changed.
func SweepBoosts(u *domain.User, now time.Time) bool {
	changed := false
	for _, kind := range domain.BoostKinds {
		b := u.Boosts.Get(kind)
		if b.Multiplier != 1 && !b.ActiveAt(now) {
			b.Multiplier = 1
			changed = true
		}
	}
	return changed
}
