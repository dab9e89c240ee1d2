package domain

import (
	"strconv"
	"time"
)

// Referral is one referrer→referred edge, created at most once per pair.
type Referral struct {
	ID         int64     `db:"id" json:"id"`
	ReferrerID int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID int64     `db:"referred_id" json:"referred_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Referral bonus amounts, paid in one transaction touching both aggregates.
const (
	ReferrerBonus = 1000
	ReferredBonus = 500
)

// ReferralCodeFor derives the referral code deterministically from the
// external Telegram identity, so the same user always owns the same code.
func ReferralCodeFor(tgID int64) string {
	return "tap" + strconv.FormatInt(tgID, 36)
}
