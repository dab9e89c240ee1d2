package domain

import "time"

// AuditLog is an append-only record of a player action. Game logic never
// reads these back; they exist for later analytics.
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	RequestID string                 `db:"request_id" json:"request_id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit categories
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryTap      = "tap"
	AuditCategoryTask     = "task"
	AuditCategoryBoost    = "boost"
	AuditCategoryReferral = "referral"
	AuditCategoryGame     = "game"
)

// Audit actions
const (
	AuditActionLogin = "login"

	AuditActionTap = "tap"

	AuditActionTaskClaim  = "task_claim"
	AuditActionDailyReset = "daily_reset"

	AuditActionBoostPurchase = "boost_purchase"

	AuditActionReferralApplied = "referral_applied"
	AuditActionReferralBonus   = "referral_bonus"

	AuditActionGameSpin     = "game_spin"
	AuditActionGameTreasure = "game_treasure"
	AuditActionGameFlip     = "game_flip"
)
