package handlers

import (
	"net/http"
	"strconv"
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/rules"

	"github.com/gin-gonic/gin"
)

// userJSON renders the full user aggregate the way the client consumes it.
func userJSON(u *domain.User, now time.Time) gin.H {
	boosts := gin.H{}
	for _, kind := range []domain.BoostKind{
		domain.BoostTapPower, domain.BoostEnergy, domain.BoostXP, domain.BoostLevel,
	} {
		b := u.Boosts.Get(kind)
		if b == nil || !b.ActiveAt(now) {
			continue
		}
		boosts[string(kind)] = gin.H{
			"multiplier": b.Multiplier,
			"expires_at": b.ExpiresAt.UTC().Format(time.RFC3339),
		}
	}

	return gin.H{
		"id":             u.ID,
		"tg_id":          u.TgID,
		"username":       u.Username,
		"first_name":     u.FirstName,
		"coins":          u.Coins,
		"diamonds":       u.Diamonds,
		"total_earnings": u.TotalEarnings,
		"level":          u.Level,
		"experience":     u.Experience,
		"exp_to_next":    u.ExperienceToNext(),
		"taps_count":     u.TapsCount,
		"coins_per_tap":  rules.CoinsPerTapFor(u.Level),
		"energy":         u.Energy,
		"max_energy":     u.MaxEnergy,
		"boosts":         boosts,
		"daily_streak":   u.DailyStreak,
		"referral_code":  u.ReferralCode,
		"created_at":     u.CreatedAt,
	}
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, userJSON(user, time.Now()))
}

// MyAudit returns the recent audit trail for the current user.
func (h *Handler) MyAudit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	logs, err := h.Audit.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get audit history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": logs, "count": len(logs)})
}
