package handlers

import (
	"errors"
	"net/http"
	"time"

	"tapgame_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReferralCode returns the user's referral code.
func (h *Handler) GetReferralCode(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"code": user.ReferralCode})
}

// GetReferralLink returns the shareable deep link.
// Format: https://t.me/bot_username?startapp=ref_CODE
func (h *Handler) GetReferralLink(c *gin.Context) {
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

	link := "https://t.me/" + h.BotUsername + "?startapp=ref_" + user.ReferralCode

	c.JSON(http.StatusOK, gin.H{
		"code": user.ReferralCode,
		"link": link,
	})
}

// GetReferralStats returns invite counts and earned bonuses.
func (h *Handler) GetReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Referrals.Stats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	referrals, err := h.Referrals.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referrals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"referrals": referrals,
	})
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyReferralCode binds the current user to a referrer and credits both
// sides.
func (h *Handler) ApplyReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	user, err := h.Referrals.Apply(c.Request.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
		case errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot use your own code"})
		case errors.Is(err, service.ErrDuplicateReferral):
			c.JSON(http.StatusConflict, gin.H{"error": "already referred"})
		case errors.Is(err, service.ErrUnknownReferredUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply referral"})
		}
		return
	}

	h.pushState("referral", user)

	c.JSON(http.StatusOK, gin.H{"user": userJSON(user, time.Now())})
}
