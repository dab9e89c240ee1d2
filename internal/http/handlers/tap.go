package handlers

import (
	"errors"
	"net/http"
	"time"

	"tapgame_webapp/internal/rules"
	"tapgame_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type TapRequest struct {
	Count int `json:"count"`
}

func (h *Handler) Tap(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req TapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	user, res, err := h.Taps.Tap(c.Request.Context(), userID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidTapCount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "tap count must be between 1 and 10"})
		case errors.Is(err, rules.ErrInsufficientEnergy):
			c.JSON(http.StatusConflict, gin.H{"error": "not enough energy"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "tap failed"})
		}
		return
	}

	TapsProcessed.Add(float64(res.Taps))
	h.pushState("tap", user)

	c.JSON(http.StatusOK, gin.H{
		"taps":          res.Taps,
		"coins_earned":  res.CoinsEarned,
		"xp_earned":     res.XPEarned,
		"energy_used":   res.EnergyUsed,
		"levels_gained": res.LevelsGained,
		"user":          userJSON(user, time.Now()),
	})
}
