package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top players by lifetime earnings.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	top, err := h.UserRepo.GetTopByEarnings(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": top,
		"metric":      "total_earnings",
	})
}

// GetMyRank returns the current user's position on the earnings ladder.
func (h *Handler) GetMyRank(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rank, earnings, err := h.UserRepo.GetRank(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"rank":           0,
			"total_earnings": 0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank":           rank,
		"total_earnings": earnings,
	})
}
