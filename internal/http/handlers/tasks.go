package handlers

import (
	"errors"
	"net/http"
	"time"

	"tapgame_webapp/internal/rules"
	"tapgame_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (h *Handler) ClaimTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task id is required"})
		return
	}

	user, reward, err := h.Tasks.Claim(c.Request.Context(), userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, rules.ErrTaskAlreadyClaimed):
			c.JSON(http.StatusConflict, gin.H{"error": "task already claimed"})
		case errors.Is(err, rules.ErrTaskRequirementsNotMet):
			c.JSON(http.StatusConflict, gin.H{"error": "task requirements not met"})
		case errors.Is(err, rules.ErrTaskNotClaimable):
			c.JSON(http.StatusConflict, gin.H{"error": "task rewards are granted automatically"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claim failed"})
		}
		return
	}

	h.pushState("task_claim", user)

	c.JSON(http.StatusOK, gin.H{
		"reward": reward,
		"user":   userJSON(user, time.Now()),
	})
}

// DailyReset advances the streak and re-arms daily tasks. Same-day calls
// are a no-op.
func (h *Handler) DailyReset(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.Tasks.DailyReset(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "daily reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"daily_streak": user.DailyStreak,
		"user":         userJSON(user, time.Now()),
	})
}
