package handlers

import (
	"errors"
	"net/http"
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/rules"
	"tapgame_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// ListBoosts returns the purchasable boost catalog.
func (h *Handler) ListBoosts(c *gin.Context) {
	offers := h.Boosts.Offers()

	out := make([]gin.H, 0, len(offers))
	for _, o := range offers {
		out = append(out, gin.H{
			"kind":             o.Kind,
			"cost":             o.Cost,
			"multiplier":       2,
			"duration_seconds": int(o.Duration.Seconds()),
		})
	}

	c.JSON(http.StatusOK, gin.H{"boosts": out})
}

type PurchaseBoostRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (h *Handler) PurchaseBoost(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PurchaseBoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind is required"})
		return
	}

	user, err := h.Boosts.Purchase(c.Request.Context(), userID, domain.BoostKind(req.Kind))
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrUnknownBoost):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown boost kind"})
		case errors.Is(err, rules.ErrInsufficientFunds):
			c.JSON(http.StatusConflict, gin.H{"error": "not enough coins"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	h.pushState("boost", user)

	c.JSON(http.StatusOK, gin.H{"user": userJSON(user, time.Now())})
}
