package handlers

import (
	"errors"
	"net/http"
	"time"

	"tapgame_webapp/internal/rules"
	"tapgame_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type PlayGameRequest struct {
	Stake int64 `json:"stake" binding:"required"`
}

// Spin plays one wheel round.
func (h *Handler) Spin(c *gin.Context) {
	h.playGame(c, rules.GameSpin)
}

// Treasure plays one treasure hunt round.
func (h *Handler) Treasure(c *gin.Context) {
	h.playGame(c, rules.GameTreasure)
}

// Flip plays one coin flip round.
func (h *Handler) Flip(c *gin.Context) {
	h.playGame(c, rules.GameFlip)
}

func (h *Handler) playGame(c *gin.Context, kind rules.GameKind) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PlayGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stake is required"})
		return
	}

	user, res, err := h.Games.Play(c.Request.Context(), userID, kind, req.Stake)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrStakeTooLow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "minimum stake is 100 coins"})
		case errors.Is(err, rules.ErrInsufficientFunds):
			c.JSON(http.StatusConflict, gin.H{"error": "not enough coins"})
		case errors.Is(err, rules.ErrUnknownGame):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "game failed"})
		}
		return
	}

	outcome := "loss"
	if res.Net > 0 {
		outcome = "win"
	} else if res.Net == 0 {
		outcome = "push"
	}
	GamesPlayed.WithLabelValues(string(kind), outcome).Inc()
	h.pushState("game", user)

	c.JSON(http.StatusOK, gin.H{
		"result": res,
		"user":   userJSON(user, time.Now()),
	})
}

// GameInfo exposes the payout tables so clients can render odds honestly.
func (h *Handler) GameInfo(c *gin.Context) {
	games := gin.H{}
	for _, kind := range []rules.GameKind{rules.GameSpin, rules.GameTreasure, rules.GameFlip} {
		bands, _ := rules.GameBands(kind)
		games[string(kind)] = bands
	}
	c.JSON(http.StatusOK, gin.H{
		"min_stake": rules.MinStake,
		"games":     games,
	})
}
