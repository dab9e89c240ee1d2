package handlers

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/service"
	"tapgame_webapp/internal/telegram"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	InitData string `json:"init_data"`
}

func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	// DEV MODE: пропускаем валидацию
	if os.Getenv("DEV_MODE") == "true" {
		var tgID int64 = 12345
		if strings.Contains(req.InitData, "\"id\":") {
			start := strings.Index(req.InitData, "\"id\":") + 5
			end := start
			for end < len(req.InitData) && req.InitData[end] >= '0' && req.InitData[end] <= '9' {
				end++
			}
			if parsed, err := strconv.ParseInt(req.InitData[start:end], 10, 64); err == nil {
				tgID = parsed
			}
		}
		h.finishAuth(c, tgID, "testuser"+strconv.FormatInt(tgID, 10), "Test")
		return
	}

	if len(req.InitData) > 4096 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data too long"})
		return
	}

	values, err := telegram.Validate(req.InitData, h.BotToken, time.Now())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
		return
	}

	tgUser, err := telegram.ParseUser(values)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user json"})
		return
	}

	h.finishAuth(c, tgUser.ID, tgUser.Username, tgUser.FirstName)
}

// finishAuth loads or creates the account, advances the daily streak and
// issues a session token.
func (h *Handler) finishAuth(c *gin.Context, tgID int64, username, firstName string) {
	ctx := c.Request.Context()

	user, created, err := h.Users.GetOrCreate(ctx, tgID, username, firstName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	// Streak advances on first login of the day. Failure here must not
	// block the login itself.
	if updated, err := h.Tasks.DailyReset(ctx, user.ID); err != nil {
		logger.Warn("daily reset on login failed", "user_id", user.ID, "error", err)
	} else {
		user = updated
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	if !created {
		h.Audit.LogWithRequest(ctx, user.ID,
			domain.AuditActionLogin, domain.AuditCategoryAuth,
			c.ClientIP(), c.Request.UserAgent(),
			map[string]interface{}{"tg_id": tgID})
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"created": created,
		"user":    userJSON(user, time.Now()),
	})
}
