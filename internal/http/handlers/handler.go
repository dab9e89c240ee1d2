package handlers

import (
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/repository"
	"tapgame_webapp/internal/service"
	"tapgame_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB          *pgxpool.Pool
	BotToken    string
	BotUsername string
	WS          *ws.Hub

	UserRepo  *repository.UserRepository
	Users     *service.UserService
	Taps      *service.TapService
	Tasks     *service.TaskService
	Boosts    *service.BoostService
	Referrals *service.ReferralService
	Games     *service.MinigameService
	Audit     *service.AuditService
}

func NewHandler(db *pgxpool.Pool, botToken, botUsername string) *Handler {
	return &Handler{
		DB:          db,
		BotToken:    botToken,
		BotUsername: botUsername,
		UserRepo:    repository.NewUserRepository(db),
		Users:       service.NewUserService(db),
		Taps:        service.NewTapService(db),
		Tasks:       service.NewTaskService(db),
		Boosts:      service.NewBoostService(db),
		Referrals:   service.NewReferralService(db),
		Games:       service.NewMinigameService(db),
		Audit:       service.NewAuditService(db),
	}
}

// pushState broadcasts the fresh aggregate to the user's open sockets.
func (h *Handler) pushState(event string, u *domain.User) {
	if h.WS == nil || u == nil {
		return
	}
	h.WS.PushState(u.ID, event, userJSON(u, time.Now()))
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
