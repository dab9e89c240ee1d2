package http

import (
	"time"

	"tapgame_webapp/internal/config"
	"tapgame_webapp/internal/http/handlers"
	"tapgame_webapp/internal/http/middleware"
	"tapgame_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the full HTTP surface: auth, tap loop, tasks,
// boosts, referrals, mini-games, leaderboard and the state-push socket.
func RegisterRoutes(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, version string) *ws.Hub {
	h := handlers.NewHandler(dbPool, cfg.BotToken, cfg.BotUsername)
	healthHandler := handlers.NewHealthHandler(dbPool, version)

	hub := ws.NewHub()
	h.WS = hub

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	tapRateWindow := time.Duration(cfg.TapRateWindow) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, cfg, tapRateWindow)

	// Legacy /api alias for older clients
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, cfg, tapRateWindow)

	// State push socket
	r.GET("/ws", ws.HandleWS(hub))

	return hub
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config, tapRateWindow time.Duration) {
	// Auth gets the per-IP in-memory limiter on top of the Redis one so a
	// single host cannot hammer initData validation even without Redis.
	api.POST("/auth", middleware.SimpleRateLimit(10, time.Minute), h.Auth)

	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/audit", middleware.JWT(), h.MyAudit)

	// Tap loop (per user, not per IP)
	tapRL := middleware.UserRateLimit("tap", cfg.TapRateLimit, tapRateWindow)
	api.POST("/tap", middleware.JWT(), tapRL, h.Tap)

	// Tasks and achievements. The daily reset lives outside /tasks because
	// gin's router cannot mix the :id wildcard with a static sibling.
	api.GET("/tasks", middleware.JWT(), h.ListTasks)
	api.POST("/tasks/:id/claim", middleware.JWT(), h.ClaimTask)
	api.POST("/daily/reset", middleware.JWT(), h.DailyReset)

	// Boost store
	api.GET("/boosts", middleware.JWT(), h.ListBoosts)
	api.POST("/boosts/purchase", middleware.JWT(), h.PurchaseBoost)

	// Referral system
	referral := api.Group("/referral")
	referral.Use(middleware.JWT())
	{
		referral.GET("/code", h.GetReferralCode)
		referral.GET("/link", h.GetReferralLink)
		referral.GET("/stats", h.GetReferralStats)
		referral.POST("/apply", h.ApplyReferralCode)
	}

	// Mini-games share the tap limiter budget
	gameRL := middleware.UserRateLimit("game", cfg.TapRateLimit, tapRateWindow)
	games := api.Group("/games")
	{
		games.GET("/info", h.GameInfo)
		games.POST("/spin", middleware.JWT(), gameRL, h.Spin)
		games.POST("/treasure", middleware.JWT(), gameRL, h.Treasure)
		games.POST("/flip", middleware.JWT(), gameRL, h.Flip)
	}

	// Leaderboard
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/leaderboard/rank", middleware.JWT(), h.GetMyRank)
}
