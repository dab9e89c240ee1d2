package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapgame_webapp/internal/bot"
	"tapgame_webapp/internal/config"
	"tapgame_webapp/internal/db"
	httpServer "tapgame_webapp/internal/http"
	"tapgame_webapp/internal/http/middleware"
	"tapgame_webapp/internal/jobs"
	"tapgame_webapp/internal/logger"
	"tapgame_webapp/internal/repository"
	"tapgame_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, cfg, version)

	userRepo := repository.NewUserRepository(dbPool)
	taskRepo := repository.NewTaskRepository(dbPool)

	scheduler := jobs.NewScheduler(userRepo, taskRepo, cfg.EnergyRegenSeconds)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start scheduler", "error", err)
	}

	var welcomeBot *bot.WelcomeBot
	if cfg.BotEnabled {
		var err error
		welcomeBot, err = bot.NewWelcomeBot(
			cfg.BotToken, cfg.BotUsername,
			service.NewUserService(dbPool),
			service.NewReferralService(dbPool),
		)
		if err != nil {
			logger.Fatal("failed to start bot", "error", err)
		}
		go welcomeBot.Start()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	scheduler.Stop()
	if welcomeBot != nil {
		welcomeBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
