package config

import (
	"os"
	"strconv"

	"tapgame_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	BotToken    string
	BotUsername string
	BotEnabled  bool
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Rate limits
	APIRateLimit  int // requests per window per IP
	APIRateWindow int // seconds
	TapRateLimit  int // tap actions per window per user
	TapRateWindow int // seconds

	// Sweep intervals
	EnergyRegenSeconds int // tick length for the passive regen sweep
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "TapGameBot"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		BotToken:    botToken,
		BotUsername: botUsername,
		BotEnabled:  os.Getenv("BOT_ENABLED") == "true",
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envDefault("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envInt("API_RATE_WINDOW_SECONDS", 60),
		TapRateLimit:  envInt("TAP_RATE_LIMIT", 120),
		TapRateWindow: envInt("TAP_RATE_WINDOW_SECONDS", 60),

		EnergyRegenSeconds: envInt("ENERGY_REGEN_SECONDS", 60),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
