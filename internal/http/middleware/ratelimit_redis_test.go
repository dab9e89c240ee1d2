package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Integration-style tests: run only if REDIS_ADDR env is set.

func redisFromEnv(t *testing.T) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), db)
}

func TestRedisRateLimitIntegration(t *testing.T) {
	redisFromEnv(t)
	gin.SetMode(gin.TestMode)

	// auth-shaped route: per-IP window
	r := gin.New()
	r.POST("/auth", RedisRateLimit(2, 2*time.Second), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	for i := 0; i < 2; i++ {
		res, err := http.Post(srv.URL+"/auth", "application/json", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != 200 {
			t.Fatalf("request %d: expected 200 got %d", i, res.StatusCode)
		}
	}

	res, err := http.Post(srv.URL+"/auth", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 429 {
		t.Fatalf("over limit: expected 429 got %d", res.StatusCode)
	}
}

func TestUserRateLimitIntegration(t *testing.T) {
	redisFromEnv(t)
	gin.SetMode(gin.TestMode)

	uid := time.Now().UnixNano() // fresh window key per run
	r := gin.New()
	r.POST("/tap",
		func(c *gin.Context) { c.Set("user_id", uid) },
		UserRateLimit("tap", 3, 2*time.Second),
		func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) },
	)

	srv := httptest.NewServer(r)
	defer srv.Close()

	for i := 0; i < 3; i++ {
		res, err := http.Post(srv.URL+"/tap", "application/json", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != 200 {
			t.Fatalf("tap %d: expected 200 got %d", i, res.StatusCode)
		}
		if got := res.Header.Get("X-UserRateLimit-Limit"); got != "3" {
			t.Fatalf("limit header = %q; want 3", got)
		}
	}

	res, err := http.Post(srv.URL+"/tap", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 429 {
		t.Fatalf("over limit: expected 429 got %d", res.StatusCode)
	}
}

func TestUserRateLimitRequiresAuth(t *testing.T) {
	redisFromEnv(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/tap", UserRateLimit("tap", 3, time.Second), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tap", nil)
	r.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("no user in context: expected 401 got %d", w.Code)
	}
}
