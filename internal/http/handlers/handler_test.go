package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := getUserID(c); ok {
		t.Fatal("got user id from empty context")
	}

	c.Set("user_id", int64(42))
	uid, ok := getUserID(c)
	if !ok || uid != 42 {
		t.Fatalf("getUserID = %d, %v; want 42, true", uid, ok)
	}

	// tokens parsed from JSON claims arrive as float64
	c.Set("user_id", float64(7))
	uid, ok = getUserID(c)
	if !ok || uid != 7 {
		t.Fatalf("getUserID float64 = %d, %v; want 7, true", uid, ok)
	}

	c.Set("user_id", "7")
	if _, ok := getUserID(c); ok {
		t.Fatal("string user_id accepted")
	}
}
