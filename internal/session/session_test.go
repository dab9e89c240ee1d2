package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/rules"
)

func freshUser(tgID int64) domain.User {
	u := domain.User{ID: 1, TgID: tgID}
	rules.NewUserDefaults(&u)
	return u
}

func TestTapAppliesOptimisticallyAndQueues(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(freshUser(100), now)

	res, err := s.Tap(5, now)
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	if res.CoinsEarned != 5 {
		t.Fatalf("coins earned = %d, want 5", res.CoinsEarned)
	}
	if s.User.Coins != 5 || s.User.Energy != 995 {
		t.Fatalf("local state coins=%d energy=%d, want 5/995", s.User.Coins, s.User.Energy)
	}
	if len(s.Pending) != 1 || s.Pending[0].Count != 5 {
		t.Fatalf("pending = %+v, want one batch of 5", s.Pending)
	}
}

func TestTapRejectedBatchNotQueued(t *testing.T) {
	now := time.Now()
	s := New(freshUser(100), now)

	if _, err := s.Tap(11, now); !errors.Is(err, rules.ErrInvalidTapCount) {
		t.Fatalf("err = %v, want ErrInvalidTapCount", err)
	}
	if len(s.Pending) != 0 {
		t.Fatalf("rejected batch must not queue, pending=%d", len(s.Pending))
	}
}

func TestRegenBetweenTaps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(freshUser(100), now)

	if _, err := s.Tap(10, now); err != nil {
		t.Fatalf("tap: %v", err)
	}
	if s.User.Energy != 990 {
		t.Fatalf("energy = %d, want 990", s.User.Energy)
	}

	// 4 seconds offline regenerates 4 energy before the next batch drains 1
	later := now.Add(4 * time.Second)
	if _, err := s.Tap(1, later); err != nil {
		t.Fatalf("tap: %v", err)
	}
	if s.User.Energy != 993 {
		t.Fatalf("energy = %d, want 993", s.User.Energy)
	}
}

func TestReconcileServerWins(t *testing.T) {
	now := time.Now()
	s := New(freshUser(100), now)

	for i := 0; i < 3; i++ {
		if _, err := s.Tap(2, now); err != nil {
			t.Fatalf("tap: %v", err)
		}
	}

	server := freshUser(100)
	server.Coins = 999
	server.Energy = 500

	s.Reconcile(server, 2, now)

	if s.User.Coins != 999 || s.User.Energy != 500 {
		t.Fatalf("reconcile kept local state: coins=%d energy=%d", s.User.Coins, s.User.Energy)
	}
	if len(s.Pending) != 1 {
		t.Fatalf("pending = %d, want 1 unconsumed batch", len(s.Pending))
	}
}

func TestSyncRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := map[string]any{"user": map[string]any{
			"id": 1, "tg_id": 100, "coins": 7, "level": 1,
			"energy": 993, "max_energy": 1000,
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	now := time.Now()
	s := New(freshUser(100), now)
	if _, err := s.Tap(7, now); err != nil {
		t.Fatalf("tap: %v", err)
	}

	c := NewClient(srv.URL, "token")
	consumed, err := c.Sync(context.Background(), s)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if consumed != 1 {
		t.Fatalf("consumed = %d, want 1", consumed)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want retry after 500", calls.Load())
	}
	if s.User.Coins != 7 || len(s.Pending) != 0 {
		t.Fatalf("reconcile failed: coins=%d pending=%d", s.User.Coins, len(s.Pending))
	}
}

func TestSyncDropsRejectedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tap":
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not enough energy"})
		case "/api/v1/me":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": 1, "tg_id": 100, "coins": 42, "level": 1,
				"energy": 0, "max_energy": 1000,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	now := time.Now()
	s := New(freshUser(100), now)
	if _, err := s.Tap(3, now); err != nil {
		t.Fatalf("tap: %v", err)
	}

	c := NewClient(srv.URL, "token")
	consumed, err := c.Sync(context.Background(), s)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if consumed != 1 {
		t.Fatalf("consumed = %d, want rejected batch dropped", consumed)
	}
	if s.User.Coins != 42 || s.User.Energy != 0 {
		t.Fatalf("server state not adopted: coins=%d energy=%d", s.User.Coins, s.User.Energy)
	}
	if len(s.Pending) != 0 {
		t.Fatalf("pending = %d, want 0", len(s.Pending))
	}
}
