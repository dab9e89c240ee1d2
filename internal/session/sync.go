package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tapgame_webapp/internal/domain"
)

const (
	syncAttempts = 3
	syncBackoff  = 500 * time.Millisecond
)

var ErrRejected = errors.New("batch rejected by server")

// Client syncs queued batches against the server. Transient failures retry
// with a linear backoff; a definitive rejection drops the batch because the
// server's view of energy and balance wins.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// wireUser mirrors the server's user payload.
type wireUser struct {
	ID            int64  `json:"id"`
	TgID          int64  `json:"tg_id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	Coins         int64  `json:"coins"`
	Diamonds      int64  `json:"diamonds"`
	TotalEarnings int64  `json:"total_earnings"`
	Level         int    `json:"level"`
	Experience    int64  `json:"experience"`
	TapsCount     int64  `json:"taps_count"`
	CoinsPerTap   int64  `json:"coins_per_tap"`
	Energy        int    `json:"energy"`
	MaxEnergy     int    `json:"max_energy"`
	DailyStreak   int    `json:"daily_streak"`
	ReferralCode  string `json:"referral_code"`
	Boosts        map[string]struct {
		Multiplier int       `json:"multiplier"`
		ExpiresAt  time.Time `json:"expires_at"`
	} `json:"boosts"`
}

func (w *wireUser) toDomain() domain.User {
	u := domain.User{
		ID:            w.ID,
		TgID:          w.TgID,
		Username:      w.Username,
		FirstName:     w.FirstName,
		Coins:         w.Coins,
		Diamonds:      w.Diamonds,
		TotalEarnings: w.TotalEarnings,
		Level:         w.Level,
		Experience:    w.Experience,
		TapsCount:     w.TapsCount,
		CoinsPerTap:   w.CoinsPerTap,
		Energy:        w.Energy,
		MaxEnergy:     w.MaxEnergy,
		DailyStreak:   w.DailyStreak,
		ReferralCode:  w.ReferralCode,
	}
	for kind, b := range w.Boosts {
		if slot := u.Boosts.Get(domain.BoostKind(kind)); slot != nil {
			slot.Multiplier = b.Multiplier
			slot.ExpiresAt = b.ExpiresAt
		}
	}
	return u
}

// Fetch pulls the authoritative aggregate.
func (c *Client) Fetch(ctx context.Context) (domain.User, error) {
	var w wireUser
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &w); err != nil {
		return domain.User{}, err
	}
	return w.toDomain(), nil
}

// Sync replays the pending queue in order. It stops on the first transient
// failure so ordering is preserved, and reconciles the session with the
// last server answer it got.
func (c *Client) Sync(ctx context.Context, s *Session) (int, error) {
	consumed := 0
	var last *domain.User
	var syncErr error

	for _, batch := range s.Pending {
		body := map[string]int{"count": batch.Count}

		var resp struct {
			User wireUser `json:"user"`
		}
		err := c.doRetry(ctx, http.MethodPost, "/api/v1/tap", body, &resp)
		if err != nil {
			if errors.Is(err, ErrRejected) {
				// server refused the batch outright, drop it
				consumed++
				continue
			}
			syncErr = err
			break
		}

		u := resp.User.toDomain()
		last = &u
		consumed++
	}

	if last == nil && consumed > 0 {
		// every batch was rejected, refresh from the server instead
		u, err := c.Fetch(ctx)
		if err != nil {
			return 0, err
		}
		last = &u
	}

	if last != nil {
		s.Reconcile(*last, consumed, time.Now())
	}
	if consumed == 0 && syncErr != nil {
		return 0, syncErr
	}
	return consumed, nil
}

func (c *Client) doRetry(ctx context.Context, method, path string, body, out any) error {
	var err error
	for attempt := 1; attempt <= syncAttempts; attempt++ {
		err = c.do(ctx, method, path, body, out)
		if err == nil || errors.Is(err, ErrRejected) {
			return err
		}
		select {
		case <-time.After(time.Duration(attempt) * syncBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		return json.NewDecoder(res.Body).Decode(out)
	case res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusConflict:
		return ErrRejected
	default:
		return fmt.Errorf("server returned %d", res.StatusCode)
	}
}
