package session

import (
	"time"

	"tapgame_webapp/internal/domain"
	"tapgame_webapp/internal/rules"
)

// TapBatch is one queued offline action, bounded the same way the server
// bounds a tap request.
type TapBatch struct {
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// Session is the client-side copy of the aggregate. Taps apply optimistically
// through the same rules the server runs, and queue for later sync. The
// server's answer always replaces the local guess.
type Session struct {
	User      domain.User `json:"user"`
	Pending   []TapBatch  `json:"pending"`
	LastRegen time.Time   `json:"last_regen"`
	SyncedAt  time.Time   `json:"synced_at"`
}

func New(u domain.User, now time.Time) *Session {
	return &Session{
		User:      u,
		LastRegen: now,
		SyncedAt:  now,
	}
}

// Tap applies a batch locally and queues it for the server.
func (s *Session) Tap(n int, now time.Time) (rules.TapResult, error) {
	s.regen(now)

	res, err := rules.ApplyTaps(&s.User, n, now)
	if err != nil {
		return rules.TapResult{}, err
	}

	s.Pending = append(s.Pending, TapBatch{Count: n, At: now})
	return res, nil
}

// regen folds elapsed offline time into the local energy pool so the
// optimistic view tracks what the server sweep is doing meanwhile.
func (s *Session) regen(now time.Time) {
	if s.LastRegen.IsZero() {
		s.LastRegen = now
		return
	}
	elapsed := now.Sub(s.LastRegen)
	if elapsed <= 0 {
		return
	}
	rules.RegenEnergy(&s.User, elapsed, now)
	rules.SweepBoosts(&s.User, now)
	s.LastRegen = now
}

// Reconcile replaces the local aggregate with the server's authoritative
// state and drops the batches the server consumed.
func (s *Session) Reconcile(u domain.User, consumed int, now time.Time) {
	s.User = u
	if consumed >= len(s.Pending) {
		s.Pending = nil
	} else {
		s.Pending = append([]TapBatch(nil), s.Pending[consumed:]...)
	}
	s.LastRegen = now
	s.SyncedAt = now
}
