package service

import (
	"errors"
	"testing"

	"tapgame_webapp/internal/domain"
)

func TestCheckReferralEdge(t *testing.T) {
	ref := &domain.User{ID: 1}
	red := &domain.User{ID: 2}

	if err := checkReferralEdge(ref, red); err != nil {
		t.Fatalf("fresh edge rejected: %v", err)
	}

	if err := checkReferralEdge(ref, ref); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("self edge: %v; want ErrSelfReferral", err)
	}

	// a second code, even from a different referrer, must bounce before
	// any balance moves
	prior := int64(99)
	red.ReferredBy = &prior
	if err := checkReferralEdge(ref, red); !errors.Is(err, ErrDuplicateReferral) {
		t.Fatalf("re-referral: %v; want ErrDuplicateReferral", err)
	}
}
