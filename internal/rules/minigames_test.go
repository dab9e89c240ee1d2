package rules

import (
	"errors"
	"math"
	"testing"
)

func TestPlayGame_SpinBands(t *testing.T) {
	cases := []struct {
		draw       float64
		multiplier float64
		diamonds   int64
	}{
		{0.01, 10, 1},
		{0.05, 5, 0},
		{0.15, 2, 0},
		{0.35, 1.5, 0},
		{0.60, 1, 0},
		{0.90, 0, 0},
	}

	for _, tc := range cases {
		u := freshUser()
		u.Coins = 1000
		res, err := PlayGame(u, GameSpin, 1000, tc.draw)
		if err != nil {
			t.Fatalf("draw %.2f: %v", tc.draw, err)
		}
		if res.Multiplier != tc.multiplier {
			t.Fatalf("draw %.2f: multiplier %.1f; want %.1f", tc.draw, res.Multiplier, tc.multiplier)
		}
		if u.Diamonds != tc.diamonds {
			t.Fatalf("draw %.2f: diamonds %d; want %d", tc.draw, u.Diamonds, tc.diamonds)
		}
	}
}

func TestPlayGame_SpinBreakevenBand(t *testing.T) {
	u := freshUser()
	u.Coins = 1000
	res, err := PlayGame(u, GameSpin, 1000, 0.35)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	if res.Payout != 1500 || res.Net != 500 {
		t.Fatalf("payout %d net %d; want 1500/+500", res.Payout, res.Net)
	}
	if u.Coins != 1500 || u.TotalEarnings != 500 {
		t.Fatalf("coins %d earnings %d; want 1500/500", u.Coins, u.TotalEarnings)
	}
}

func TestPlayGame_LossDoesNotTouchEarnings(t *testing.T) {
	u := freshUser()
	u.Coins = 1000
	res, err := PlayGame(u, GameFlip, 500, 0.99)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	if res.Net != -500 || u.Coins != 500 {
		t.Fatalf("net %d coins %d; want -500/500", res.Net, u.Coins)
	}
	if u.TotalEarnings != 0 {
		t.Fatalf("earnings %d; want 0 on loss", u.TotalEarnings)
	}
}

func TestPlayGame_StakeValidation(t *testing.T) {
	u := freshUser()
	u.Coins = 1000

	if _, err := PlayGame(u, GameSpin, 99, 0.5); !errors.Is(err, ErrStakeTooLow) {
		t.Fatalf("low stake: %v; want ErrStakeTooLow", err)
	}
	if _, err := PlayGame(u, GameSpin, 1001, 0.5); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("over balance: %v; want ErrInsufficientFunds", err)
	}
	if _, err := PlayGame(u, "roulette", 100, 0.5); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("unknown game: %v; want ErrUnknownGame", err)
	}
	if u.Coins != 1000 {
		t.Fatalf("coins mutated on rejected stake: %d", u.Coins)
	}
}

func TestGameBands_ProbabilitiesSumToOne(t *testing.T) {
	for _, kind := range []GameKind{GameSpin, GameTreasure, GameFlip} {
		bands, ok := GameBands(kind)
		if !ok {
			t.Fatalf("missing bands for %s", kind)
		}
		sum := 0.0
		for _, b := range bands {
			sum += b.Probability
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("%s probabilities sum to %f", kind, sum)
		}
	}
}
