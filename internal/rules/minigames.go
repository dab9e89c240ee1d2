package rules

import "tapgame_webapp/internal/domain"

// GameKind names one of the chance mini-games.
type GameKind string

const (
	GameSpin     GameKind = "spin"
	GameTreasure GameKind = "treasure"
	GameFlip     GameKind = "flip"
)

// MinStake is the smallest allowed stake for any mini-game.
const MinStake = 100

// PayoutBand maps a probability slice to a payout multiplier. Bands are
// resolved by cumulative probability against a uniform draw in [0,1).
type PayoutBand struct {
	Probability float64 `json:"probability"`
	Multiplier  float64 `json:"multiplier"`
	Diamonds    int64   `json:"diamonds"`
}

var spinBands = []PayoutBand{
	{Probability: 0.02, Multiplier: 10, Diamonds: 1},
	{Probability: 0.08, Multiplier: 5},
	{Probability: 0.20, Multiplier: 2},
	{Probability: 0.20, Multiplier: 1.5},
	{Probability: 0.20, Multiplier: 1},
	{Probability: 0.30, Multiplier: 0},
}

var treasureBands = []PayoutBand{
	{Probability: 0.05, Multiplier: 5, Diamonds: 1},
	{Probability: 0.15, Multiplier: 3},
	{Probability: 0.25, Multiplier: 2},
	{Probability: 0.25, Multiplier: 1},
	{Probability: 0.30, Multiplier: 0},
}

var flipBands = []PayoutBand{
	{Probability: 0.48, Multiplier: 2},
	{Probability: 0.52, Multiplier: 0},
}

// GameBands returns the payout table for a kind.
func GameBands(kind GameKind) ([]PayoutBand, bool) {
	switch kind {
	case GameSpin:
		return spinBands, true
	case GameTreasure:
		return treasureBands, true
	case GameFlip:
		return flipBands, true
	}
	return nil, false
}

// GameResult is the outcome of one weighted draw.
type GameResult struct {
	Kind       GameKind `json:"kind"`
	Band       int      `json:"band"`
	Multiplier float64  `json:"multiplier"`
	Stake      int64    `json:"stake"`
	Payout     int64    `json:"payout"`
	Net        int64    `json:"net"`
	Diamonds   int64    `json:"diamonds"`
}

// PlayGame resolves one stake against the payout table using a uniform draw
// in [0,1) supplied by the caller (crypto/rand in production, fixed in
// tests) and applies the net delta to the aggregate. Stateless beyond the
// balance mutation: nothing pending survives the call. Only a positive net
// delta counts toward lifetime earnings.
func PlayGame(u *domain.User, kind GameKind, stake int64, draw float64) (GameResult, error) {
	bands, ok := GameBands(kind)
	if !ok {
		return GameResult{}, ErrUnknownGame
	}
	if stake < MinStake {
		return GameResult{}, ErrStakeTooLow
	}
	if stake > u.Coins {
		return GameResult{}, ErrInsufficientFunds
	}

	band := len(bands) - 1
	cumulative := 0.0
	for i := range bands {
		cumulative += bands[i].Probability
		if draw < cumulative {
			band = i
			break
		}
	}

	res := GameResult{
		Kind:       kind,
		Band:       band,
		Multiplier: bands[band].Multiplier,
		Stake:      stake,
		Payout:     int64(float64(stake) * bands[band].Multiplier),
		Diamonds:   bands[band].Diamonds,
	}
	res.Net = res.Payout - stake

	u.Coins += res.Net
	u.Diamonds += res.Diamonds
	if res.Net > 0 {
		u.TotalEarnings += res.Net
	}
	return res, nil
}
