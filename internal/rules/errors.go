package rules

import "errors"

var (
	ErrInvalidTapCount    = errors.New("tap count out of range")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrUnknownBoost       = errors.New("unknown boost kind")
	ErrStakeTooLow        = errors.New("stake below minimum")
	ErrUnknownGame        = errors.New("unknown game")

	ErrTaskAlreadyClaimed     = errors.New("task already claimed")
	ErrTaskRequirementsNotMet = errors.New("task requirements not met")
	ErrTaskNotClaimable       = errors.New("task is not claimable")
)
