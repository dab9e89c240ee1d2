package service

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")

	ErrInvalidCode         = errors.New("invalid referral code")
	ErrSelfReferral        = errors.New("self referral")
	ErrDuplicateReferral   = errors.New("duplicate referral")
	ErrUnknownReferredUser = errors.New("referred user has no account")
)
