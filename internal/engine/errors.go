package engine

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrTodoArchived     = errors.New("todo is archived")
	ErrNotCompleted     = errors.New("challenge is not completed")
	ErrAlreadyClaimed   = errors.New("challenge already claimed")
	ErrChallengeExpired = errors.New("challenge expired")
	ErrAlreadyUnlocked  = errors.New("achievement already unlocked")
	ErrNotEligible      = errors.New("not eligible")
)
