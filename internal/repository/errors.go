package repository

import "errors"

// Repository-level sentinel errors. Missing rows surface as pgx.ErrNoRows.
var (
	// ErrAttemptLimitReached means the conditional attempt reservation found
	// the (quiz, student) pair already at its limit.
	ErrAttemptLimitReached = errors.New("attempt limit reached")
)
