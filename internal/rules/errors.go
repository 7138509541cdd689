package rules

import (
	"errors"
	"fmt"
	"time"
)

// Engine errors. Callers match with errors.Is; the typed carriers below
// additionally expose the data the UI needs (penalized balance,
// remaining cooldown) via errors.As.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmptyText           = fmt.Errorf("%w: empty text", ErrInvalidInput)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrInsufficientBalance = errors.New("insufficient tokens")
	ErrRateLimited         = errors.New("free tier cooldown active")
)

// InsufficientBalanceError reports a failed metered action together with
// the balance after the overdraft penalty was applied.
type InsufficientBalanceError struct {
	// Balance is the account balance after halving.
	Balance int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient tokens (balance now %d)", e.Balance)
}

// Unwrap allows errors.Is(err, ErrInsufficientBalance).
func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// RateLimitedError reports an active free-tier cooldown.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("free tier cooldown active, retry in %s", e.RetryAfter.Round(time.Second))
}

// Unwrap allows errors.Is(err, ErrRateLimited).
func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
