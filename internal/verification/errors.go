package verification

import (
	"errors"
	"fmt"
	"time"
)

// Expected, user-facing outcomes. Each carries enough data for the caller
// to render precise UI state. Anything else coming out of the ledger is a
// collaborator fault and should surface as a generic failure
var (
	ErrNoAccount = errors.New("account not found")
	ErrNoPending = errors.New("no pending verification")
	ErrExpired   = errors.New("verification code expired")
)

// RateLimitedError blocks issue and verify while a cooldown is active
type RateLimitedError struct {
	CooldownUntil time.Time
	// Remaining cooldown rounded up to whole hours, for user messaging
	HoursLeft int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, try again in %d hour(s)", e.HoursLeft)
}

// InvalidCodeError is a wrong code with attempts still remaining
type InvalidCodeError struct {
	AttemptsLeft int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code, %d attempt(s) left", e.AttemptsLeft)
}

// TooManyAttemptsError is the attempt that exhausted the limit and
// triggered the cooldown
type TooManyAttemptsError struct {
	CooldownUntil time.Time
}

func (e *TooManyAttemptsError) Error() string {
	return "too many attempts, blocked for 24 hours"
}
