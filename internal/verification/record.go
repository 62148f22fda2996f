// Package verification owns the lifecycle of one-time email verification
// codes: issuance, attempt tracking, expiry and lockout. Everything else
// (user storage, mail delivery) is consumed through the collaborator
// interfaces below so the ledger itself stays process-local state
package verification

import (
	"context"
	"time"
)

const (
	// MaxAttempts is how many wrong codes a user may submit before the
	// identity is locked out for CooldownDuration
	MaxAttempts = 4

	CodeTTL          = 10 * time.Minute
	CooldownDuration = 24 * time.Hour
	SweepInterval    = 60 * time.Second
	CodeLength       = 6
)

// Record is the live state of one pending verification. At most one record
// exists per identity at any time
type Record struct {
	Identity string
	// Zero-padded numeric string, never a bare integer. "004312" must
	// survive a round trip
	Code     string
	OwnerID  string
	Attempts int

	CreatedAt time.Time
	ExpiresAt time.Time

	// Set once attempts are exhausted. While in the future it blocks both
	// reissuance and further verification
	CooldownUntil *time.Time
}

func (r *Record) cooldownActive(now time.Time) bool {
	return r.CooldownUntil != nil && now.Before(*r.CooldownUntil)
}

// purgeable reports whether the sweeper may remove the record. An entry
// under an active cooldown outlives its code expiry so the lockout can't
// be erased by the timer
func (r *Record) purgeable(now time.Time) bool {
	return now.After(r.ExpiresAt) && !r.cooldownActive(now)
}

// Status is the read-only view returned to the status endpoint
type Status struct {
	IsVerified    bool
	IsPending     bool
	AttemptsLeft  int
	CooldownUntil *time.Time
}

// Account is the slice of the user record the ledger cares about
type Account struct {
	OwnerID       string
	Email         string
	EmailVerified bool
}

// AccountStore resolves owner IDs to accounts and marks them verified.
// Implementations return ErrNoAccount when the owner is unknown
type AccountStore interface {
	FindByOwnerID(ctx context.Context, ownerID string) (*Account, error)
	MarkVerified(ctx context.Context, ownerID string) error
}

// CodeSender delivers a freshly issued code to the recipient. Send is
// awaited before the issuance is considered complete
type CodeSender interface {
	Send(ctx context.Context, identity, code, displayName string) error
}
