package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var codeSpace = big.NewInt(1_000_000)

// Ledger tracks pending verification codes keyed by recipient identity
// (the email address). All mutations of the same identity are serialized
// through a per-identity lock; identities never contend with each other.
// The only I/O performed under a held lock is the outbound code dispatch
// during Issue
type Ledger struct {
	store    Store
	accounts AccountStore
	sender   CodeSender
	locks    *keyedMutex

	now func() time.Time
}

func NewLedger(store Store, accounts AccountStore, sender CodeSender) *Ledger {
	return &Ledger{
		store:    store,
		accounts: accounts,
		sender:   sender,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// Issue generates a fresh code for identity and dispatches it to the
// recipient. Returns alreadyVerified=true (and no error) when the account
// needs no verification. An active cooldown fails with *RateLimitedError
// before anything is generated or sent.
//
// The record is only stored after the dispatch succeeded, so a failed
// delivery leaves no half-issued state behind
func (l *Ledger) Issue(ctx context.Context, identity, ownerID, displayName string) (alreadyVerified bool, err error) {
	acct, err := l.accounts.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return false, err
	}

	if acct.EmailVerified {
		return true, nil
	}

	unlock := l.locks.Lock(identity)
	defer unlock()

	now := l.now()

	if prev, ok := l.store.Get(identity); ok && prev.cooldownActive(now) {
		return false, &RateLimitedError{
			CooldownUntil: *prev.CooldownUntil,
			HoursLeft:     hoursLeft(now, *prev.CooldownUntil),
		}
	}

	code, err := generateCode()
	if err != nil {
		return false, fmt.Errorf("failed to generate code, %w", err)
	}

	rec := &Record{
		Identity:  identity,
		Code:      code,
		OwnerID:   ownerID,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(CodeTTL),
	}

	if err := l.sender.Send(ctx, identity, code, displayName); err != nil {
		return false, fmt.Errorf("failed to dispatch code, %w", err)
	}

	// Replaces any prior non-cooldown record for this identity
	l.store.Set(identity, rec)

	return false, nil
}

// Verify checks a submitted code against the pending record for identity.
// On a match the account is marked verified and the record removed. Every
// attempt counts, and the one that exhausts MaxAttempts starts the 24h
// cooldown
func (l *Ledger) Verify(ctx context.Context, identity, submitted, ownerID string) error {
	unlock := l.locks.Lock(identity)
	defer unlock()

	rec, ok := l.store.Get(identity)
	if !ok {
		return ErrNoPending
	}

	now := l.now()

	if rec.cooldownActive(now) {
		return &RateLimitedError{
			CooldownUntil: *rec.CooldownUntil,
			HoursLeft:     hoursLeft(now, *rec.CooldownUntil),
		}
	}

	if now.After(rec.ExpiresAt) {
		l.store.Delete(identity)
		return ErrExpired
	}

	// The attempt counts no matter the outcome
	rec.Attempts++
	l.store.Set(identity, rec)

	// Exact string comparison, no normalization
	if rec.Code != submitted {
		attemptsLeft := MaxAttempts - rec.Attempts

		if attemptsLeft <= 0 {
			until := now.Add(CooldownDuration)
			rec.CooldownUntil = &until
			l.store.Set(identity, rec)

			return &TooManyAttemptsError{CooldownUntil: until}
		}

		return &InvalidCodeError{AttemptsLeft: attemptsLeft}
	}

	if err := l.accounts.MarkVerified(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to mark account verified, %w", err)
	}

	l.store.Delete(identity)
	return nil
}

// Status reports the verification state for an owner. With no pending
// record AttemptsLeft is the full MaxAttempts
func (l *Ledger) Status(ctx context.Context, ownerID string) (*Status, error) {
	acct, err := l.accounts.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	st := &Status{
		IsVerified:   acct.EmailVerified,
		AttemptsLeft: MaxAttempts,
	}

	unlock := l.locks.Lock(acct.Email)
	defer unlock()

	if rec, ok := l.store.Get(acct.Email); ok {
		st.IsPending = true
		st.AttemptsLeft = MaxAttempts - rec.Attempts
		st.CooldownUntil = rec.CooldownUntil
	}

	return st, nil
}

// generateCode draws a uniformly random number below 10^CodeLength and
// formats it zero-padded. Leading zeros are part of the code
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", CodeLength, n), nil
}

func hoursLeft(now, until time.Time) int {
	remaining := until.Sub(now)
	return int((remaining + time.Hour - 1) / time.Hour)
}
