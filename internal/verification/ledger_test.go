package verification

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	Identity    string
	Code        string
	DisplayName string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, identity, code, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, sentMail{identity, code, displayName})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*Account
	markErr  error
}

func (f *fakeAccounts) FindByOwnerID(_ context.Context, ownerID string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.accounts[ownerID]
	if !ok {
		return nil, ErrNoAccount
	}

	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) MarkVerified(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markErr != nil {
		return f.markErr
	}

	a, ok := f.accounts[ownerID]
	if !ok {
		return ErrNoAccount
	}

	a.EmailVerified = true
	return nil
}

const (
	testIdentity = "a@x.com"
	testOwner    = "u1"
)

func testLedger(t *testing.T) (*Ledger, *MemoryStore, *fakeAccounts, *fakeSender, *time.Time) {
	t.Helper()

	store := NewMemoryStore()
	accounts := &fakeAccounts{
		accounts: map[string]*Account{
			testOwner: {OwnerID: testOwner, Email: testIdentity},
		},
	}
	sender := &fakeSender{}

	l := NewLedger(store, accounts, sender)

	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	return l, store, accounts, sender, &now
}

func TestIssueCreatesRecord(t *testing.T) {
	l, store, _, sender, now := testLedger(t)

	already, err := l.Issue(context.Background(), testIdentity, testOwner, "Ada")
	require.NoError(t, err)
	assert.False(t, already)

	rec, ok := store.Get(testIdentity)
	require.True(t, ok)
	assert.Equal(t, 0, rec.Attempts)
	assert.Equal(t, testOwner, rec.OwnerID)
	assert.Equal(t, *now, rec.CreatedAt)
	assert.Equal(t, now.Add(CodeTTL), rec.ExpiresAt)
	assert.Nil(t, rec.CooldownUntil)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), rec.Code)

	require.Equal(t, 1, sender.count())
	assert.Equal(t, sentMail{testIdentity, rec.Code, "Ada"}, sender.sent[0])
}

func TestIssueReplacesPriorRecord(t *testing.T) {
	l, store, _, sender, _ := testLedger(t)

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	first, _ := store.Get(testIdentity)

	// A wrong attempt then a fresh issue must reset the counter
	err = l.Verify(context.Background(), testIdentity, wrongCode(first.Code), testOwner)
	var invalid *InvalidCodeError
	require.ErrorAs(t, err, &invalid)

	_, err = l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)

	rec, ok := store.Get(testIdentity)
	require.True(t, ok)
	assert.Equal(t, 0, rec.Attempts)
	assert.Equal(t, 2, sender.count())
}

func TestIssueAlreadyVerified(t *testing.T) {
	l, store, accounts, sender, _ := testLedger(t)
	accounts.accounts[testOwner].EmailVerified = true

	already, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	assert.True(t, already)

	_, ok := store.Get(testIdentity)
	assert.False(t, ok)
	assert.Equal(t, 0, sender.count())
}

func TestIssueUnknownOwner(t *testing.T) {
	l, _, _, sender, _ := testLedger(t)

	_, err := l.Issue(context.Background(), "b@x.com", "nobody", "")
	assert.ErrorIs(t, err, ErrNoAccount)
	assert.Equal(t, 0, sender.count())
}

func TestIssueDuringCooldown(t *testing.T) {
	l, store, _, sender, now := testLedger(t)

	until := now.Add(5 * time.Hour)
	store.Set(testIdentity, &Record{
		Identity:      testIdentity,
		Code:          "042517",
		OwnerID:       testOwner,
		Attempts:      MaxAttempts,
		CreatedAt:     now.Add(-time.Hour),
		ExpiresAt:     now.Add(-50 * time.Minute),
		CooldownUntil: &until,
	})

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, until, rl.CooldownUntil)
	assert.Equal(t, 5, rl.HoursLeft)

	// No dispatch, record untouched
	assert.Equal(t, 0, sender.count())
	rec, ok := store.Get(testIdentity)
	require.True(t, ok)
	assert.Equal(t, "042517", rec.Code)
}

func TestIssueDispatchFailureStoresNothing(t *testing.T) {
	l, store, _, sender, _ := testLedger(t)
	sender.err = errors.New("smtp unreachable")

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.Error(t, err)

	_, ok := store.Get(testIdentity)
	assert.False(t, ok)
}

func TestVerifyNoPending(t *testing.T) {
	l, _, _, _, _ := testLedger(t)

	err := l.Verify(context.Background(), testIdentity, "123456", testOwner)
	assert.ErrorIs(t, err, ErrNoPending)
}

func TestVerifyWrongCodeCountsDown(t *testing.T) {
	l, store, _, _, _ := testLedger(t)

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	rec, _ := store.Get(testIdentity)
	bad := wrongCode(rec.Code)

	for i, want := range []int{3, 2, 1} {
		err := l.Verify(context.Background(), testIdentity, bad, testOwner)

		var invalid *InvalidCodeError
		require.ErrorAs(t, err, &invalid, "attempt %d", i+1)
		assert.Equal(t, want, invalid.AttemptsLeft)

		got, ok := store.Get(testIdentity)
		require.True(t, ok, "record must survive attempt %d", i+1)
		assert.Equal(t, i+1, got.Attempts)
	}
}

// The full walkthrough: code "042517", four wrong submissions, then a
// correct one that is still rejected because of the cooldown
func TestVerifyLockoutScenario(t *testing.T) {
	l, store, _, _, now := testLedger(t)

	store.Set(testIdentity, &Record{
		Identity:  testIdentity,
		Code:      "042517",
		OwnerID:   testOwner,
		CreatedAt: *now,
		ExpiresAt: now.Add(CodeTTL),
	})

	for _, want := range []int{3, 2, 1} {
		err := l.Verify(context.Background(), testIdentity, "000000", testOwner)

		var invalid *InvalidCodeError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, want, invalid.AttemptsLeft)
	}

	err := l.Verify(context.Background(), testIdentity, "000000", testOwner)

	var locked *TooManyAttemptsError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, now.Add(CooldownDuration), locked.CooldownUntil)

	rec, ok := store.Get(testIdentity)
	require.True(t, ok, "locked record is retained to enforce the block")
	require.NotNil(t, rec.CooldownUntil)
	assert.Equal(t, MaxAttempts, rec.Attempts)

	// Even the correct code bounces now
	err = l.Verify(context.Background(), testIdentity, "042517", testOwner)

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, now.Add(CooldownDuration), rl.CooldownUntil)
}

func TestVerifySuccess(t *testing.T) {
	l, store, accounts, _, _ := testLedger(t)

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	rec, _ := store.Get(testIdentity)

	require.NoError(t, l.Verify(context.Background(), testIdentity, rec.Code, testOwner))

	assert.True(t, accounts.accounts[testOwner].EmailVerified)
	_, ok := store.Get(testIdentity)
	assert.False(t, ok)

	// The record is gone, a repeat verify has nothing to check against
	err = l.Verify(context.Background(), testIdentity, rec.Code, testOwner)
	assert.ErrorIs(t, err, ErrNoPending)
}

func TestVerifySucceedsAfterWrongAttempts(t *testing.T) {
	l, store, accounts, _, _ := testLedger(t)

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	rec, _ := store.Get(testIdentity)

	require.Error(t, l.Verify(context.Background(), testIdentity, wrongCode(rec.Code), testOwner))
	require.NoError(t, l.Verify(context.Background(), testIdentity, rec.Code, testOwner))

	assert.True(t, accounts.accounts[testOwner].EmailVerified)
}

func TestVerifyExpired(t *testing.T) {
	l, store, accounts, _, now := testLedger(t)

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	rec, _ := store.Get(testIdentity)

	*now = now.Add(CodeTTL + time.Second)

	// Even the correct code is rejected past expiry
	err = l.Verify(context.Background(), testIdentity, rec.Code, testOwner)
	assert.ErrorIs(t, err, ErrExpired)

	_, ok := store.Get(testIdentity)
	assert.False(t, ok)
	assert.False(t, accounts.accounts[testOwner].EmailVerified)
}

func TestVerifyMarkVerifiedFailure(t *testing.T) {
	l, store, accounts, _, _ := testLedger(t)
	accounts.markErr = errors.New("db unreachable")

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	rec, _ := store.Get(testIdentity)

	err = l.Verify(context.Background(), testIdentity, rec.Code, testOwner)
	require.Error(t, err)

	var invalid *InvalidCodeError
	assert.False(t, errors.As(err, &invalid), "collaborator faults are not user-facing outcomes")

	// Record stays so the user can retry once storage recovers
	_, ok := store.Get(testIdentity)
	assert.True(t, ok)
}

func TestStatus(t *testing.T) {
	l, store, accounts, _, now := testLedger(t)

	// No pending record: full attempts available
	st, err := l.Status(context.Background(), testOwner)
	require.NoError(t, err)
	assert.False(t, st.IsVerified)
	assert.False(t, st.IsPending)
	assert.Equal(t, MaxAttempts, st.AttemptsLeft)
	assert.Nil(t, st.CooldownUntil)

	until := now.Add(CooldownDuration)
	store.Set(testIdentity, &Record{
		Identity:      testIdentity,
		Code:          "654321",
		OwnerID:       testOwner,
		Attempts:      3,
		CreatedAt:     *now,
		ExpiresAt:     now.Add(CodeTTL),
		CooldownUntil: &until,
	})

	st, err = l.Status(context.Background(), testOwner)
	require.NoError(t, err)
	assert.True(t, st.IsPending)
	assert.Equal(t, 1, st.AttemptsLeft)
	require.NotNil(t, st.CooldownUntil)
	assert.Equal(t, until, *st.CooldownUntil)

	accounts.accounts[testOwner].EmailVerified = true
	st, err = l.Status(context.Background(), testOwner)
	require.NoError(t, err)
	assert.True(t, st.IsVerified)

	_, err = l.Status(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoAccount)
}

// Two concurrent verify calls for the same identity must not both slip
// past the attempt limit
func TestConcurrentVerifyRespectsLockout(t *testing.T) {
	l, store, _, _, _ := testLedger(t)

	_, err := l.Issue(context.Background(), testIdentity, testOwner, "")
	require.NoError(t, err)
	rec, _ := store.Get(testIdentity)
	bad := wrongCode(rec.Code)

	const workers = 8
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Verify(context.Background(), testIdentity, bad, testOwner)
		}()
	}
	wg.Wait()
	close(results)

	var invalid, locked, limited int
	for err := range results {
		var ic *InvalidCodeError
		var tm *TooManyAttemptsError
		var rl *RateLimitedError

		switch {
		case errors.As(err, &ic):
			invalid++
		case errors.As(err, &tm):
			locked++
		case errors.As(err, &rl):
			limited++
		default:
			t.Fatalf("unexpected outcome: %v", err)
		}
	}

	assert.Equal(t, MaxAttempts-1, invalid)
	assert.Equal(t, 1, locked, "exactly one attempt triggers the cooldown")
	assert.Equal(t, workers-MaxAttempts, limited)

	got, ok := store.Get(testIdentity)
	require.True(t, ok)
	assert.Equal(t, MaxAttempts, got.Attempts, "attempts never exceed the limit")
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)

	for range 256 {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestHoursLeftRoundsUp(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, hoursLeft(now, now.Add(time.Nanosecond)))
	assert.Equal(t, 1, hoursLeft(now, now.Add(time.Hour)))
	assert.Equal(t, 24, hoursLeft(now, now.Add(23*time.Hour+time.Minute)))
	assert.Equal(t, 24, hoursLeft(now, now.Add(CooldownDuration)))
}

// wrongCode returns a six digit string guaranteed to differ from code
func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
