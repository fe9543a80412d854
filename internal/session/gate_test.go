// AngelaMos | 2026
// gate_test.go

package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/account"
	"fiscaldesk/internal/core"
)

func seedAccount(
	t *testing.T,
	repo *account.MemoryRepository,
	email, password, status string,
) *account.Account {
	t.Helper()

	hash, err := core.HashPassword(password)
	require.NoError(t, err)

	acct := &account.Account{
		ID:           email + "-id",
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Status:       status,
		Role:         account.RoleUser,
	}
	require.NoError(t, repo.Create(context.Background(), acct))
	return acct
}

// requireSessionImpliesApproved checks the store-wide invariant that an
// active session only ever exists on an approved account.
func requireSessionImpliesApproved(
	t *testing.T,
	repo *account.MemoryRepository,
	id string,
) {
	t.Helper()

	acct, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	if acct.LoggedIn {
		require.Equal(t, account.StatusApproved, acct.Status)
	}
}

func requireDenied(t *testing.T, err error, reason DeniedReason) *DeniedError {
	t.Helper()

	denied, ok := AsDenied(err)
	require.True(t, ok, "expected a denial, got %v", err)
	require.Equal(t, reason, denied.Reason)
	return denied
}

func TestLoginLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)

	acct := seedAccount(t, repo, "a@x.com", "s1", account.StatusPending)

	// pending accounts cannot enter
	_, err := gate.Login(ctx, "a@x.com", "s1", "D1")
	denied := requireDenied(t, err, DeniedNotApproved)
	assert.Equal(t, account.StatusPending, denied.AccountStatus)
	requireSessionImpliesApproved(t, repo, acct.ID)

	require.NoError(t, repo.UpdateStatus(ctx, acct.ID, account.StatusApproved))

	// first login binds the device
	result, err := gate.Login(ctx, "a@x.com", "s1", "D1")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, result.AccountID)

	stored, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeviceID)
	assert.Equal(t, "D1", *stored.DeviceID)
	assert.True(t, stored.LoggedIn)
	requireSessionImpliesApproved(t, repo, acct.ID)

	// a second device is refused while the binding stands
	_, err = gate.Login(ctx, "a@x.com", "s1", "D2")
	requireDenied(t, err, DeniedDeviceMismatch)

	// logout frees the session but not the binding
	require.NoError(t, gate.Logout(ctx, "a@x.com"))
	_, err = gate.Login(ctx, "a@x.com", "s1", "D2")
	requireDenied(t, err, DeniedDeviceMismatch)

	// unbind frees the binding; the next device to log in re-binds
	require.NoError(t, gate.Unbind(ctx, acct.ID))
	_, err = gate.Login(ctx, "a@x.com", "s1", "D2")
	require.NoError(t, err)

	stored, err = repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeviceID)
	assert.Equal(t, "D2", *stored.DeviceID)
	requireSessionImpliesApproved(t, repo, acct.ID)
}

func TestLoginUnknownEmail(t *testing.T) {
	gate := NewGate(account.NewMemoryRepository())

	_, err := gate.Login(context.Background(), "ghost@x.com", "pw", "D1")
	requireDenied(t, err, DeniedNotFound)
}

func TestLoginBadCredential(t *testing.T) {
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)
	seedAccount(t, repo, "a@x.com", "right", account.StatusApproved)

	_, err := gate.Login(context.Background(), "a@x.com", "wrong", "D1")
	requireDenied(t, err, DeniedBadCredential)
}

func TestLoginRejectedAccount(t *testing.T) {
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)
	seedAccount(t, repo, "a@x.com", "s1", account.StatusRejected)

	_, err := gate.Login(context.Background(), "a@x.com", "s1", "D1")
	denied := requireDenied(t, err, DeniedNotApproved)
	assert.Equal(t, account.StatusRejected, denied.AccountStatus)
}

func TestLoginAlreadyLoggedInSameDevice(t *testing.T) {
	ctx := context.Background()
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)
	seedAccount(t, repo, "a@x.com", "s1", account.StatusApproved)

	_, err := gate.Login(ctx, "a@x.com", "s1", "D1")
	require.NoError(t, err)

	// even the bound device cannot open a second session
	_, err = gate.Login(ctx, "a@x.com", "s1", "D1")
	requireDenied(t, err, DeniedAlreadyLoggedIn)
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)
	acct := seedAccount(t, repo, "a@x.com", "s1", account.StatusApproved)

	_, err := gate.Login(ctx, "a@x.com", "s1", "D1")
	require.NoError(t, err)

	require.NoError(t, gate.Logout(ctx, "a@x.com"))
	require.NoError(t, gate.Logout(ctx, "a@x.com"))

	stored, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.False(t, stored.LoggedIn)
	require.NotNil(t, stored.DeviceID, "binding must survive logout")
}

func TestLogoutUnknownEmail(t *testing.T) {
	gate := NewGate(account.NewMemoryRepository())

	err := gate.Logout(context.Background(), "ghost@x.com")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSingleUseCredentialConsumedOnLogin(t *testing.T) {
	ctx := context.Background()
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)
	svc := account.NewService(repo)

	acct := seedAccount(t, repo, "a@x.com", "old", account.StatusApproved)

	temp, err := svc.ResetCredential(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, temp, 12)

	// the old credential is gone
	_, err = gate.Login(ctx, "a@x.com", "old", "D1")
	requireDenied(t, err, DeniedBadCredential)

	// the temp credential works exactly once
	_, err = gate.Login(ctx, "a@x.com", temp, "D1")
	require.NoError(t, err)

	require.NoError(t, gate.Logout(ctx, "a@x.com"))
	_, err = gate.Login(ctx, "a@x.com", temp, "D1")
	requireDenied(t, err, DeniedBadCredential)
}

func TestConcurrentLoginsSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := account.NewMemoryRepository()
	gate := NewGate(repo)
	acct := seedAccount(t, repo, "a@x.com", "s1", account.StatusApproved)
	require.NoError(t, repo.BindDevice(ctx, acct.ID, "D1"))

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = gate.Login(ctx, "a@x.com", "s1", "D1")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		requireDenied(t, err, DeniedAlreadyLoggedIn)
	}
	assert.Equal(t, 1, successes,
		"exactly one concurrent login may observe the free session flag")
	requireSessionImpliesApproved(t, repo, acct.ID)
}

func TestUnbindUnknownAccount(t *testing.T) {
	gate := NewGate(account.NewMemoryRepository())

	err := gate.Unbind(context.Background(), "missing-id")
	require.True(t, errors.Is(err, core.ErrNotFound))
}
