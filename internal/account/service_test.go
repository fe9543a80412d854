// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/core"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	acct, err := svc.Register(ctx, RegisterRequest{
		Name:     "Maria Souza",
		Email:    "Maria@Example.COM",
		Password: "longenough1",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", acct.Email)
	assert.Equal(t, StatusPending, acct.Status)
	assert.Equal(t, RoleUser, acct.Role)
	assert.False(t, acct.LoggedIn)
	assert.Nil(t, acct.DeviceID)
	assert.NotEqual(t, "longenough1", acct.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	req := RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "longenough1",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestApproveAndRejectAreTerminal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	pending, err := svc.Register(ctx, RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "longenough1",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	// no transition leaves a terminal state
	_, err = svc.Approve(ctx, pending.ID)
	require.ErrorIs(t, err, core.ErrConflict)
	_, err = svc.Reject(ctx, pending.ID)
	require.ErrorIs(t, err, core.ErrConflict)

	rejected, err := svc.Register(ctx, RegisterRequest{
		Name:     "Joao",
		Email:    "joao@example.com",
		Password: "longenough1",
	})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, rejected.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, rejected.ID)
	require.ErrorIs(t, err, core.ErrConflict)
}

func TestTransitionUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Approve(context.Background(), "missing-id")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestResetCredential(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	acct, err := svc.Register(ctx, RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "longenough1",
	})
	require.NoError(t, err)

	temp, err := svc.ResetCredential(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, temp, 12)

	stored, err := repo.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.CredentialSingleUse)
	assert.NotEqual(t, temp, stored.PasswordHash)

	valid, err := core.VerifyPassword(temp, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)

	// the previous credential no longer verifies
	valid, err = core.VerifyPassword("longenough1", stored.PasswordHash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.Register(ctx, RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "longenough1",
	})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{
		Name: "B", Email: "b@example.com", Password: "longenough1",
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, a.ID)
	require.NoError(t, err)

	pending, total, err := svc.List(ctx, ListAccountsParams{
		Status: StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, "b@example.com", pending[0].Email)

	_, _, err = svc.List(ctx, ListAccountsParams{Status: "BOGUS"})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}
