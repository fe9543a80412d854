// AngelaMos | 2026
// main_test.go

package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/account"
	"fiscaldesk/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedAdminNormalizesEmail(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.COM ")
	t.Setenv("ADMIN_NAME", "Root Admin")
	t.Setenv("ADMIN_PASSWORD", "super-secret-1")

	ctx := context.Background()
	repo := account.NewMemoryRepository()

	require.NoError(t, runSeedAdmin(ctx, repo, discardLogger()))

	// the account must be reachable through the lowercased lookup
	// every login path uses
	acct, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", acct.Email)
	assert.Equal(t, account.RoleAdmin, acct.Role)
	assert.Equal(t, account.StatusApproved, acct.Status)

	ok, err := core.VerifyPassword("super-secret-1", acct.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	t.Setenv("ADMIN_NAME", "Root Admin")
	t.Setenv("ADMIN_PASSWORD", "super-secret-1")

	ctx := context.Background()
	repo := account.NewMemoryRepository()

	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	require.NoError(t, runSeedAdmin(ctx, repo, discardLogger()))

	// a re-run under any spelling detects the existing admin instead
	// of tripping the unique constraint
	t.Setenv("ADMIN_EMAIL", "ADMIN@example.com")
	require.NoError(t, runSeedAdmin(ctx, repo, discardLogger()))

	accounts, total, err := repo.List(ctx, account.ListAccountsParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, "admin@example.com", accounts[0].Email)
}

func TestSeedAdminRequiresCredentials(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	err := runSeedAdmin(
		context.Background(),
		account.NewMemoryRepository(),
		discardLogger(),
	)
	require.Error(t, err)
}
