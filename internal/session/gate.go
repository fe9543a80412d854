// AngelaMos | 2026
// gate.go

package session

import (
	"context"
	"errors"
	"fmt"

	"fiscaldesk/internal/account"
	"fiscaldesk/internal/core"
)

// Gate enforces single-device, single-session licensing for the desktop
// client. An account binds permanently to the first device that logs in,
// and holds at most one active session, until an admin unbinds it.
type Gate struct {
	repo account.Repository
}

func NewGate(repo account.Repository) *Gate {
	return &Gate{repo: repo}
}

type LoginResult struct {
	AccountID string
	Name      string
}

// Login runs the admission checks in strict order, short-circuiting on the
// first failure. The whole read-check-write sequence executes inside one
// transaction with the account row locked, so two concurrent attempts for
// the same account cannot both observe the session flag as free.
func (g *Gate) Login(
	ctx context.Context,
	email, credential, deviceID string,
) (*LoginResult, error) {
	var result *LoginResult

	err := g.repo.InTx(ctx, func(repo account.Repository) error {
		acct, err := repo.GetByEmailLocked(ctx, email)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				// still burn an argon2 comparison so unknown emails are
				// not distinguishable by timing
				_, _ = core.VerifyPasswordTimingSafe(credential, nil)
				return Denied(DeniedNotFound)
			}
			return err
		}

		valid, err := core.VerifyPasswordTimingSafe(
			credential,
			&acct.PasswordHash,
		)
		if err != nil {
			return fmt.Errorf("verify credential: %w", err)
		}
		if !valid {
			return Denied(DeniedBadCredential)
		}

		if !acct.IsApproved() {
			return &DeniedError{
				Reason:        DeniedNotApproved,
				AccountStatus: acct.Status,
			}
		}

		switch {
		case !acct.IsBound():
			if err := repo.BindDevice(ctx, acct.ID, deviceID); err != nil {
				return fmt.Errorf("bind device: %w", err)
			}
		case *acct.DeviceID != deviceID:
			return Denied(DeniedDeviceMismatch)
		}

		// enforced even for the bound device retrying without a logout
		if acct.LoggedIn {
			return Denied(DeniedAlreadyLoggedIn)
		}

		if err := repo.SetLoggedIn(ctx, acct.ID, true); err != nil {
			return fmt.Errorf("set session flag: %w", err)
		}

		if acct.CredentialSingleUse {
			if err := repo.ConsumeCredential(ctx, acct.ID); err != nil {
				return fmt.Errorf("consume credential: %w", err)
			}
		}

		result = &LoginResult{AccountID: acct.ID, Name: acct.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Logout clears the session flag and nothing else; the device binding
// survives. Logging out twice is the same as logging out once. Unknown
// emails surface ErrNotFound rather than the silent success the legacy
// system reported.
func (g *Gate) Logout(ctx context.Context, email string) error {
	acct, err := g.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	return g.repo.SetLoggedIn(ctx, acct.ID, false)
}

// Unbind clears the device binding and forces the session flag off in the
// same transaction. The next login, from any device, re-binds.
func (g *Gate) Unbind(ctx context.Context, accountID string) error {
	return g.repo.InTx(ctx, func(repo account.Repository) error {
		return repo.UnbindDevice(ctx, accountID)
	})
}
