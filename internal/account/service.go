// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fiscaldesk/internal/core"
)

// Service owns registration and the approval lifecycle. Approve and Reject
// only ever move an account out of PENDING; APPROVED and REJECTED are
// terminal, so a rejected registration has to register again rather than
// be quietly resurrected by an admin.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*Account, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		PasswordHash: passwordHash,
		Status:       StatusPending,
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) Approve(ctx context.Context, id string) (*Account, error) {
	return s.transition(ctx, id, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id string) (*Account, error) {
	return s.transition(ctx, id, StatusRejected)
}

func (s *Service) transition(
	ctx context.Context,
	id, target string,
) (*Account, error) {
	var updated *Account

	err := s.repo.InTx(ctx, func(repo Repository) error {
		account, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if account.Status != StatusPending {
			return fmt.Errorf(
				"account is %s, not pending: %w",
				strings.ToLower(account.Status),
				core.ErrConflict,
			)
		}

		if err := repo.UpdateStatus(ctx, id, target); err != nil {
			return err
		}

		account.Status = target
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ResetCredential replaces the account's credential with a random
// single-use one and returns the plaintext exactly once. The credential is
// consumed on its first successful login.
func (s *Service) ResetCredential(
	ctx context.Context,
	id string,
) (string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", err
	}

	temp, err := core.GenerateTempCredential()
	if err != nil {
		return "", err
	}

	hash, err := core.HashPassword(temp)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}

	if err := s.repo.UpdateCredential(ctx, id, hash, true); err != nil {
		return "", err
	}

	return temp, nil
}

// Delete permanently removes the account. Device binding and session state
// live on the same row, so removal cascades them by definition.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	if params.Status != "" && !ValidStatus(params.Status) {
		return nil, 0, fmt.Errorf(
			"invalid status %q: %w", params.Status, core.ErrInvalidInput)
	}
	return s.repo.List(ctx, params)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}
