// AngelaMos | 2026
// memory.go

package account

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fiscaldesk/internal/core"
)

// MemoryRepository is an in-memory account store used by tests. InTx
// serializes callers on a single mutex, which gives the same observable
// guarantee as the row lock the postgres store takes: concurrent logins
// for one account cannot interleave their read-check-write sequences.
type MemoryRepository struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	accounts map[string]*Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*Account)}
}

func (m *MemoryRepository) Create(
	ctx context.Context,
	account *Account,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == account.Email {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *MemoryRepository) GetByID(
	ctx context.Context,
	id string,
) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByIDLocked(id)
}

func (m *MemoryRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(email)
	for _, a := range m.accounts {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
}

func (m *MemoryRepository) GetByEmailLocked(
	ctx context.Context,
	email string,
) (*Account, error) {
	return m.GetByEmail(ctx, email)
}

func (m *MemoryRepository) UpdateStatus(
	ctx context.Context,
	id, status string,
) error {
	return m.mutate(id, func(a *Account) { a.Status = status })
}

func (m *MemoryRepository) UpdateCredential(
	ctx context.Context,
	id, passwordHash string,
	singleUse bool,
) error {
	return m.mutate(id, func(a *Account) {
		a.PasswordHash = passwordHash
		a.CredentialSingleUse = singleUse
	})
}

func (m *MemoryRepository) ConsumeCredential(
	ctx context.Context,
	id string,
) error {
	return m.mutate(id, func(a *Account) {
		a.PasswordHash = ""
		a.CredentialSingleUse = false
	})
}

func (m *MemoryRepository) BindDevice(
	ctx context.Context,
	id, deviceID string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := m.getRefLocked(id)
	if err != nil {
		return err
	}
	if a.DeviceID != nil {
		return fmt.Errorf("bind device: %w", core.ErrNotFound)
	}
	a.DeviceID = &deviceID
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) SetLoggedIn(
	ctx context.Context,
	id string,
	loggedIn bool,
) error {
	return m.mutate(id, func(a *Account) { a.LoggedIn = loggedIn })
}

func (m *MemoryRepository) UnbindDevice(ctx context.Context, id string) error {
	return m.mutate(id, func(a *Account) {
		a.DeviceID = nil
		a.LoggedIn = false
	})
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("delete account: %w", core.ErrNotFound)
	}
	delete(m.accounts, id)
	return nil
}

func (m *MemoryRepository) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	params.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Account
	for _, a := range m.accounts {
		if params.Status != "" && a.Status != params.Status {
			continue
		}
		if params.Search != "" {
			needle := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(a.Email), needle) &&
				!strings.Contains(strings.ToLower(a.Name), needle) {
				continue
			}
		}
		matched = append(matched, *a)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func (m *MemoryRepository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (m *MemoryRepository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(&txMemoryRepository{m})
}

// txMemoryRepository is handed to InTx callbacks; nested InTx calls run in
// the already-held transaction instead of deadlocking on txMu.
type txMemoryRepository struct {
	*MemoryRepository
}

func (t *txMemoryRepository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	return fn(t)
}

func (m *MemoryRepository) getByIDLocked(id string) (*Account, error) {
	a, err := m.getRefLocked(id)
	if err != nil {
		return nil, err
	}
	copied := *a
	return &copied, nil
}

func (m *MemoryRepository) getRefLocked(id string) (*Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	return a, nil
}

func (m *MemoryRepository) mutate(id string, fn func(*Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := m.getRefLocked(id)
	if err != nil {
		return err
	}
	fn(a)
	a.UpdatedAt = time.Now()
	return nil
}
