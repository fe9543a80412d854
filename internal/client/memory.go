// AngelaMos | 2026
// memory.go

package client

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fiscaldesk/internal/core"
)

// MemoryRepository is the in-memory client store used by tests.
type MemoryRepository struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	clients map[string]*Client
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{clients: make(map[string]*Client)}
}

func (m *MemoryRepository) Create(ctx context.Context, client *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		if c.CNPJ == client.CNPJ {
			return fmt.Errorf("create client: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	stored := *client
	m.clients[client.ID] = &stored
	return nil
}

func (m *MemoryRepository) GetByID(
	ctx context.Context,
	id string,
) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("get client: %w", core.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (m *MemoryRepository) GetByCNPJ(
	ctx context.Context,
	cnpj string,
) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		if c.CNPJ == cnpj {
			copied := *c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get client by cnpj: %w", core.ErrNotFound)
}

func (m *MemoryRepository) Update(ctx context.Context, client *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.clients[client.ID]
	if !ok {
		return fmt.Errorf("update client: %w", core.ErrNotFound)
	}

	stored.LegalName = client.LegalName
	stored.TaxRegime = client.TaxRegime
	stored.Responsible = client.Responsible
	stored.UpdatedAt = time.Now()
	client.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryRepository) List(
	ctx context.Context,
	params ListClientsParams,
) ([]Client, int, error) {
	params.Normalize()

	all, err := m.ListAll(ctx, params.Filter)
	if err != nil {
		return nil, 0, err
	}

	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return all[start:end], total, nil
}

func (m *MemoryRepository) ListAll(
	ctx context.Context,
	filter Filter,
) ([]Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Client
	for _, c := range m.clients {
		if !matchesFilter(c, filter) {
			continue
		}
		matched = append(matched, *c)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LegalName < matched[j].LegalName
	})

	return matched, nil
}

// InTx serializes batches and restores the pre-transaction state when
// the callback fails, mirroring the rollback the postgres store gets
// for free.
func (m *MemoryRepository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txMemoryRepository{m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *MemoryRepository) snapshot() map[string]*Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make(map[string]*Client, len(m.clients))
	for id, c := range m.clients {
		stored := *c
		copied[id] = &stored
	}
	return copied
}

func (m *MemoryRepository) restore(snapshot map[string]*Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = snapshot
}

type txMemoryRepository struct {
	*MemoryRepository
}

func (t *txMemoryRepository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	return fn(t)
}

func matchesFilter(c *Client, filter Filter) bool {
	if filter.Query != "" {
		needle := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(c.LegalName), needle) &&
			!strings.Contains(c.CNPJ, needle) &&
			!strings.Contains(strings.ToLower(c.Responsible), needle) {
			return false
		}
	}

	if filter.Regime != "" {
		needle := strings.ToLower(filter.Regime)
		if !strings.Contains(strings.ToLower(c.TaxRegime), needle) {
			return false
		}
	}

	return true
}
