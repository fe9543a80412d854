// AngelaMos | 2026
// service.go

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fiscaldesk/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new fiscal client. The CNPJ is normalized to its
// 14-digit form before storage and must be unique across the registry.
func (s *Service) Create(
	ctx context.Context,
	req CreateClientRequest,
) (*Client, error) {
	cnpj, err := ParseCNPJ(req.CNPJ)
	if err != nil {
		return nil, core.ValidationError("cnpj must contain exactly 14 digits")
	}

	client := &Client{
		ID:          uuid.New().String(),
		LegalName:   req.LegalName,
		CNPJ:        cnpj,
		TaxRegime:   req.TaxRegime,
		Responsible: req.Responsible,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("a client with this CNPJ already exists")
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("client not found")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// Update overwrites the mutable fields of an existing client. The CNPJ
// is the client's identity and is never changed by an update.
func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateClientRequest,
) (*Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("client not found")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client.LegalName = req.LegalName
	client.TaxRegime = req.TaxRegime
	client.Responsible = req.Responsible

	if err := s.repo.Update(ctx, client); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("client not found")
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListClientsParams,
) ([]Client, int, error) {
	params.Normalize()

	clients, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// ListAll returns every client matching the filter, ordered by legal
// name. Used by the spreadsheet exporter.
func (s *Service) ListAll(ctx context.Context, filter Filter) ([]Client, error) {
	clients, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
