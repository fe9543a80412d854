// AngelaMos | 2026
// service_test.go

package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/core"
)

func TestCreateNormalizesCNPJ(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	created, err := svc.Create(ctx, CreateClientRequest{
		LegalName:   "ACME LTDA",
		CNPJ:        "12.345.678/0001-99",
		TaxRegime:   "SIMPLES NACIONAL",
		Responsible: "MARIA",
	})
	require.NoError(t, err)
	assert.Equal(t, "12345678000199", created.CNPJ)
	assert.NotEmpty(t, created.ID)
}

func TestCreateRejectsBadCNPJ(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Create(context.Background(), CreateClientRequest{
		LegalName:   "ACME LTDA",
		CNPJ:        "12.345.678/0001-9",
		TaxRegime:   "SIMPLES NACIONAL",
		Responsible: "MARIA",
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateDuplicateCNPJ(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	req := CreateClientRequest{
		LegalName:   "ACME LTDA",
		CNPJ:        "12345678000199",
		TaxRegime:   "SIMPLES NACIONAL",
		Responsible: "MARIA",
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	req.LegalName = "OTHER LTDA"
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, core.ErrConflict)
}

func TestUpdateNeverTouchesCNPJ(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	created, err := svc.Create(ctx, CreateClientRequest{
		LegalName:   "ACME LTDA",
		CNPJ:        "12345678000199",
		TaxRegime:   "SIMPLES NACIONAL",
		Responsible: "MARIA",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateClientRequest{
		LegalName:   "ACME HOLDING SA",
		TaxRegime:   "LUCRO REAL",
		Responsible: "JOAO",
	})
	require.NoError(t, err)

	assert.Equal(t, "ACME HOLDING SA", updated.LegalName)
	assert.Equal(t, "LUCRO REAL", updated.TaxRegime)
	assert.Equal(t, "JOAO", updated.Responsible)
	assert.Equal(t, "12345678000199", updated.CNPJ)
}

func TestUpdateUnknownClient(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Update(context.Background(), "missing", UpdateClientRequest{
		LegalName:   "X",
		TaxRegime:   "Y",
		Responsible: "Z",
	})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	seed := []CreateClientRequest{
		{
			LegalName: "BETA COMERCIO LTDA", CNPJ: "11111111000111",
			TaxRegime: "SIMPLES NACIONAL", Responsible: "MARIA",
		},
		{
			LegalName: "ALFA SERVICOS LTDA", CNPJ: "22222222000122",
			TaxRegime: "LUCRO PRESUMIDO", Responsible: "JOAO",
		},
		{
			LegalName: "GAMA INDUSTRIA SA", CNPJ: "33333333000133",
			TaxRegime: "SIMPLES NACIONAL", Responsible: "MARIA",
		},
	}
	for _, req := range seed {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, total, err := svc.List(ctx, ListClientsParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "ALFA SERVICOS LTDA", all[0].LegalName)
	assert.Equal(t, "BETA COMERCIO LTDA", all[1].LegalName)
	assert.Equal(t, "GAMA INDUSTRIA SA", all[2].LegalName)

	simples, total, err := svc.List(ctx, ListClientsParams{
		Filter: Filter{Regime: "simples"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, simples, 2)

	byQuery, total, err := svc.List(ctx, ListClientsParams{
		Filter: Filter{Query: "22222222000122"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "ALFA SERVICOS LTDA", byQuery[0].LegalName)
}
