// AngelaMos | 2026
// importer_test.go

package sheet

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/client"
	"fiscaldesk/internal/config"
	"fiscaldesk/internal/core"
)

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		Aliases:   testAliases(),
		MaxRows:   1000,
		SheetName: "clientes",
		ExampleRow: []string{
			"EMPRESA EXEMPLO LTDA",
			"00.000.000/0000-00",
			"SIMPLES NACIONAL",
			"RESPONSÁVEL",
		},
	}
}

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	w, err := NewWriter("clientes")
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.AppendRow(row))
	}

	var buf bytes.Buffer
	require.NoError(t, w.WriteTo(&buf))
	return &buf
}

func TestImportInsertsAndNormalizes(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"ACME LTDA", "12.345.678/0001-99", "SIMPLES NACIONAL", "MARIA"},
	})

	summary, err := importer.Import(ctx, buf, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Errors)

	stored, err := repo.GetByCNPJ(ctx, "12345678000199")
	require.NoError(t, err)
	assert.Equal(t, "ACME LTDA", stored.LegalName)
}

func TestImportRejectsShortCNPJ(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"ACME LTDA", "1.234.567/0001-99", "SIMPLES NACIONAL", "MARIA"},
	})

	summary, err := importer.Import(ctx, buf, false)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].Row)

	all, err := repo.ListAll(ctx, client.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all, "an errored row must produce no record")
}

func TestImportRejectsEmptyCells(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"ACME LTDA", "12345678000199", "", "MARIA"},
		{"BETA LTDA", "11111111000111", "LUCRO REAL", "JOAO"},
	})

	summary, err := importer.Import(ctx, buf, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].Row)
}

func TestImportSkipsDuplicatesWithoutUpdateMode(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	require.NoError(t, repo.Create(ctx, &client.Client{
		ID:          "existing",
		LegalName:   "ORIGINAL LTDA",
		CNPJ:        "12345678000199",
		TaxRegime:   "LUCRO REAL",
		Responsible: "JOAO",
	}))

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"RENAMED LTDA", "12.345.678/0001-99", "SIMPLES NACIONAL", "MARIA"},
	})

	summary, err := importer.Import(ctx, buf, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Updated)

	stored, err := repo.GetByCNPJ(ctx, "12345678000199")
	require.NoError(t, err)
	assert.Equal(t, "ORIGINAL LTDA", stored.LegalName)
	assert.Equal(t, "LUCRO REAL", stored.TaxRegime)
}

func TestImportUpdatesDuplicatesInUpdateMode(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	require.NoError(t, repo.Create(ctx, &client.Client{
		ID:          "existing",
		LegalName:   "ORIGINAL LTDA",
		CNPJ:        "12345678000199",
		TaxRegime:   "LUCRO REAL",
		Responsible: "JOAO",
	}))

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"RENAMED LTDA", "12.345.678/0001-99", "SIMPLES NACIONAL", "MARIA"},
	})

	summary, err := importer.Import(ctx, buf, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)

	stored, err := repo.GetByCNPJ(ctx, "12345678000199")
	require.NoError(t, err)
	assert.Equal(t, "RENAMED LTDA", stored.LegalName)
	assert.Equal(t, "SIMPLES NACIONAL", stored.TaxRegime)
	assert.Equal(t, "MARIA", stored.Responsible)
	assert.Equal(t, "12345678000199", stored.CNPJ, "update never touches the CNPJ")
}

func TestImportMissingHeaderFailsWholesale(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "Telefone"},
		{"ACME LTDA", "11 99999-0000"},
	})

	_, err := importer.Import(ctx, buf, false)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	all, err := repo.ListAll(ctx, client.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportContinuesPastRowErrors(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	importer := NewImporter(repo, testImportConfig())

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"ACME LTDA", "12345678000199", "SIMPLES NACIONAL", "MARIA"},
		{"BAD LTDA", "123", "SIMPLES NACIONAL", "MARIA"},
		{"BETA LTDA", "11111111000111", "LUCRO REAL", "JOAO"},
	})

	summary, err := importer.Import(ctx, buf, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 3, summary.Errors[0].Row)
}

func TestImportEnforcesMaxRows(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()

	cfg := testImportConfig()
	cfg.MaxRows = 1
	importer := NewImporter(repo, cfg)

	buf := buildWorkbook(t, [][]string{
		{"Razao Social", "CNPJ", "Regime", "Responsavel"},
		{"ACME LTDA", "12345678000199", "SIMPLES NACIONAL", "MARIA"},
		{"BETA LTDA", "11111111000111", "LUCRO REAL", "JOAO"},
	})

	_, err := importer.Import(ctx, buf, false)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	all, err := repo.ListAll(ctx, client.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all, "a failed batch rolls back entirely")
}
