// AngelaMos | 2026
// exporter_test.go

package sheet

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscaldesk/internal/client"
)

func readAllRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()

	reader, err := OpenRows(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer reader.Close()

	var rows [][]string
	for {
		cells, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, cells)
	}
	return rows
}

func TestExportOrdersByLegalName(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	exporter := NewExporter(repo, testImportConfig())

	require.NoError(t, repo.Create(ctx, &client.Client{
		ID: "b", LegalName: "BETA LTDA", CNPJ: "11111111000111",
		TaxRegime: "LUCRO REAL", Responsible: "JOAO",
	}))
	require.NoError(t, repo.Create(ctx, &client.Client{
		ID: "a", LegalName: "ALFA LTDA", CNPJ: "02345678000199",
		TaxRegime: "SIMPLES NACIONAL", Responsible: "MARIA",
	}))

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, client.Filter{}, &buf))

	rows := readAllRows(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, "ALFA LTDA", rows[1][1])
	assert.Equal(t, "BETA LTDA", rows[2][1])

	// leading zero preserved: the CNPJ cell is text, not a number
	assert.Equal(t, "02345678000199", rows[1][2])
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := client.NewMemoryRepository()
	exporter := NewExporter(source, testImportConfig())

	seed := []*client.Client{
		{
			ID: "1", LegalName: "ALFA LTDA", CNPJ: "02345678000199",
			TaxRegime: "SIMPLES NACIONAL", Responsible: "MARIA",
		},
		{
			ID: "2", LegalName: "BETA LTDA", CNPJ: "11111111000111",
			TaxRegime: "LUCRO REAL", Responsible: "JOAO",
		},
	}
	for _, c := range seed {
		require.NoError(t, source.Create(ctx, c))
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, client.Filter{}, &buf))

	// the exported file, id column and all, imports cleanly elsewhere
	target := client.NewMemoryRepository()
	importer := NewImporter(target, testImportConfig())

	summary, err := importer.Import(ctx, &buf, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Empty(t, summary.Errors)

	for _, want := range seed {
		got, err := target.GetByCNPJ(ctx, want.CNPJ)
		require.NoError(t, err)
		assert.Equal(t, want.LegalName, got.LegalName)
		assert.Equal(t, want.TaxRegime, got.TaxRegime)
		assert.Equal(t, want.Responsible, got.Responsible)
	}
}

func TestExportAppliesFilter(t *testing.T) {
	ctx := context.Background()
	repo := client.NewMemoryRepository()
	exporter := NewExporter(repo, testImportConfig())

	require.NoError(t, repo.Create(ctx, &client.Client{
		ID: "1", LegalName: "ALFA LTDA", CNPJ: "02345678000199",
		TaxRegime: "SIMPLES NACIONAL", Responsible: "MARIA",
	}))
	require.NoError(t, repo.Create(ctx, &client.Client{
		ID: "2", LegalName: "BETA LTDA", CNPJ: "11111111000111",
		TaxRegime: "LUCRO REAL", Responsible: "JOAO",
	}))

	var buf bytes.Buffer
	err := exporter.Export(ctx, client.Filter{Regime: "simples"}, &buf)
	require.NoError(t, err)

	rows := readAllRows(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, "ALFA LTDA", rows[1][1])
}

func TestTemplateHasHeaderAndExampleRow(t *testing.T) {
	exporter := NewExporter(client.NewMemoryRepository(), testImportConfig())

	var buf bytes.Buffer
	require.NoError(t, exporter.Template(&buf))

	rows := readAllRows(t, &buf)
	require.Len(t, rows, 2)

	// the template header must satisfy its own importer
	resolved, err := ResolveHeader(rows[0], testAliases())
	require.NoError(t, err)
	assert.Len(t, resolved, 4)

	assert.Equal(t, testImportConfig().ExampleRow, rows[1])
}
