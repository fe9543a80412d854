// AngelaMos | 2026
// exporter.go

package sheet

import (
	"context"
	"fmt"
	"io"

	"fiscaldesk/internal/client"
	"fiscaldesk/internal/config"
)

var exportHeader = []string{
	"ID",
	"Razão Social",
	"CNPJ",
	"Regime Tributário",
	"Responsável",
}

// templateHeader carries only the four importable columns; the ID
// column exists in exports but is ignored on import.
var templateHeader = exportHeader[1:]

// Exporter renders the client registry back into xlsx workbooks.
type Exporter struct {
	repo client.Repository
	cfg  config.ImportConfig
}

func NewExporter(repo client.Repository, cfg config.ImportConfig) *Exporter {
	return &Exporter{repo: repo, cfg: cfg}
}

// Export writes every client matching the filter, ordered by legal
// name. CNPJs are written as text cells so spreadsheets never mangle
// them into numbers.
func (e *Exporter) Export(
	ctx context.Context,
	filter client.Filter,
	out io.Writer,
) error {
	clients, err := e.repo.ListAll(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list clients for export: %w", err)
	}

	w, err := NewWriter(e.cfg.SheetName)
	if err != nil {
		return err
	}

	if err := w.AppendRow(exportHeader); err != nil {
		return err
	}
	for i := range clients {
		c := &clients[i]
		row := []string{c.ID, c.LegalName, c.CNPJ, c.TaxRegime, c.Responsible}
		if err := w.AppendRow(row); err != nil {
			return err
		}
	}

	return w.WriteTo(out)
}

// Template writes an empty import workbook: the required header plus
// one illustrative example row, independent of stored data.
func (e *Exporter) Template(out io.Writer) error {
	w, err := NewWriter(e.cfg.SheetName)
	if err != nil {
		return err
	}

	if err := w.AppendRow(templateHeader); err != nil {
		return err
	}
	if len(e.cfg.ExampleRow) > 0 {
		if err := w.AppendRow(e.cfg.ExampleRow); err != nil {
			return err
		}
	}

	return w.WriteTo(out)
}
