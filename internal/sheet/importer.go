// AngelaMos | 2026
// importer.go

package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"fiscaldesk/internal/client"
	"fiscaldesk/internal/config"
	"fiscaldesk/internal/core"
)

// RowError records why a single data row was rejected. Row numbers are
// 1-based worksheet positions, header included.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary is the outcome of an import batch.
type Summary struct {
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// Importer reconciles uploaded workbooks against the client registry.
type Importer struct {
	repo client.Repository
	cfg  config.ImportConfig
}

func NewImporter(repo client.Repository, cfg config.ImportConfig) *Importer {
	return &Importer{repo: repo, cfg: cfg}
}

// Import parses the workbook, matches its header against the configured
// aliases, and reconciles every data row: unknown CNPJs are inserted,
// known ones are updated when updateMode is set and skipped otherwise.
// Row-level problems are collected and processing continues; all writes
// share one transaction, so a storage failure leaves the registry
// untouched.
func (im *Importer) Import(
	ctx context.Context,
	r io.Reader,
	updateMode bool,
) (*Summary, error) {
	rows, err := OpenRows(r)
	if err != nil {
		return nil, core.ValidationError("file is not a readable xlsx workbook")
	}
	defer rows.Close()

	header, headerRow, err := readHeader(rows)
	if err != nil {
		return nil, err
	}

	resolved, err := ResolveHeader(header, im.cfg.Aliases)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	err = im.repo.InTx(ctx, func(repo client.Repository) error {
		rowNum := headerRow
		dataRows := 0

		for {
			cells, err := rows.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			rowNum++

			if blankRow(cells) {
				continue
			}

			dataRows++
			if im.cfg.MaxRows > 0 && dataRows > im.cfg.MaxRows {
				return core.ValidationError(fmt.Sprintf(
					"file exceeds the maximum of %d data rows", im.cfg.MaxRows))
			}

			rejection, err := im.reconcileRow(ctx, repo, resolved, cells, updateMode, summary)
			if err != nil {
				return err
			}
			if rejection != "" {
				summary.Errors = append(summary.Errors, RowError{
					Row:     rowNum,
					Message: rejection,
				})
			}
		}
	})
	if err != nil {
		if _, ok := core.AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("import transaction failed: %w", err)
	}

	return summary, nil
}

// reconcileRow classifies one data row. A non-empty rejection means the
// row was refused and processing continues; a returned error is a
// storage failure that already poisoned the transaction and must abort
// the batch.
func (im *Importer) reconcileRow(
	ctx context.Context,
	repo client.Repository,
	resolved HeaderMap,
	cells []string,
	updateMode bool,
	summary *Summary,
) (string, error) {
	legalName := resolved.Value(cells, FieldLegalName)
	rawCNPJ := resolved.Value(cells, FieldCNPJ)
	taxRegime := resolved.Value(cells, FieldTaxRegime)
	responsible := resolved.Value(cells, FieldResponsible)

	if legalName == "" || rawCNPJ == "" || taxRegime == "" || responsible == "" {
		return "one or more required cells are empty", nil
	}

	cnpj, err := client.ParseCNPJ(rawCNPJ)
	if err != nil {
		return fmt.Sprintf("invalid CNPJ %q", rawCNPJ), nil
	}

	existing, err := repo.GetByCNPJ(ctx, cnpj)
	switch {
	case err == nil:
		if !updateMode {
			summary.Skipped++
			return "", nil
		}

		existing.LegalName = legalName
		existing.TaxRegime = taxRegime
		existing.Responsible = responsible
		if err := repo.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("failed to update client: %w", err)
		}
		summary.Updated++
		return "", nil

	case errors.Is(err, core.ErrNotFound):
		created := &client.Client{
			ID:          uuid.New().String(),
			LegalName:   legalName,
			CNPJ:        cnpj,
			TaxRegime:   taxRegime,
			Responsible: responsible,
		}
		if err := repo.Create(ctx, created); err != nil {
			return "", fmt.Errorf("failed to insert client: %w", err)
		}
		summary.Inserted++
		return "", nil

	default:
		return "", fmt.Errorf("failed to look up client: %w", err)
	}
}

// readHeader returns the first non-blank row and its 1-based position.
func readHeader(rows *RowReader) ([]string, int, error) {
	rowNum := 0
	for {
		cells, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return nil, 0, core.ValidationError("workbook has no header row")
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read header row: %w", err)
		}
		rowNum++

		if !blankRow(cells) {
			return cells, rowNum, nil
		}
	}
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
