// AngelaMos | 2026
// codec.go

package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// RowReader iterates over the rows of the first worksheet in a workbook.
type RowReader struct {
	file *excelize.File
	rows *excelize.Rows
}

// OpenRows opens an xlsx workbook and positions a reader at the first
// row of its first worksheet.
func OpenRows(r io.Reader) (*RowReader, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		file.Close()
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := file.Rows(sheetName)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheetName, err)
	}

	return &RowReader{file: file, rows: rows}, nil
}

// Next advances to the next row and returns its cell values as strings.
// It returns io.EOF when the worksheet is exhausted.
func (r *RowReader) Next() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, fmt.Errorf("failed to advance row: %w", err)
		}
		return nil, io.EOF
	}

	cells, err := r.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	return cells, nil
}

func (r *RowReader) Close() error {
	r.rows.Close()
	return r.file.Close()
}

// Writer builds an xlsx workbook one row at a time. Every cell is
// written as a string so values like CNPJs keep their leading zeros.
type Writer struct {
	file      *excelize.File
	sheetName string
	row       int
}

func NewWriter(sheetName string) (*Writer, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}
	return &Writer{file: file, sheetName: sheetName, row: 1}, nil
}

func (w *Writer) AppendRow(cells []string) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, w.row)
		if err != nil {
			return fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := w.file.SetCellStr(w.sheetName, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	w.row++
	return nil
}

func (w *Writer) WriteTo(out io.Writer) error {
	defer w.file.Close()
	if err := w.file.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
