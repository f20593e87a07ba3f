// Package xlsx persists workbook sheets in a local Excel file.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/antstech/quotation-service/internal/sheet"
)

const placeholderSheet = "Sheet1"

// Workbook reads and writes a single .xlsx file. Every operation reopens
// the file, so edits made by other processes between calls are picked up.
type Workbook struct {
	path string
	mu   sync.Mutex
}

// Open prepares the workbook at path, creating an empty file when none
// exists yet.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat workbook: %w", err)
		}
		f := excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close workbook: %w", err)
		}
	}
	return &Workbook{path: path}, nil
}

func (w *Workbook) Sheets(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func (w *Workbook) CreateSheet(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	if idx != -1 {
		return sheet.ErrSheetExists
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	return w.save(f)
}

func (w *Workbook) DeleteSheet(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return err
	}
	// A workbook must keep at least one sheet.
	if len(f.GetSheetList()) == 1 {
		spare := placeholderSheet
		for i := 2; strings.EqualFold(spare, name); i++ {
			spare = fmt.Sprintf("Sheet%d", i)
		}
		if _, err := f.NewSheet(spare); err != nil {
			return fmt.Errorf("new sheet: %w", err)
		}
	}
	if err := f.DeleteSheet(name); err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	return w.save(f)
}

func (w *Workbook) ReadRows(ctx context.Context, name string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return nil, err
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return normalizeTable(rows), nil
}

func (w *Workbook) AppendRow(ctx context.Context, name string, row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return err
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	if err := writeTableRow(f, name, len(normalizeTable(rows)), row); err != nil {
		return err
	}
	return w.save(f)
}

func (w *Workbook) UpdateRow(ctx context.Context, name string, index int, row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return err
	}
	if err := writeTableRow(f, name, index, row); err != nil {
		return err
	}
	return w.save(f)
}

func (w *Workbook) DeleteRow(ctx context.Context, name string, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return err
	}
	raw, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	rows := normalizeTable(raw)
	if index < 0 || index >= len(rows) {
		return nil
	}
	// Shift the table rows up in place so cells outside the table, like
	// the terms block, stay where they are.
	for j := index; j < len(rows)-1; j++ {
		if err := writeTableRow(f, name, j, rows[j+1]); err != nil {
			return err
		}
	}
	blank := make([]string, len(rows[0]))
	if err := writeTableRow(f, name, len(rows)-1, blank); err != nil {
		return err
	}
	return w.save(f)
}

func (w *Workbook) ReadCell(ctx context.Context, name, ref string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return "", err
	}
	value, err := f.GetCellValue(name, ref)
	if err != nil {
		return "", fmt.Errorf("read cell %s: %w", ref, err)
	}
	return value, nil
}

func (w *Workbook) WriteCell(ctx context.Context, name, ref, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := requireSheet(f, name); err != nil {
		return err
	}
	if err := f.SetCellValue(name, ref, value); err != nil {
		return fmt.Errorf("write cell %s: %w", ref, err)
	}
	return w.save(f)
}

func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheet.ErrUnavailable, err)
	}
	return f, nil
}

func (w *Workbook) save(f *excelize.File) error {
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", sheet.ErrUnavailable, err)
	}
	return nil
}

func requireSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	if idx == -1 {
		return sheet.ErrSheetNotFound
	}
	return nil
}

func writeTableRow(f *excelize.File, sheetName string, index int, row []string) error {
	for c, value := range row {
		ref, err := excelize.CoordinatesToCellName(c+1, index+1)
		if err != nil {
			return fmt.Errorf("cell ref: %w", err)
		}
		if err := f.SetCellValue(sheetName, ref, value); err != nil {
			return fmt.Errorf("write cell %s: %w", ref, err)
		}
	}
	return nil
}

// normalizeTable squares the raw grid to the width of the first row and
// drops trailing rows that are empty inside the table columns. The first
// row is expected to be the table header; cells to the right of it belong
// to the sparse cell plane, not the table.
func normalizeTable(rows [][]string) [][]string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	width := len(rows[0])
	table := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, width)
		copy(r, row)
		table[i] = r
	}
	for len(table) > 0 && rowEmpty(table[len(table)-1]) {
		table = table[:len(table)-1]
	}
	return table
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
