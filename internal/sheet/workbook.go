// Package sheet defines the narrow row-and-cell contract the quotation
// store speaks to its backing workbook.
package sheet

import (
	"context"
	"errors"
)

var (
	ErrSheetNotFound = errors.New("worksheet not found")
	ErrSheetExists   = errors.New("worksheet already exists")
	ErrUnavailable   = errors.New("workbook unavailable")
)

// Workbook is a dumb tabular store: named sheets, each holding a table of
// rows plus a sparse cell plane addressed in A1 notation. Row indexes are
// 0-based over the table. Implementations persist every mutation before
// returning and surface backend failures as ErrUnavailable.
type Workbook interface {
	Sheets(ctx context.Context) ([]string, error)
	CreateSheet(ctx context.Context, name string) error
	DeleteSheet(ctx context.Context, name string) error

	// ReadRows returns the table rows, first row at index 0. Trailing
	// rows with no table content are not included.
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, row []string) error
	// UpdateRow writes the row at index, extending the table when the
	// index is past the end.
	UpdateRow(ctx context.Context, sheet string, index int, row []string) error
	// DeleteRow removes the row at index and shifts later rows up.
	// Cells outside the table keep their positions.
	DeleteRow(ctx context.Context, sheet string, index int) error

	ReadCell(ctx context.Context, sheet, ref string) (string, error)
	WriteCell(ctx context.Context, sheet, ref, value string) error
}
