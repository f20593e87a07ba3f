// Package postgres stores workbook sheets in PostgreSQL. Each sheet is a
// worksheets row; table cells live in worksheet_rows and the sparse cell
// plane in worksheet_cells.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/antstech/quotation-service/internal/sheet"
)

type Workbook struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Workbook {
	return &Workbook{db: db}
}

func (w *Workbook) Sheets(ctx context.Context) ([]string, error) {
	var titles []string
	if err := w.db.WithContext(ctx).Raw(`
		SELECT title
		FROM worksheets
		ORDER BY created_at ASC, title ASC
	`).Scan(&titles).Error; err != nil {
		return nil, unavailable(err)
	}
	return titles, nil
}

func (w *Workbook) CreateSheet(ctx context.Context, name string) error {
	var id uuid.UUID
	if err := w.db.WithContext(ctx).Raw(`
		INSERT INTO worksheets (title)
		VALUES (?)
		ON CONFLICT (title) DO NOTHING
		RETURNING id
	`, name).Scan(&id).Error; err != nil {
		return unavailable(err)
	}
	if id == uuid.Nil {
		return sheet.ErrSheetExists
	}
	return nil
}

func (w *Workbook) DeleteSheet(ctx context.Context, name string) error {
	var id uuid.UUID
	if err := w.db.WithContext(ctx).Raw(`
		DELETE FROM worksheets
		WHERE title = ?
		RETURNING id
	`, name).Scan(&id).Error; err != nil {
		return unavailable(err)
	}
	if id == uuid.Nil {
		return sheet.ErrSheetNotFound
	}
	return nil
}

func (w *Workbook) ReadRows(ctx context.Context, name string) ([][]string, error) {
	id, err := w.sheetID(ctx, w.db, name)
	if err != nil {
		return nil, err
	}

	var cells []tableCell
	if err := w.db.WithContext(ctx).Raw(`
		SELECT row_idx, col_idx, value
		FROM worksheet_rows
		WHERE worksheet_id = ?
		ORDER BY row_idx ASC, col_idx ASC
	`, id).Scan(&cells).Error; err != nil {
		return nil, unavailable(err)
	}

	var rows [][]string
	for _, c := range cells {
		for len(rows) <= c.RowIdx {
			rows = append(rows, nil)
		}
		row := rows[c.RowIdx]
		for len(row) <= c.ColIdx {
			row = append(row, "")
		}
		row[c.ColIdx] = c.Value
		rows[c.RowIdx] = row
	}
	return rows, nil
}

func (w *Workbook) AppendRow(ctx context.Context, name string, row []string) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := w.sheetID(ctx, tx, name)
		if err != nil {
			return err
		}
		var next int
		if err := tx.Raw(`
			SELECT COALESCE(MAX(row_idx) + 1, 0)
			FROM worksheet_rows
			WHERE worksheet_id = ?
		`, id).Scan(&next).Error; err != nil {
			return unavailable(err)
		}
		return writeRow(tx, id, next, row)
	})
}

func (w *Workbook) UpdateRow(ctx context.Context, name string, index int, row []string) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := w.sheetID(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := tx.Exec(`
			DELETE FROM worksheet_rows
			WHERE worksheet_id = ? AND row_idx = ?
		`, id, index).Error; err != nil {
			return unavailable(err)
		}
		return writeRow(tx, id, index, row)
	})
}

func (w *Workbook) DeleteRow(ctx context.Context, name string, index int) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := w.sheetID(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := tx.Exec(`
			DELETE FROM worksheet_rows
			WHERE worksheet_id = ? AND row_idx = ?
		`, id, index).Error; err != nil {
			return unavailable(err)
		}
		// Shift through negative indexes so the decrement never collides
		// with the primary key mid-statement.
		if err := tx.Exec(`
			UPDATE worksheet_rows
			SET row_idx = -row_idx
			WHERE worksheet_id = ? AND row_idx > ?
		`, id, index).Error; err != nil {
			return unavailable(err)
		}
		if err := tx.Exec(`
			UPDATE worksheet_rows
			SET row_idx = -row_idx - 1
			WHERE worksheet_id = ? AND row_idx < 0
		`, id).Error; err != nil {
			return unavailable(err)
		}
		return nil
	})
}

func (w *Workbook) ReadCell(ctx context.Context, name, ref string) (string, error) {
	id, err := w.sheetID(ctx, w.db, name)
	if err != nil {
		return "", err
	}
	var value string
	if err := w.db.WithContext(ctx).Raw(`
		SELECT value
		FROM worksheet_cells
		WHERE worksheet_id = ? AND ref = ?
		LIMIT 1
	`, id, ref).Scan(&value).Error; err != nil {
		return "", unavailable(err)
	}
	return value, nil
}

func (w *Workbook) WriteCell(ctx context.Context, name, ref, value string) error {
	id, err := w.sheetID(ctx, w.db, name)
	if err != nil {
		return err
	}
	if err := w.db.WithContext(ctx).Exec(`
		INSERT INTO worksheet_cells (worksheet_id, ref, value)
		VALUES (?, ?, ?)
		ON CONFLICT (worksheet_id, ref) DO UPDATE SET value = EXCLUDED.value
	`, id, ref, value).Error; err != nil {
		return unavailable(err)
	}
	return nil
}

type tableCell struct {
	RowIdx int
	ColIdx int
	Value  string
}

func (w *Workbook) sheetID(ctx context.Context, tx *gorm.DB, name string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := tx.WithContext(ctx).Raw(`
		SELECT id
		FROM worksheets
		WHERE title = ?
		LIMIT 1
	`, name).Scan(&id).Error; err != nil {
		return uuid.Nil, unavailable(err)
	}
	if id == uuid.Nil {
		return uuid.Nil, sheet.ErrSheetNotFound
	}
	return id, nil
}

func writeRow(tx *gorm.DB, id uuid.UUID, index int, row []string) error {
	for c, value := range row {
		if err := tx.Exec(`
			INSERT INTO worksheet_rows (worksheet_id, row_idx, col_idx, value)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (worksheet_id, row_idx, col_idx) DO UPDATE SET value = EXCLUDED.value
		`, id, index, c, value).Error; err != nil {
			return unavailable(err)
		}
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", sheet.ErrUnavailable, err)
}
