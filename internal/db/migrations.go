package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS worksheets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_worksheets_title ON worksheets (title);`,
	`CREATE TABLE IF NOT EXISTS worksheet_rows (
		worksheet_id UUID NOT NULL REFERENCES worksheets(id) ON DELETE CASCADE,
		row_idx INT NOT NULL,
		col_idx INT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (worksheet_id, row_idx, col_idx)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_worksheet_rows_row ON worksheet_rows (worksheet_id, row_idx);`,
	`CREATE TABLE IF NOT EXISTS worksheet_cells (
		worksheet_id UUID NOT NULL REFERENCES worksheets(id) ON DELETE CASCADE,
		ref VARCHAR(16) NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (worksheet_id, ref)
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
