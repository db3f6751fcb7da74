package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SaveLastImport records the time of the latest completed staff directory import.
func (r *Repository) SaveLastImport(ctx context.Context, at time.Time) error {
	defer r.observe("save_last_import", time.Now())

	query := `
		INSERT INTO directory_import_status (id, last_import_at)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_import_at = $1, updated_at = CURRENT_TIMESTAMP;`

	_, err := r.db.Exec(ctx, query, at)
	if err != nil {
		return fmt.Errorf("failed to execute insert query: %w", err)
	}

	return nil
}

// GetLastImport returns the time of the latest completed staff directory import.
func (r *Repository) GetLastImport(ctx context.Context) (time.Time, error) {
	defer r.observe("get_last_import", time.Now())

	query := "SELECT last_import_at FROM directory_import_status WHERE id = 1"

	var lastImport time.Time

	err := r.db.QueryRow(ctx, query).Scan(&lastImport)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNoImportRecorded
		}
		return time.Time{}, fmt.Errorf("failed to get last import from table directory_import_status: %w", err)
	}

	return lastImport, nil
}
