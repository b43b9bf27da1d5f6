package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx/types"

	"github.com/iiorcrop/mandi/internal/models"
	"github.com/iiorcrop/mandi/internal/ordering"
)

// CurrentStaffSchemaVersion tags newly created staff detail documents so
// readers can branch on layout version instead of probing key shapes
const CurrentStaffSchemaVersion = 1

// CreateStaffDetail inserts a staff detail document for a user
func (d *Database) CreateStaffDetail(ctx context.Context, userID string, data types.JSONText) (*models.StaffDetail, error) {
	const query = `
		INSERT INTO staff_details (user_id, data, schema_version)
		VALUES ($1, $2, $3)
		RETURNING *
	`

	var detail models.StaffDetail
	err := d.db.GetContext(ctx, &detail, query, userID, data, CurrentStaffSchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to create staff detail: %w", err)
	}

	log.Printf("Created staff detail %s for user %s", detail.ID, userID)
	return &detail, nil
}

// GetStaffDetailByUser returns the staff detail document for a user
func (d *Database) GetStaffDetailByUser(ctx context.Context, userID string) (*models.StaffDetail, error) {
	const query = `SELECT * FROM staff_details WHERE user_id = $1`

	var detail models.StaffDetail
	err := d.db.GetContext(ctx, &detail, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get staff detail: %w", err)
	}
	return &detail, nil
}

// ListStaffDetails returns all staff detail documents ordered by rank
func (d *Database) ListStaffDetails(ctx context.Context) ([]models.StaffDetail, error) {
	const query = `SELECT * FROM staff_details ORDER BY position, subposition, created_at`

	var details []models.StaffDetail
	if err := d.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("failed to list staff details: %w", err)
	}
	return details, nil
}

// UpdateStaffDetailData replaces the data document of a staff detail
func (d *Database) UpdateStaffDetailData(ctx context.Context, id string, data types.JSONText) (*models.StaffDetail, error) {
	const query = `
		UPDATE staff_details
		SET data = $1, schema_version = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING *
	`

	var detail models.StaffDetail
	err := d.db.GetContext(ctx, &detail, query, data, CurrentStaffSchemaVersion, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update staff detail: %w", err)
	}
	return &detail, nil
}

// DeleteStaffDetail removes a staff detail document
func (d *Database) DeleteStaffDetail(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM staff_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff detail: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderStaffDetails applies rank placements in a single transaction.
// Items outside the placement list are left untouched; identifiers that
// match no document are reported back rather than silently skipped.
func (d *Database) ReorderStaffDetails(ctx context.Context, placements []ordering.Placement) (ordering.Result, error) {
	result := ordering.Result{Matched: []string{}, Missing: []string{}}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		UPDATE staff_details
		SET position = $1, subposition = $2, updated_at = NOW()
		WHERE id = $3
	`

	for _, p := range placements {
		res, err := tx.ExecContext(ctx, query, p.Position, p.Subposition, p.ID)
		if err != nil {
			return result, fmt.Errorf("failed to update position of %s: %w", p.ID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			result.Missing = append(result.Missing, p.ID)
		} else {
			result.Matched = append(result.Matched, p.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit reorder: %w", err)
	}

	log.Printf("Reordered %d staff details (%d missing)", len(result.Matched), len(result.Missing))
	return result, nil
}
