package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/iiorcrop/mandi/internal/models"
	"github.com/iiorcrop/mandi/internal/ordering"
)

// CreateStaffInput inserts a staff form input definition
func (d *Database) CreateStaffInput(ctx context.Context, input *models.StaffInput) (*models.StaffInput, error) {
	const query = `
		INSERT INTO staff_inputs (title, input_type, options, required, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`

	var created models.StaffInput
	err := d.db.GetContext(ctx, &created, query,
		input.Title, input.InputType, input.Options, input.Required, input.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to create staff input: %w", err)
	}

	log.Printf("Created staff input %s (%s)", created.ID, created.Title)
	return &created, nil
}

// ListStaffInputs returns all staff form inputs, newest first
func (d *Database) ListStaffInputs(ctx context.Context) ([]models.StaffInput, error) {
	const query = `SELECT * FROM staff_inputs ORDER BY created_at DESC`

	var inputs []models.StaffInput
	if err := d.db.SelectContext(ctx, &inputs, query); err != nil {
		return nil, fmt.Errorf("failed to list staff inputs: %w", err)
	}
	return inputs, nil
}

// UpdateStaffInput replaces the definition of a staff form input,
// leaving its position untouched
func (d *Database) UpdateStaffInput(ctx context.Context, id string, input *models.StaffInput) (*models.StaffInput, error) {
	const query = `
		UPDATE staff_inputs
		SET title = $1, input_type = $2, options = $3, required = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING *
	`

	var updated models.StaffInput
	err := d.db.GetContext(ctx, &updated, query,
		input.Title, input.InputType, input.Options, input.Required, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update staff input: %w", err)
	}
	return &updated, nil
}

// DeleteStaffInput removes a staff form input definition
func (d *Database) DeleteStaffInput(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM staff_inputs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff input: %w", err)
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

// UpdateInputPositions applies flat position updates in a single
// transaction, reporting which identifiers matched a stored input
func (d *Database) UpdateInputPositions(ctx context.Context, placements []ordering.Placement) (ordering.Result, error) {
	result := ordering.Result{Matched: []string{}, Missing: []string{}}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin positions transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE staff_inputs SET position = $1, updated_at = NOW() WHERE id = $2`

	for _, p := range placements {
		res, err := tx.ExecContext(ctx, query, p.Position, p.ID)
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
		return result, fmt.Errorf("failed to commit position updates: %w", err)
	}

	log.Printf("Updated %d input positions (%d missing)", len(result.Matched), len(result.Missing))
	return result, nil
}
