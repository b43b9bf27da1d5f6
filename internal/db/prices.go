package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/iiorcrop/mandi/internal/models"
)

// InsertPriceBatch inserts the bookkeeping row for an ingestion run
func (d *Database) InsertPriceBatch(ctx context.Context, batch *models.PriceBatch) (string, error) {
	const query = `
		INSERT INTO price_batches (
			id, created_at, status, row_count, source, metadata
		) VALUES (
			:id, :created_at, :status, :row_count, :source, :metadata
		) RETURNING id
	`

	params := map[string]interface{}{
		"id":         batch.ID,
		"created_at": batch.CreatedAt,
		"status":     batch.Status,
		"row_count":  batch.RowCount,
		"source":     batch.Source,
		"metadata":   batch.Metadata,
	}

	rows, err := d.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return "", fmt.Errorf("failed to insert price batch: %w", err)
	}
	defer rows.Close()

	var id string
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan returned ID: %w", err)
		}
	}

	log.Printf("Inserted price batch with ID %s", id)
	return id, nil
}

// InsertPricePoints bulk-inserts a chunk of normalized price rows
func (d *Database) InsertPricePoints(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	const query = `
		INSERT INTO price_points (
			state, district, market, variety, commodity_group, arrivals,
			min_price, max_price, modal_price, reported_date, grade,
			source, batch_id, created_at
		) VALUES (
			:state, :district, :market, :variety, :commodity_group, :arrivals,
			:min_price, :max_price, :modal_price, :reported_date, :grade,
			:source, :batch_id, NOW()
		)
	`

	if _, err := d.db.NamedExecContext(ctx, query, points); err != nil {
		return fmt.Errorf("failed to insert price points: %w", err)
	}
	return nil
}

// FinalizeBatch records the terminal status, row count, and metadata of
// an ingestion run
func (d *Database) FinalizeBatch(ctx context.Context, batchID string, status models.BatchStatus, rowCount int, metadata []byte, processedAt time.Time) error {
	const query = `
		UPDATE price_batches
		SET status = $1, row_count = $2, metadata = COALESCE($3, metadata), processed_at = $4
		WHERE id = $5
	`

	result, err := d.db.ExecContext(ctx, query, status, rowCount, metadata, processedAt, batchID)
	if err != nil {
		return fmt.Errorf("failed to finalize batch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no batch found with ID %s", batchID)
	}

	log.Printf("Finalized batch %s with status %s", batchID, status)
	return nil
}

// GetBatch retrieves a specific price batch by ID
func (d *Database) GetBatch(ctx context.Context, batchID string) (*models.PriceBatch, error) {
	const query = `SELECT * FROM price_batches WHERE id = $1`

	var batch models.PriceBatch
	err := d.db.GetContext(ctx, &batch, query, batchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return &batch, nil
}

// PriceFilter narrows a price listing
type PriceFilter struct {
	State    string
	District string
	Market   string
	Group    string
	BatchID  string
	Limit    int
}

// ListPrices returns price rows matching the filter, newest report first
func (d *Database) ListPrices(ctx context.Context, filter PriceFilter) ([]models.PricePoint, error) {
	query := "SELECT * FROM price_points WHERE 1=1"
	var args []interface{}

	add := func(column, value string) {
		if value != "" {
			args = append(args, value)
			query += fmt.Sprintf(" AND %s = $%d", column, len(args))
		}
	}
	add("state", filter.State)
	add("district", filter.District)
	add("market", filter.Market)
	add("commodity_group", filter.Group)
	add("batch_id", filter.BatchID)

	query += " ORDER BY reported_date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var points []models.PricePoint
	if err := d.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	return points, nil
}
