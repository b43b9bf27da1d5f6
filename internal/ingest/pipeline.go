package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/models"
)

// Options contains configuration options for the ingestion pipeline
type Options struct {
	ChunkSize  int
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions returns the default pipeline options
func DefaultOptions() Options {
	return Options{
		ChunkSize:  500,
		Workers:    4,
		MaxRetries: 3,
		RetryDelay: time.Second * 2,
	}
}

// Publisher pushes batch summaries and latest prices to the cache layer.
// All publisher calls are best effort; failures never fail the batch.
type Publisher interface {
	PublishBatch(ctx context.Context, summary models.BatchSummary) error
	CacheLatest(ctx context.Context, points []models.PricePoint) error
}

// Pipeline ingests CSV uploads into the price store. Rows are streamed
// off the reader and inserted in fixed-size chunks, so memory use is
// bounded by ChunkSize rather than the upload size.
type Pipeline struct {
	options   Options
	database  *db.Database
	publisher Publisher
}

// NewPipeline creates a new ingestion pipeline. publisher may be nil.
func NewPipeline(database *db.Database, publisher Publisher, options Options) *Pipeline {
	if options.ChunkSize <= 0 {
		options.ChunkSize = DefaultOptions().ChunkSize
	}
	if options.Workers <= 0 {
		options.Workers = DefaultOptions().Workers
	}
	if options.MaxRetries <= 0 {
		options.MaxRetries = DefaultOptions().MaxRetries
	}
	return &Pipeline{
		options:   options,
		database:  database,
		publisher: publisher,
	}
}

// IngestCSV transforms and stores one CSV document. Row-level failures
// drop the row; a structurally malformed document aborts the batch and
// marks it failed. The returned summary is valid even when err is
// non-nil.
func (p *Pipeline) IngestCSV(ctx context.Context, r io.Reader, source models.IngestSource) (*models.BatchSummary, error) {
	batchID := generateBatchID("prices")
	startedAt := time.Now()
	log.Printf("Ingesting batch %s from %s", batchID, source)

	batch := &models.PriceBatch{
		ID:        batchID,
		CreatedAt: startedAt,
		Status:    models.BatchProcessing,
		Source:    source,
	}
	if _, err := p.database.InsertPriceBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to insert batch record: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunkCh := make(chan []models.PricePoint, p.options.Workers)

	var mu sync.Mutex
	inserted := 0
	var insertErrs []error

	var wg sync.WaitGroup
	for i := 0; i < p.options.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunkCh {
				err := p.insertChunk(ctx, chunk)
				mu.Lock()
				if err != nil {
					insertErrs = append(insertErrs, err)
				} else {
					inserted += len(chunk)
				}
				mu.Unlock()
				if err == nil && p.publisher != nil {
					if cacheErr := p.publisher.CacheLatest(ctx, chunk); cacheErr != nil {
						log.Printf("Error caching latest prices: %v", cacheErr)
					}
				}
			}
		}()
	}

	chunk := make([]models.PricePoint, 0, p.options.ChunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		out := make([]models.PricePoint, len(chunk))
		copy(out, chunk)
		chunk = chunk[:0]
		select {
		case chunkCh <- out:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	stats, parseErr := Parse(r, func(point models.PricePoint) error {
		point.Source = source
		point.BatchID = batchID
		chunk = append(chunk, point)
		if len(chunk) == p.options.ChunkSize {
			return flush()
		}
		return nil
	})
	if parseErr == nil {
		parseErr = flush()
	}
	close(chunkCh)
	wg.Wait()

	mu.Lock()
	failedInserts := len(insertErrs)
	mu.Unlock()

	status := models.BatchCompleted
	switch {
	case parseErr != nil:
		status = models.BatchFailed
	case failedInserts > 0:
		status = models.BatchPartial
		if inserted == 0 {
			status = models.BatchFailed
		}
	}

	summary := &models.BatchSummary{
		BatchID:   batchID,
		Source:    source,
		Status:    status,
		Parsed:    stats.Parsed,
		Dropped:   stats.Dropped,
		Inserted:  inserted,
		StartedAt: startedAt,
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"parsed_count":   stats.Parsed,
		"dropped_count":  stats.Dropped,
		"inserted_count": inserted,
		"failed_chunks":  failedInserts,
	})

	// Finalize on a fresh context so a cancelled request still records
	// the batch outcome
	finalizeCtx, finalizeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finalizeCancel()
	if err := p.database.FinalizeBatch(finalizeCtx, batchID, status, inserted, metadata, time.Now()); err != nil {
		log.Printf("Error finalizing batch %s: %v", batchID, err)
	}

	if p.publisher != nil && inserted > 0 {
		if err := p.publisher.PublishBatch(finalizeCtx, *summary); err != nil {
			log.Printf("Error publishing batch summary: %v", err)
		}
	}

	log.Printf("Ingested batch %s: %d parsed, %d dropped, %d inserted, status %s",
		batchID, stats.Parsed, stats.Dropped, inserted, status)

	if parseErr != nil {
		return summary, fmt.Errorf("batch %s aborted: %w", batchID, parseErr)
	}
	if failedInserts > 0 {
		return summary, fmt.Errorf("batch %s stored with %d failed chunks", batchID, failedInserts)
	}
	return summary, nil
}

// insertChunk inserts one chunk with bounded retries and exponential
// backoff
func (p *Pipeline) insertChunk(ctx context.Context, chunk []models.PricePoint) error {
	var err error
	for retry := 0; retry < p.options.MaxRetries; retry++ {
		err = p.database.InsertPricePoints(ctx, chunk)
		if err == nil {
			return nil
		}

		log.Printf("Error inserting price chunk (retry %d/%d): %v",
			retry+1, p.options.MaxRetries, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.options.RetryDelay * time.Duration(retry+1)):
			// Exponential backoff
		}
	}
	return err
}

// generateBatchID generates a unique batch ID
func generateBatchID(prefix string) string {
	timestamp := time.Now().UTC().Format("20060102150405")
	uniqueID := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s", prefix, timestamp, uniqueID)
}
