// Package cache publishes ingestion results to Redis: a pub/sub channel
// and a capped stream for batch summaries, plus latest-modal-price keys
// consumed by the site frontend.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iiorcrop/mandi/internal/models"
)

const (
	// PriceChannel carries JSON batch summaries for live subscribers
	PriceChannel = "mandi:prices"
	// PriceStream keeps a capped history of batch summaries
	PriceStream = "mandi:prices:stream"

	latestKeyPrefix = "mandi:latest"
	latestTTL       = 24 * time.Hour
	streamMaxLen    = 1000
)

// Publisher provides methods for pushing price data to Redis
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher against the given Redis address
func NewPublisher(addr, password string) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &Publisher{client: client}
}

// Ping verifies the Redis connection
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client
func (p *Publisher) Close() error {
	return p.client.Close()
}

// PublishBatch publishes a batch summary on the price channel and
// appends it to the price stream
func (p *Publisher) PublishBatch(ctx context.Context, summary models.BatchSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal batch summary: %w", err)
	}

	if err := p.client.Publish(ctx, PriceChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish batch summary: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: PriceStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"batch_id": summary.BatchID,
			"status":   string(summary.Status),
			"inserted": summary.Inserted,
			"data":     payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to price stream: %w", err)
	}

	return nil
}

// CacheLatest records the modal price of each point under a
// state/market/variety key with a 24h TTL
func (p *Publisher) CacheLatest(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, point := range points {
		pipe.Set(ctx, latestKey(point), point.ModalPrice, latestTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache latest prices: %w", err)
	}
	return nil
}

func latestKey(point models.PricePoint) string {
	clean := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	}
	return fmt.Sprintf("%s:%s:%s:%s",
		latestKeyPrefix, clean(point.State), clean(point.Market), clean(point.Variety))
}
