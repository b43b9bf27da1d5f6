package ingest

import (
	"testing"
	"time"
)

// TestNewPipelineNormalizesOptions tests that zero or negative tuning
// values fall back to defaults. MaxRetries in particular bounds the
// insert loop, so a non-positive value would skip every chunk insert
// while still counting the chunk as stored.
func TestNewPipelineNormalizesOptions(t *testing.T) {
	t.Run("ZeroValues", func(t *testing.T) {
		p := NewPipeline(nil, nil, Options{})
		def := DefaultOptions()

		if p.options.ChunkSize != def.ChunkSize {
			t.Errorf("Expected chunk size %d, got %d", def.ChunkSize, p.options.ChunkSize)
		}
		if p.options.Workers != def.Workers {
			t.Errorf("Expected %d workers, got %d", def.Workers, p.options.Workers)
		}
		if p.options.MaxRetries != def.MaxRetries {
			t.Errorf("Expected max retries %d, got %d", def.MaxRetries, p.options.MaxRetries)
		}
	})

	t.Run("NegativeRetries", func(t *testing.T) {
		p := NewPipeline(nil, nil, Options{MaxRetries: -1})
		if p.options.MaxRetries < 1 {
			t.Errorf("Expected at least one insert attempt per chunk, got max retries %d", p.options.MaxRetries)
		}
	})

	t.Run("ExplicitValuesKept", func(t *testing.T) {
		options := Options{
			ChunkSize:  100,
			Workers:    2,
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		}
		p := NewPipeline(nil, nil, options)
		if p.options != options {
			t.Errorf("Expected options %+v to be kept, got %+v", options, p.options)
		}
	})
}
