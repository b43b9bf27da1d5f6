package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/iiorcrop/mandi/pkg/client"
)

// CSVSweepJob uploads market-price CSV files dropped into a directory.
// Successfully ingested files move to done/, rejected ones to failed/,
// so a sweep never re-uploads a file.
type CSVSweepJob struct {
	BaseJob
	client  *client.Client
	dropDir string
}

// NewCSVSweepJob creates a sweep job for the given drop directory
func NewCSVSweepJob(apiClient *client.Client, dropDir string) *CSVSweepJob {
	return &CSVSweepJob{
		BaseJob: NewBaseJob("csv_sweep", "Upload CSV files from the drop directory"),
		client:  apiClient,
		dropDir: dropDir,
	}
}

// Execute sweeps the drop directory once
func (j *CSVSweepJob) Execute(ctx context.Context, params map[string]string) error {
	dropDir := j.dropDir
	if override, ok := params["drop_dir"]; ok && override != "" {
		dropDir = override
	}

	entries, err := os.ReadDir(dropDir)
	if err != nil {
		return fmt.Errorf("failed to read drop directory: %w", err)
	}

	var failures []string
	swept := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dropDir, entry.Name())
		log.Printf("Uploading %s", path)

		summary, err := j.client.UploadCSV(ctx, path)
		if err != nil {
			log.Printf("Error uploading %s: %v", path, err)
			failures = append(failures, entry.Name())
			moveTo(path, filepath.Join(dropDir, "failed"))
			continue
		}

		log.Printf("Uploaded %s: batch %s, %d rows inserted", entry.Name(), summary.BatchID, summary.Inserted)
		moveTo(path, filepath.Join(dropDir, "done"))
		swept++
	}

	if swept > 0 || len(failures) > 0 {
		log.Printf("Sweep finished: %d uploaded, %d failed", swept, len(failures))
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed to upload %d files: %s", len(failures), strings.Join(failures, ", "))
	}
	return nil
}

// moveTo relocates a swept file, logging rather than failing the sweep
// when the move itself goes wrong
func moveTo(path, destDir string) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		log.Printf("Error creating %s: %v", destDir, err)
		return
	}
	dest := filepath.Join(destDir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		log.Printf("Error moving %s to %s: %v", path, dest, err)
	}
}
