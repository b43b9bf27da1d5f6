package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/iiorcrop/mandi/internal/cache"
	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/ingest"
	"github.com/iiorcrop/mandi/internal/models"
)

func main() {
	var (
		// Commands
		ingestCmd = flag.Bool("ingest", false, "Ingest a market-price CSV file")
		listCmd   = flag.Bool("list", false, "List the latest price rows")

		// File options
		filePath = flag.String("file", "", "Path to the CSV file")
		source   = flag.String("source", "cli", "Source of the data (upload, watcher, cli)")

		// Processing options
		chunkSize = flag.Int("chunk-size", 500, "Rows per bulk insert")
		workers   = flag.Int("workers", 4, "Number of concurrent insert workers")
		retries   = flag.Int("retries", 3, "Retry attempts per chunk")
		redisAddr = flag.String("redis", "", "Redis address for publishing (empty disables)")

		// Database options
		dbHost = flag.String("db-host", "", "Database hostname")
		dbPort = flag.Int("db-port", 0, "Database port")
		dbName = flag.String("db-name", "", "Database name")
		dbUser = flag.String("db-user", "", "Database username")
		dbPass = flag.String("db-pass", "", "Database password")

		// List options
		limit  = flag.Int("limit", 10, "Number of rows to list")
		state  = flag.String("state", "", "Filter by state name")
		market = flag.String("market", "", "Filter by market name")
	)
	flag.Parse()

	dbConfig := db.DefaultConfig()
	if *dbHost != "" {
		dbConfig.Host = *dbHost
	}
	if *dbPort != 0 {
		dbConfig.Port = *dbPort
	}
	if *dbName != "" {
		dbConfig.DBName = *dbName
	}
	if *dbUser != "" {
		dbConfig.User = *dbUser
	}
	if *dbPass != "" {
		dbConfig.Password = *dbPass
	}

	database, err := db.NewDatabase(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	switch {
	case *ingestCmd:
		if *filePath == "" {
			log.Fatal("File path is required for the ingest command")
		}

		f, err := os.Open(*filePath)
		if err != nil {
			log.Fatalf("Failed to open CSV file: %v", err)
		}
		defer f.Close()

		var publisher ingest.Publisher
		if *redisAddr != "" {
			p := cache.NewPublisher(*redisAddr, "")
			defer p.Close()
			publisher = p
		}

		options := ingest.Options{
			ChunkSize:  *chunkSize,
			Workers:    *workers,
			MaxRetries: *retries,
			RetryDelay: ingest.DefaultOptions().RetryDelay,
		}
		pipeline := ingest.NewPipeline(database, publisher, options)

		summary, err := pipeline.IngestCSV(ctx, f, models.IngestSource(*source))
		if err != nil {
			log.Printf("Warning: ingestion completed with errors: %v", err)
		}
		if summary != nil {
			fmt.Printf("Batch %s: status=%s parsed=%d dropped=%d inserted=%d\n",
				summary.BatchID, summary.Status, summary.Parsed, summary.Dropped, summary.Inserted)
		}

	case *listCmd:
		points, err := database.ListPrices(ctx, db.PriceFilter{
			State:  *state,
			Market: *market,
			Limit:  *limit,
		})
		if err != nil {
			log.Fatalf("Failed to list prices: %v", err)
		}

		for _, p := range points {
			fmt.Printf("%s  %-20s %-20s %-15s min=%.2f max=%.2f modal=%.2f\n",
				p.ReportedDate.Format("2006-01-02"), p.State, p.Market, p.Variety,
				p.MinPrice, p.MaxPrice, p.ModalPrice)
		}

	default:
		flag.Usage()
		os.Exit(1)
	}
}
