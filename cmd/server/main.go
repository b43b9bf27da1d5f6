package main

import (
	"flag"
	"log"

	"github.com/iiorcrop/mandi/internal/api"
	"github.com/iiorcrop/mandi/internal/cache"
	"github.com/iiorcrop/mandi/internal/config"
	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/ingest"
	"github.com/iiorcrop/mandi/internal/uploads"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "API server port (overrides config)")
	uploadDir := flag.String("upload-dir", "", "Directory for raw uploads (overrides config)")
	noRedis := flag.Bool("no-redis", false, "Disable the Redis cache layer")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if err := cfg.LoadFromFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *port != 0 {
		cfg.ServerPort = *port
	}
	if *uploadDir != "" {
		cfg.UploadDir = *uploadDir
	}

	database, err := db.NewDatabase(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	uploadStore, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to create upload store: %v", err)
	}

	var publisher ingest.Publisher
	if !*noRedis && cfg.RedisAddr != "" {
		p := cache.NewPublisher(cfg.RedisAddr, cfg.RedisPassword)
		defer p.Close()
		publisher = p
	}

	options := ingest.DefaultOptions()
	if cfg.ChunkSize > 0 {
		options.ChunkSize = cfg.ChunkSize
	}
	if cfg.Workers > 0 {
		options.Workers = cfg.Workers
	}
	if cfg.MaxRetries > 0 {
		options.MaxRetries = cfg.MaxRetries
	}
	pipeline := ingest.NewPipeline(database, publisher, options)

	server := api.NewServer(cfg, database, pipeline, uploadStore)
	if err := server.Start(); err != nil {
		log.Fatalf("Error running API server: %v", err)
	}
}
