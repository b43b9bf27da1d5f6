package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iiorcrop/mandi/internal/config"
	"github.com/iiorcrop/mandi/internal/jobs"
	"github.com/iiorcrop/mandi/internal/watch"
	"github.com/iiorcrop/mandi/pkg/client"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	apiBaseURL := flag.String("api", "", "Base URL of the mandi API (overrides config)")
	dropDir := flag.String("drop-dir", "", "Directory to sweep for CSV files (overrides config)")
	genConfig := flag.Bool("gen-config", false, "Generate a default config file and exit")
	runOnce := flag.Bool("run-once", false, "Run all jobs once and exit")
	flag.Parse()

	if *genConfig {
		if err := config.DefaultConfig().SaveToFile("watcher-config.json"); err != nil {
			log.Fatalf("Failed to write config file: %v", err)
		}
		log.Println("Generated default config file: watcher-config.json")
		return
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if err := cfg.LoadFromFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *apiBaseURL != "" {
		cfg.APIBaseURL = *apiBaseURL
	}
	if *dropDir != "" {
		cfg.DropDir = *dropDir
	}

	apiClient := client.NewClient(cfg.APIBaseURL)
	watcher := watch.NewWatcher(cfg.Schedules)

	sweepJob := jobs.NewCSVSweepJob(apiClient, cfg.DropDir)
	if err := watcher.RegisterJob(sweepJob); err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	if *runOnce {
		for _, job := range watcher.ListJobs() {
			if err := watcher.RunJobNow(job.Name()); err != nil {
				log.Printf("Job '%s' failed: %v", job.Name(), err)
			}
		}
		return
	}

	if err := watcher.Start(); err != nil {
		log.Fatalf("Failed to start watcher: %v", err)
	}
	for _, job := range watcher.ListJobs() {
		if next, err := watcher.NextRun(job.Name()); err == nil {
			log.Printf("Job '%s' next run at %s", job.Name(), next.Format(time.RFC3339))
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	watcher.Stop()
}
