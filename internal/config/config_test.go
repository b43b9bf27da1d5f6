package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServerPort != 8080 {
		t.Errorf("Expected server port 8080, got %d", config.ServerPort)
	}
	if config.DBPort != 5432 {
		t.Errorf("Expected db port 5432, got %d", config.DBPort)
	}
	if config.MaxUploadBytes != 20<<20 {
		t.Errorf("Expected 20 MiB upload limit, got %d", config.MaxUploadBytes)
	}
	if config.ChunkSize != 500 {
		t.Errorf("Expected chunk size 500, got %d", config.ChunkSize)
	}
	if config.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", config.Workers)
	}

	sweep, ok := config.Schedules["csv_sweep"]
	if !ok {
		t.Fatal("Expected default csv_sweep schedule")
	}
	if sweep.Cron != "*/15 * * * *" {
		t.Errorf("Expected csv_sweep cron '*/15 * * * *', got %q", sweep.Cron)
	}
	if !sweep.Enabled {
		t.Error("Expected csv_sweep schedule to be enabled by default")
	}
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("MANDI_API_URL", "http://api.internal:9090")

	config := DefaultConfig()

	if config.DBHost != "db.internal" {
		t.Errorf("Expected db host override, got %q", config.DBHost)
	}
	if config.DBPort != 5433 {
		t.Errorf("Expected db port override 5433, got %d", config.DBPort)
	}
	if config.RedisAddr != "redis.internal:6379" {
		t.Errorf("Expected redis addr override, got %q", config.RedisAddr)
	}
	if config.APIBaseURL != "http://api.internal:9090" {
		t.Errorf("Expected API base URL override, got %q", config.APIBaseURL)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	original := DefaultConfig()
	original.ServerPort = 9000
	original.DropDir = "/var/mandi/drop"
	original.Schedules["csv_sweep"] = JobSchedule{
		Cron:    "0 * * * *",
		Enabled: false,
	}

	if err := original.SaveToFile(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.ServerPort != 9000 {
		t.Errorf("Expected loaded server port 9000, got %d", loaded.ServerPort)
	}
	if loaded.DropDir != "/var/mandi/drop" {
		t.Errorf("Expected loaded drop dir '/var/mandi/drop', got %q", loaded.DropDir)
	}
	if sweep := loaded.Schedules["csv_sweep"]; sweep.Cron != "0 * * * *" || sweep.Enabled {
		t.Errorf("Expected loaded csv_sweep schedule to be overridden, got %+v", sweep)
	}
}

func TestLoadMissingFile(t *testing.T) {
	config := DefaultConfig()
	if err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error loading missing config file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err == nil {
		t.Error("Expected error loading malformed config file")
	}
}
