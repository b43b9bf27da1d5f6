package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds global configuration for the mandi services
type Config struct {
	// API server configuration
	ServerHost string `json:"server_host"`
	ServerPort int    `json:"server_port"`

	// Upload handling
	UploadDir      string `json:"upload_dir"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`

	// Database configuration
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_ssl_mode"`

	// Redis configuration; empty address disables the cache layer
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`

	// Ingestion pipeline tuning
	ChunkSize  int `json:"chunk_size"`
	Workers    int `json:"workers"`
	MaxRetries int `json:"max_retries"`

	// Watcher configuration
	APIBaseURL string                 `json:"api_base_url"`
	DropDir    string                 `json:"drop_dir"`
	Schedules  map[string]JobSchedule `json:"schedules"`
}

// JobSchedule defines the schedule for a specific watcher job
type JobSchedule struct {
	Cron        string            `json:"cron"`
	Enabled     bool              `json:"enabled"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{
		ServerHost: "0.0.0.0",
		ServerPort: 8080,

		UploadDir:      "uploads",
		MaxUploadBytes: 20 << 20, // 20 MiB

		DBHost:     "localhost",
		DBPort:     5432,
		DBName:     "mandi",
		DBUser:     "mandi",
		DBPassword: "mandi",
		DBSSLMode:  "disable",

		RedisAddr: "localhost:6379",

		ChunkSize:  500,
		Workers:    4,
		MaxRetries: 3,

		APIBaseURL: "http://localhost:8080",
		DropDir:    "drop",
		Schedules: map[string]JobSchedule{
			"csv_sweep": {
				Cron:        "*/15 * * * *",
				Enabled:     true,
				Description: "Upload CSV files from the drop directory",
			},
		},
	}

	// Override with environment variables if available
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DBHost = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.DBPort = p
		}
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		config.DBName = name
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DBUser = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		config.DBPassword = pass
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.RedisAddr = addr
	}
	if base := os.Getenv("MANDI_API_URL"); base != "" {
		config.APIBaseURL = base
	}

	return config
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(filePath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
