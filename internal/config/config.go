package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Ghost site
	GhostURL        string
	GhostAdminKey   string
	GhostAPIVersion string
	GhostRPS        float64
	GhostBurst      int

	// Auth
	APIKey string

	// Worker pool
	WorkerCount      int
	MaxQueueSize     int
	BatchConcurrency int

	// Job state
	JobTTL time.Duration

	// Run journal; empty disables it
	HistoryDB string

	// Compute outcomes without writing back
	DryRun bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		GhostURL:        os.Getenv("GHOST_URL"),
		GhostAdminKey:   os.Getenv("GHOST_ADMIN_KEY"),
		GhostAPIVersion: envOr("GHOST_API_VERSION", "v5.0"),
		GhostRPS:        envFloat("GHOST_RPS", 5),
		GhostBurst:      envInt("GHOST_BURST", 10),

		APIKey: os.Getenv("GHOSTFIX_API_KEY"),

		WorkerCount:      envInt("WORKER_COUNT", 2),
		MaxQueueSize:     envInt("MAX_QUEUE_SIZE", 20),
		BatchConcurrency: envInt("BATCH_CONCURRENCY", 4),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		HistoryDB: envOr("HISTORY_DB", "data/history.db"),

		DryRun: envBool("DRY_RUN", false),
	}

	if cfg.GhostRPS <= 0 {
		cfg.GhostRPS = 5
	}
	if cfg.GhostBurst <= 0 {
		cfg.GhostBurst = 10
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// ValidateGhost checks the settings needed to talk to the Ghost site.
func (c Config) ValidateGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_URL is required")
	}
	if c.GhostAdminKey == "" {
		return fmt.Errorf("GHOST_ADMIN_KEY is required")
	}
	return nil
}

// Validate checks everything the HTTP server needs.
func (c Config) Validate() error {
	if err := c.ValidateGhost(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("GHOSTFIX_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
