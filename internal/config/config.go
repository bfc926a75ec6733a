package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string

	// Optional TOML file overriding the built-in goal strategy tables.
	StrategyTablePath string

	// HTTP server bind address for the serve command.
	ListenAddr string

	// Cron expression for the periodic redistribution sweep.
	SweepSchedule string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("WINDOW_PLANNER_DB_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("WINDOW_PLANNER_DB_PATH environment variable not set")
	}

	listenAddr := os.Getenv("WINDOW_PLANNER_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	sweep := os.Getenv("WINDOW_PLANNER_SWEEP_SCHEDULE")
	if sweep == "" {
		sweep = "*/30 * * * *"
	}

	return &Config{
		DatabasePath:      dbPath,
		StrategyTablePath: os.Getenv("WINDOW_PLANNER_STRATEGY_TABLE"),
		ListenAddr:        listenAddr,
		SweepSchedule:     sweep,
	}, nil
}
