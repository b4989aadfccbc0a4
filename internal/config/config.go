// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the placement service.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	ResponseWindowDays int    // statutory response window in business days
	SweepCron          string // cron spec for the expiration sweep
	ReminderCron       string // cron spec for deadline reminder events
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("PLACEMENT_PORT")
	if port == "" {
		port = "8084"
	}

	window := 15
	if raw := os.Getenv("RESPONSE_WINDOW_DAYS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("RESPONSE_WINDOW_DAYS must be a positive integer, got %q", raw)
		}
		window = n
	}

	sweepCron := os.Getenv("SWEEP_CRON")
	if sweepCron == "" {
		sweepCron = "@daily"
	}

	reminderCron := os.Getenv("REMINDER_CRON")
	if reminderCron == "" {
		reminderCron = "0 9 * * *"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		ResponseWindowDays: window,
		SweepCron:          sweepCron,
		ReminderCron:       reminderCron,
	}, nil
}
