package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	ReportSchedule string // "daily" or "weekly"
	TimeZone       string

	// Record store
	DataBackend string // "memory" or "sqlite"
	DatasetPath string // JSON snapshot loaded at startup
	SQLitePath  string

	// Azure Storage configuration (report archive, optional dataset source)
	StorageAccount   string
	StorageContainer string
	DatasetBlob      string
	ArchiveDir       string // local archive used when no storage account is set

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Analytics
	TrendDeadband        float64
	SearchMaxPerCategory int
	AlertDropThreshold   float64
	AlertWindowHours     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Debug:          getBoolEnv("DEBUG", false),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "weekly"),
		TimeZone:       getEnv("TIMEZONE", "UTC"),

		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", "memory")),
		DatasetPath: getEnv("DATASET_PATH", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/visibility.db"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "visibility"),
		DatasetBlob:      getEnv("DATASET_BLOB", ""),
		ArchiveDir:       getEnv("ARCHIVE_DIR", "archive"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		TrendDeadband:        getFloatEnv("TREND_DEADBAND", 1.0),
		SearchMaxPerCategory: getIntEnv("SEARCH_MAX_PER_CATEGORY", 5),
		AlertDropThreshold:   getFloatEnv("ALERT_DROP_THRESHOLD", 10),
		AlertWindowHours:     getIntEnv("ALERT_WINDOW_HOURS", 4),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.DataBackend != "memory" && c.DataBackend != "sqlite" {
		return fmt.Errorf("DATA_BACKEND must be 'memory' or 'sqlite'")
	}

	if c.DataBackend == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when DATA_BACKEND is 'sqlite'")
	}

	if c.DatasetBlob != "" && c.StorageAccount == "" {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required when DATASET_BLOB is set")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.TrendDeadband < 0 {
		return fmt.Errorf("TREND_DEADBAND must not be negative")
	}

	if c.SearchMaxPerCategory <= 0 {
		return fmt.Errorf("SEARCH_MAX_PER_CATEGORY must be positive")
	}

	if c.AlertWindowHours <= 0 {
		return fmt.Errorf("ALERT_WINDOW_HOURS must be positive")
	}

	return nil
}

// NotificationsEnabled reports whether any notification channel is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TeamsWebhookURL != "" || c.NotificationEmail != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
