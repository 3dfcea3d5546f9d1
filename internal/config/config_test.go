package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DEBUG", "REPORT_SCHEDULE", "TIMEZONE", "DATA_BACKEND", "DATASET_PATH", "SQLITE_PATH",
	"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_CONTAINER", "DATASET_BLOB", "ARCHIVE_DIR",
	"TEAMS_WEBHOOK_URL", "NOTIFICATION_EMAIL", "SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
	"TREND_DEADBAND", "SEARCH_MAX_PER_CATEGORY", "ALERT_DROP_THRESHOLD", "ALERT_WINDOW_HOURS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "weekly", cfg.ReportSchedule)
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.Equal(t, "memory", cfg.DataBackend)
	assert.Equal(t, "data/visibility.db", cfg.SQLitePath)
	assert.Equal(t, "visibility", cfg.StorageContainer)
	assert.Equal(t, "archive", cfg.ArchiveDir)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 1.0, cfg.TrendDeadband)
	assert.Equal(t, 5, cfg.SearchMaxPerCategory)
	assert.Equal(t, 10.0, cfg.AlertDropThreshold)
	assert.Equal(t, 4, cfg.AlertWindowHours)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("REPORT_SCHEDULE", "daily")
	t.Setenv("DATA_BACKEND", "SQLite")
	t.Setenv("TREND_DEADBAND", "2.5")
	t.Setenv("SEARCH_MAX_PER_CATEGORY", "8")
	t.Setenv("ALERT_WINDOW_HOURS", "not-a-number")
	t.Setenv("TEAMS_WEBHOOK_URL", "https://example.webhook.office.com/hook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "daily", cfg.ReportSchedule)
	assert.Equal(t, "sqlite", cfg.DataBackend)
	assert.Equal(t, 2.5, cfg.TrendDeadband)
	assert.Equal(t, 8, cfg.SearchMaxPerCategory)
	assert.Equal(t, 4, cfg.AlertWindowHours, "unparsable values fall back to the default")
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{"Unknown schedule", map[string]string{"REPORT_SCHEDULE": "hourly"}, "REPORT_SCHEDULE"},
		{"Unknown backend", map[string]string{"DATA_BACKEND": "postgres"}, "DATA_BACKEND"},
		{"Dataset blob without account", map[string]string{"DATASET_BLOB": "datasets/latest.json"}, "AZURE_STORAGE_ACCOUNT"},
		{"Email without SMTP", map[string]string{"NOTIFICATION_EMAIL": "team@example.com"}, "SMTP"},
		{"Negative deadband", map[string]string{"TREND_DEADBAND": "-1"}, "TREND_DEADBAND"},
		{"Zero search cap", map[string]string{"SEARCH_MAX_PER_CATEGORY": "0"}, "SEARCH_MAX_PER_CATEGORY"},
		{"Zero alert window", map[string]string{"ALERT_WINDOW_HOURS": "0"}, "ALERT_WINDOW_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad_EmailWithSMTP(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTIFICATION_EMAIL", "team@example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "bot@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.NotificationsEnabled())
}
