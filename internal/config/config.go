// Package config loads the bot configuration from YAML with ${ENV_VAR}
// placeholders.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
		// Messages per second sent to the telegram API.
		SendRate float64 `yaml:"send_rate"`
	} `yaml:"telegram"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		SessionTimeoutMinutes int `yaml:"session_timeout_minutes"`
		MaxAdvanceDays        int `yaml:"max_advance_days"`
		// Hour of day (1-23) to send next-day reminders; 0 disables them.
		ReminderHour int `yaml:"reminder_hour"`
	} `yaml:"booking"`

	Sheets SheetsConfig `yaml:"sheets"`

	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`

	Admins        []int64 `yaml:"admins"`
	AdminPassword string  `yaml:"admin_password"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	StoragePath   string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type SheetsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	CredentialsFile string `yaml:"credentials_file"`
	SyncMinutes     int    `yaml:"sync_minutes"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/darbot.db"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "data/exports"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SessionTimeout returns the dialog idle timeout.
func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

// MaxAdvance returns how far ahead a booking may start.
func (c *Config) MaxAdvance() time.Duration {
	if c.Booking.MaxAdvanceDays <= 0 {
		return 365 * 24 * time.Hour
	}
	return time.Duration(c.Booking.MaxAdvanceDays) * 24 * time.Hour
}

// SendRate returns the outgoing message rate limit per second.
func (c *Config) SendRate() float64 {
	if c.Telegram.SendRate <= 0 {
		return 25
	}
	return c.Telegram.SendRate
}

// IsAdmin reports whether the user id is in the static admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}
