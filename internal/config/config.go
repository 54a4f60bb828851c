package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port             int              `json:"port"`
	JWTSecret        string           `json:"jwt_secret"`
	AccessTTLMinutes int              `json:"access_ttl_minutes"`
	RefreshTTLHours  int              `json:"refresh_ttl_hours"`
	AdminToken       string           `json:"admin_registration_token"`
	CORSOrigins      []string         `json:"cors_origins"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Database         DatabaseConfig   `json:"database"`
	Mail             MailConfig       `json:"mail"`
	Push             PushConfig       `json:"push"`
	Reminder         ReminderConfig   `json:"reminder"`
	RateLimit        RateLimitConfig  `json:"rate_limit"`
}

// RateLimitConfig sets the per-client windows, in seconds, for the
// credential endpoints and the verification-code endpoints.
type RateLimitConfig struct {
	AuthWindowSeconds int `json:"auth_window_seconds"`
	CodeWindowSeconds int `json:"code_window_seconds"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
}

type PushConfig struct {
	Endpoint  string `json:"endpoint"`
	ServerKey string `json:"server_key"`
}

type ReminderConfig struct {
	CronSpec string `json:"cron_spec"`
	Timezone string `json:"timezone"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.DBName == "" {
		return nil, fmt.Errorf("database.dsn or database.dbname is required")
	}
	if cfg.Mail.Host == "" || cfg.Mail.From == "" {
		return nil, fmt.Errorf("mail.host and mail.from are required")
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.AccessTTLMinutes == 0 {
		cfg.AccessTTLMinutes = 60
	}
	if cfg.RefreshTTLHours == 0 {
		cfg.RefreshTTLHours = 24 * 7
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Reminder.CronSpec == "" {
		// Every two minutes so the five-minute evaluation windows
		// around 06:00 and 18:00 cannot be skipped over.
		cfg.Reminder.CronSpec = "*/2 * * * *"
	}
	if cfg.RateLimit.AuthWindowSeconds == 0 {
		cfg.RateLimit.AuthWindowSeconds = 1
	}
	if cfg.RateLimit.CodeWindowSeconds == 0 {
		cfg.RateLimit.CodeWindowSeconds = 5
	}
	if cfg.Push.Endpoint == "" {
		cfg.Push.Endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	return &cfg, nil
}
