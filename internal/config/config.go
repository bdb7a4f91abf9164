package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"shareit/internal/models"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app" toml:"app"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Redis      RedisConfig      `yaml:"redis" toml:"redis"`
	Backup     BackupConfig     `yaml:"backup" toml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring" toml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	API        APIConfig        `yaml:"api" toml:"api"`
	Events     EventsConfig     `yaml:"events" toml:"events"`
	Telegram   TelegramConfig   `yaml:"telegram" toml:"telegram"`
	Google     GoogleConfig     `yaml:"google" toml:"google"`
}

type AppConfig struct {
	Name        string `yaml:"name" toml:"name"`
	Environment string `yaml:"environment" toml:"environment"`
	Version     string `yaml:"version" toml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type RedisConfig struct {
	Address         string `yaml:"address" toml:"address"`
	Password        string `yaml:"password" toml:"password"`
	DB              int    `yaml:"db" toml:"db"`
	PoolSize        int    `yaml:"pool_size" toml:"pool_size"`
	UserCacheTTLSec int    `yaml:"user_cache_ttl_sec" toml:"user_cache_ttl_sec"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled" toml:"enabled"`
	Schedule      string `yaml:"schedule" toml:"schedule"`
	RetentionDays int    `yaml:"retention_days" toml:"retention_days"`
	StoragePath   string `yaml:"storage_path" toml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled" toml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port" toml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level"`
	Format   string `yaml:"format" toml:"format"`
	Output   string `yaml:"output" toml:"output"`
	FilePath string `yaml:"file_path" toml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http" toml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc" toml:"grpc"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled"`
	Port       int  `yaml:"port" toml:"port"`
	Reflection bool `yaml:"reflection" toml:"reflection"`
}

// APIRateLimitConfig limits requests per acting user. Requests/WindowSec drive the
// Redis fixed window; RPS/Burst drive the in-process token bucket.
type APIRateLimitConfig struct {
	Enabled   bool    `yaml:"enabled" toml:"enabled"`
	RPS       float64 `yaml:"rps" toml:"rps"`
	Burst     int     `yaml:"burst" toml:"burst"`
	Requests  int     `yaml:"requests" toml:"requests"`
	WindowSec int     `yaml:"window_sec" toml:"window_sec"`
}

type EventsConfig struct {
	NatsURL       string `yaml:"nats_url" toml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix" toml:"subject_prefix"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" toml:"bot_token"`
	ChatID   int64  `yaml:"chat_id" toml:"chat_id"`
}

type GoogleConfig struct {
	CredentialsFile       string `yaml:"credentials_file" toml:"credentials_file"`
	BookingsSpreadsheetID string `yaml:"bookings_spreadsheet_id" toml:"bookings_spreadsheet_id"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения
	expandedData := os.ExpandEnv(string(data))

	var config Config
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		if _, err := toml.Decode(expandedData, &config); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
			return nil, err
		}
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.API.HTTP.Port <= 0 || c.API.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.API.HTTP.Port)
	}
	if c.API.RateLimit.RPS < 0 {
		return errors.New("rate_limit.rps must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram chat_id is required when bot_token is set")
	}
	if c.Google.CredentialsFile != "" && c.Google.BookingsSpreadsheetID == "" {
		return errors.New("google bookings_spreadsheet_id is required when credentials_file is set")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Redis.UserCacheTTLSec == 0 {
		c.Redis.UserCacheTTLSec = models.DefaultRedisTTL
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.API.RateLimit.Requests == 0 {
		c.API.RateLimit.Requests = models.RateLimitRequests
	}
	if c.API.RateLimit.WindowSec == 0 {
		c.API.RateLimit.WindowSec = models.RateLimitWindow
	}
	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = "shareit.bookings"
	}
	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
}
