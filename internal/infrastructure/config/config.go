package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Archive drivers.
const (
	ArchiveDriverPostgres = "postgres"
	ArchiveDriverSQLite   = "sqlite"
)

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App      AppSettings
	HTTP     HTTPSettings
	Log      LogSettings
	Honeypot HoneypotSettings
	Archive  ArchiveSettings
	Database DatabaseSettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LogSettings struct {
	Level string
	File  string // JSON lines copy of the log; empty disables
}

// HoneypotSettings controls interaction capture.
type HoneypotSettings struct {
	StoreCapacity     int  // Records kept in memory; 0 (default) keeps everything
	MaxBodySize       int  // Bytes of request body inspected per capture
	TrustProxyHeaders bool // Take the source address from X-Forwarded-For / X-Real-IP
}

// ArchiveSettings controls the optional write-only copy of captured records.
type ArchiveSettings struct {
	Enabled      bool
	Driver       string // postgres or sqlite
	SQLitePath   string
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

type DatabaseSettings struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Load resolves the application configuration from environment variables.
// It first attempts to load variables from a .env file if it exists.
// Environment variables set in the system take precedence over .env file values.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "biohoneypot"),
			Version:     getEnv("APP_VERSION", "2.1.3"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  strings.TrimSpace(getEnv("LOG_FILE", "honeypot.log")),
		},
		Honeypot: HoneypotSettings{
			StoreCapacity:     getEnvAsInt("HONEYPOT_STORE_CAPACITY", 0),
			MaxBodySize:       getEnvAsInt("HONEYPOT_MAX_BODY_SIZE", 1<<20),
			TrustProxyHeaders: getEnvAsBool("HONEYPOT_TRUST_PROXY_HEADERS", false),
		},
		Archive: ArchiveSettings{
			Enabled:      getEnvAsBool("ARCHIVE_ENABLED", false),
			Driver:       strings.ToLower(strings.TrimSpace(getEnv("ARCHIVE_DRIVER", ArchiveDriverPostgres))),
			SQLitePath:   strings.TrimSpace(getEnv("ARCHIVE_SQLITE_PATH", "honeypot.db")),
			QueueSize:    getEnvAsInt("ARCHIVE_QUEUE_SIZE", 1024),
			Workers:      getEnvAsInt("ARCHIVE_WORKERS", 2),
			WriteTimeout: getEnvAsDuration("ARCHIVE_WRITE_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseSettings{
			Host:            strings.TrimSpace(os.Getenv("DB_HOST")),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        strings.TrimSpace(os.Getenv("DB_NAME")),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return cfg, fmt.Errorf("invalid config: PORT must be between 1 and 65535, got %d", cfg.HTTP.Port)
	}
	if cfg.Honeypot.StoreCapacity < 0 {
		return cfg, errors.New("invalid config: HONEYPOT_STORE_CAPACITY cannot be negative")
	}
	if cfg.Honeypot.MaxBodySize <= 0 {
		return cfg, errors.New("invalid config: HONEYPOT_MAX_BODY_SIZE must be greater than 0")
	}

	if cfg.Archive.Enabled {
		switch cfg.Archive.Driver {
		case ArchiveDriverPostgres:
			if cfg.Database.Host == "" {
				return cfg, errors.New("invalid config: DB_HOST is required when ARCHIVE_ENABLED=true")
			}
			if cfg.Database.Database == "" {
				return cfg, errors.New("invalid config: DB_NAME is required when ARCHIVE_ENABLED=true")
			}
		case ArchiveDriverSQLite:
			if cfg.Archive.SQLitePath == "" {
				return cfg, errors.New("invalid config: ARCHIVE_SQLITE_PATH is required when ARCHIVE_DRIVER=sqlite")
			}
		default:
			return cfg, fmt.Errorf("invalid config: ARCHIVE_DRIVER must be postgres or sqlite, got %q", cfg.Archive.Driver)
		}
		if cfg.Archive.QueueSize <= 0 {
			return cfg, errors.New("invalid config: ARCHIVE_QUEUE_SIZE must be greater than 0")
		}
		if cfg.Archive.Workers <= 0 {
			return cfg, errors.New("invalid config: ARCHIVE_WORKERS must be greater than 0")
		}
	}

	return cfg, nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
