// Package config defines all configuration structures for patscope.  No I/O
// or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/patlytics/patscope/internal/domain/quality"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds report-API server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.  The same database
// hosts the PATSTAT tables (read-only from this tool's perspective) and the
// tool-owned `patscope` schema for the run store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds the optional query-result cache parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the optional run-event publishing parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchSize    int           `mapstructure:"batch_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds the optional S3-compatible artifact-archive parameters.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// DatasetConfig holds the dataset-builder filter parameters.  Keywords are
// case-insensitive substrings matched against title or abstract; class
// prefixes are matched against IPC and CPC symbols.
type DatasetConfig struct {
	Keywords      []string `mapstructure:"keywords"`
	ClassPrefixes []string `mapstructure:"class_prefixes"`
	YearFrom      int      `mapstructure:"year_from"`
	YearTo        int      `mapstructure:"year_to"`

	// Combine selects how the keyword and classification match sets are
	// merged: "intersection" (the high-quality definition) or "union".
	Combine string `mapstructure:"combine"`

	// Limit caps the number of returned applications; 0 means unlimited.
	Limit int `mapstructure:"limit"`
}

// GeoConfig holds geographic-enrichment options.  Regions maps ISO country
// codes to region names and is merged over the built-in table, so individual
// countries can be rebucketed without replacing the whole mapping.
type GeoConfig struct {
	Regions map[string]string `mapstructure:"regions"`
}

// ExportConfig holds artifact-export options.
type ExportConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"` // subset of "csv", "json", "html"
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and pipeline stage reads its settings from the relevant sub-struct; nothing
// reads configuration ambiently.
type Config struct {
	Server   ServerConfig       `mapstructure:"server"`
	Database DatabaseConfig     `mapstructure:"database"`
	Redis    RedisConfig        `mapstructure:"redis"`
	Kafka    KafkaConfig        `mapstructure:"kafka"`
	MinIO    MinIOConfig        `mapstructure:"minio"`
	Log      LogConfig          `mapstructure:"log"`
	Dataset  DatasetConfig      `mapstructure:"dataset"`
	Geo      GeoConfig          `mapstructure:"geo"`
	Export   ExportConfig       `mapstructure:"export"`
	Scoring  quality.Thresholds `mapstructure:"scoring"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis (only when enabled)
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka (only when enabled)
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker when kafka.enabled is true")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka.enabled is true")
		}
	}

	// MinIO (only when enabled)
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio.enabled is true")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio.enabled is true")
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Dataset
	switch c.Dataset.Combine {
	case "union", "intersection":
	default:
		return fmt.Errorf("config: dataset.combine %q is invalid; expected union|intersection", c.Dataset.Combine)
	}
	if c.Dataset.YearFrom != 0 && c.Dataset.YearTo != 0 && c.Dataset.YearFrom > c.Dataset.YearTo {
		return fmt.Errorf("config: dataset.year_from %d is after dataset.year_to %d", c.Dataset.YearFrom, c.Dataset.YearTo)
	}
	if c.Dataset.Limit < 0 {
		return fmt.Errorf("config: dataset.limit must be ≥ 0, got %d", c.Dataset.Limit)
	}

	// Export
	for _, f := range c.Export.Formats {
		switch f {
		case "csv", "json", "html":
		default:
			return fmt.Errorf("config: export.formats contains unknown format %q", f)
		}
	}

	// Scoring
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("config: scoring thresholds invalid: %w", err)
	}

	return nil
}
