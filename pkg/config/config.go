// Package config loads this module's configuration from an optional YAML
// file plus environment variable overrides, following the teacher's
// env-tag-decode convention trimmed to the sections this core needs:
// datastore connection, SNMP session defaults, the orchestrator cache, and
// logging. HTTP/auth/tracing/Supabase configuration belongs to collaborator
// services and is not modeled here.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/opsnet/unet/pkg/storage"
	"github.com/opsnet/unet/pkg/storage/csv"
	"github.com/opsnet/unet/pkg/storage/memory"
	"github.com/opsnet/unet/pkg/storage/postgres"
)

// DatastoreConfig selects and parameterizes the storage.Datastore backend.
type DatastoreConfig struct {
	Driver          string `json:"driver" yaml:"driver" env:"DATASTORE_DRIVER"`
	DSN             string `json:"dsn" yaml:"dsn" env:"DATASTORE_DSN"`
	CSVDir          string `json:"csv_dir" yaml:"csv_dir" env:"DATASTORE_CSV_DIR"`
	MaxOpenConns    int    `json:"max_open_conns" yaml:"max_open_conns" env:"DATASTORE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `json:"max_idle_conns" yaml:"max_idle_conns" env:"DATASTORE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" env:"DATASTORE_CONN_MAX_LIFETIME"`
}

// ConnectionString builds a libpq-style connection string from discrete
// host parameters when DSN itself was not supplied directly.
func (c DatastoreConfig) ConnectionString(host string, port int, user, password, name, sslmode string) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslmode,
	)
}

// Open constructs the storage.Datastore named by c.Driver ("memory", "csv",
// or "postgres"), the same three-way choice the teacher's appserver makes
// between in-memory and postgres storage, generalized here with the CSV
// back-end as a third option. It is a plain constructor, not a collaborator
// entrypoint: wiring it behind a flag or a CLI command remains out of
// scope for this module.
func (c DatastoreConfig) Open(ctx context.Context) (storage.Datastore, error) {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", "memory":
		return memory.New(), nil
	case "csv":
		if strings.TrimSpace(c.CSVDir) == "" {
			return nil, fmt.Errorf("config: csv driver requires csv_dir")
		}
		return csv.Open(c.CSVDir)
	case "postgres":
		if strings.TrimSpace(c.DSN) == "" {
			return nil, fmt.Errorf("config: postgres driver requires dsn")
		}
		store, err := postgres.Open(ctx, c.DSN)
		if err != nil {
			return nil, err
		}
		store.DB().SetMaxOpenConns(c.MaxOpenConns)
		store.DB().SetMaxIdleConns(c.MaxIdleConns)
		store.DB().SetConnMaxLifetime(c.ConnMaxLifetime)
		return store, nil
	default:
		return nil, fmt.Errorf("config: unknown datastore driver %q", c.Driver)
	}
}

// SNMPConfig holds session defaults applied to a PollingTask that does not
// override them itself.
type SNMPConfig struct {
	DefaultVersion string        `json:"default_version" yaml:"default_version" env:"SNMP_DEFAULT_VERSION"`
	DefaultRetries int           `json:"default_retries" yaml:"default_retries" env:"SNMP_DEFAULT_RETRIES"`
	DefaultTimeout time.Duration `json:"default_timeout" yaml:"default_timeout" env:"SNMP_DEFAULT_TIMEOUT"`
	Concurrency    int           `json:"concurrency" yaml:"concurrency" env:"SNMP_POLL_CONCURRENCY"`
}

// OrchestrationConfig parameterizes the policy orchestrator's batching and
// result cache.
type OrchestrationConfig struct {
	CacheTTL       time.Duration `json:"cache_ttl" yaml:"cache_ttl" env:"ORCHESTRATION_CACHE_TTL"`
	RedisAddr      string        `json:"redis_addr" yaml:"redis_addr" env:"ORCHESTRATION_REDIS_ADDR"`
	DrainInterval  time.Duration `json:"drain_interval" yaml:"drain_interval" env:"ORCHESTRATION_DRAIN_INTERVAL"`
	DrainCronSpec  string        `json:"drain_cron" yaml:"drain_cron" env:"ORCHESTRATION_DRAIN_CRON"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Format string `json:"format" yaml:"format" env:"LOG_FORMAT"`
	Output string `json:"output" yaml:"output" env:"LOG_OUTPUT"`
}

// Config is the top-level configuration for this module's core
// components (datastore, SNMP polling, policy orchestration, logging).
type Config struct {
	Datastore     DatastoreConfig     `json:"datastore" yaml:"datastore"`
	SNMP          SNMPConfig          `json:"snmp" yaml:"snmp"`
	Orchestration OrchestrationConfig `json:"orchestration" yaml:"orchestration"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging"`
}

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		Datastore: DatastoreConfig{
			Driver:          "memory",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		SNMP: SNMPConfig{
			DefaultVersion: "2c",
			DefaultRetries: 3,
			DefaultTimeout: 5 * time.Second,
			Concurrency:    8,
		},
		Orchestration: OrchestrationConfig{
			CacheTTL:      30 * time.Second,
			DrainInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load loads configuration from an optional .env file, an optional YAML
// file named by CONFIG_FILE (or ./config.yaml if present), and finally
// environment variable overrides, in that order of increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		_ = loadFromFile("config.yaml", cfg)
	}

	if err := envdecode.Decode(cfg); err != nil {
		// envdecode errors when no tagged fields are present in the
		// environment; treat that as "no overrides" so local runs work
		// without exporting every variable.
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

// LoadFile reads configuration from a YAML file, applying New()'s
// defaults first.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
