// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix. Values missing from the environment
// are looked up in an optional dotenv file (LEARN_ENV_FILE, default ".env").
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog source kinds.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Admin    AdminConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// CatalogConfig says where the question catalog is loaded from.
type CatalogConfig struct {
	Source string // "file", "http" or "postgres"
	Path   string
	URL    string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the database.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL keeps
// sessions in memory.
type CacheConfig struct {
	URL        string
	SessionTTL int // minutes
}

// AdminConfig holds settings for the admin editor routes.
type AdminConfig struct {
	Enabled bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	file, err := readEnvFile(os.Getenv("LEARN_ENV_FILE"))
	if err != nil {
		return nil, err
	}
	e := env{file: file}

	cfg := &Config{
		Server: ServerConfig{
			Port: e.int("LEARN_SERVER_PORT", 8080),
			Host: e.str("LEARN_SERVER_HOST", "0.0.0.0"),
		},
		Catalog: CatalogConfig{
			Source: e.str("LEARN_CATALOG_SOURCE", SourceFile),
			Path:   e.str("LEARN_CATALOG_PATH", "./data/questions.json"),
			URL:    e.str("LEARN_CATALOG_URL", ""),
		},
		Database: DatabaseConfig{
			URL:      e.str("LEARN_DATABASE_URL", ""),
			MaxConns: e.int("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: e.int("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:        e.str("LEARN_CACHE_URL", ""),
			SessionTTL: e.int("LEARN_CACHE_SESSION_TTL", 120),
		},
		Admin: AdminConfig{
			Enabled: e.bool("LEARN_ADMIN_ENABLED", false),
		},
		Log: LogConfig{
			Level:  e.str("LEARN_LOG_LEVEL", "info"),
			Format: e.str("LEARN_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("LEARN_CATALOG_PATH is required for the file source")
		}
	case SourceHTTP:
		if c.Catalog.URL == "" {
			return fmt.Errorf("LEARN_CATALOG_URL is required for the http source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("LEARN_DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("LEARN_CATALOG_SOURCE must be 'file', 'http' or 'postgres', got %q", c.Catalog.Source)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Cache.SessionTTL <= 0 {
		return fmt.Errorf("LEARN_CACHE_SESSION_TTL must be positive, got %d", c.Cache.SessionTTL)
	}

	return nil
}

// HasDatabase returns true if a PostgreSQL URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasCache returns true if a Redis/Dragonfly URL is configured.
func (c *Config) HasCache() bool {
	return c.Cache.URL != ""
}

// readEnvFile parses the dotenv file at path. The default ".env" may be
// absent; an explicitly named file must exist.
func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vals, nil
}

// env resolves a key from the process environment first, then the dotenv
// file.
type env struct {
	file map[string]string
}

func (e env) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return e.file[key]
}

func (e env) str(key, fallback string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return fallback
}

func (e env) int(key string, fallback int) int {
	if v := e.lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func (e env) bool(key string, fallback bool) bool {
	if v := e.lookup(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
