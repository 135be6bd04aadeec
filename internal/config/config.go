package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrDatabaseURLRequired is returned when DATABASE_URL is not set.
var ErrDatabaseURLRequired = errors.New("DATABASE_URL must be set")

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database Database
	Security struct {
		PasswordHasher string
	}
	Log struct {
		Level string
	}
}

// Database describes the relational store and its connection pool.
type Database struct {
	URL      string
	MaxConns int
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("database.url", "")
	v.SetDefault("database.maxconns", 5)
	v.SetDefault("security.passwordhasher", "plain")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.URL = strings.TrimSpace(cfg.Database.URL)
	if cfg.Database.URL == "" {
		return Config{}, ErrDatabaseURLRequired
	}
	if cfg.Database.MaxConns <= 0 {
		return Config{}, fmt.Errorf("database max connections must be positive, got %d", cfg.Database.MaxConns)
	}

	return cfg, nil
}

// Driver resolves the database/sql driver name and data source for the URL.
func (d Database) Driver() (driver, dsn string, err error) {
	url := d.URL
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", url, nil
	case strings.HasPrefix(lower, "sqlite://"):
		path := url[len("sqlite://"):]
		if path == "" {
			return "", "", fmt.Errorf("sqlite database url has no path")
		}
		return "sqlite", path, nil
	case strings.HasPrefix(lower, "file:"):
		return "sqlite", url, nil
	case strings.Contains(lower, "host="):
		return "pgx", url, nil
	}
	return "", "", fmt.Errorf("unsupported database url %q", redact(url))
}

func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	if len(url) > 8 {
		return url[:8] + "..."
	}
	return url
}
