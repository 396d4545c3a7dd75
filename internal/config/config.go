// Package config builds the process configuration.
//
// LOAD ORDER:
//  1. Default()            safe development defaults
//  2. optional TOML file   values present in the file replace defaults
//  3. environment          PORT, DATABASE_URL, JWT_SECRET, ... win over both
//
// The result is one Config value created in main and handed to the pieces
// that need it (store, token service, server). Nothing reads the
// environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	minSecretLength = 16
)

// Config is the full server configuration.
type Config struct {
	App      AppConfig      `toml:"app"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Access   AccessConfig   `toml:"access"`
	CORS     CORSConfig     `toml:"cors"`
	Log      LogConfig      `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type ServerConfig struct {
	Port            int           `toml:"port"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// DatabaseConfig selects and sizes the SQL store.
//
// URL forms:
//
//	sqlite://data/mediaplay.db      relative file
//	sqlite:///var/lib/mediaplay.db  absolute file
//	sqlite://:memory:               in-memory (tests)
//	postgres://user:pw@host/db      PostgreSQL through pgx
type DatabaseConfig struct {
	URL             string        `toml:"url"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type AuthConfig struct {
	SecretKey string        `toml:"secret_key"`
	TokenTTL  time.Duration `toml:"token_ttl"`
	Issuer    string        `toml:"issuer"`
}

// AccessConfig holds read-access policy.
//
// PublicReads lets anonymous callers list rows of every owner. It exposes
// all users' libraries to anyone who can reach the server and stays off
// unless explicitly enabled.
type AccessConfig struct {
	PublicReads bool `toml:"public_reads"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "text" or "json"
	File       string `toml:"file"`   // empty = stdout
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the development configuration. The secret is empty on
// purpose: Validate refuses to start without one.
func Default() Config {
	return Config{
		App: AppConfig{
			Name:    "Mediaplay API",
			Version: "1.0.0",
		},
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             "sqlite://data/mediaplay.db",
			MaxOpenConns:    15,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL: 30 * time.Minute,
			Issuer:   "mediaplay-sync",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

// Load returns Default() overlaid with the TOML file at path (skipped when
// path is empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. lookup is injectable for tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Database.URL = v
	}
	if v, ok := lookup("DB_MAX_OPEN_CONNS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid DB_MAX_OPEN_CONNS %q: %w", v, err)
		}
		c.Database.MaxOpenConns = n
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.SecretKey = v
	}
	if v, ok := lookup("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid ACCESS_TOKEN_EXPIRE_MINUTES %q: %w", v, err)
		}
		c.Auth.TokenTTL = time.Duration(minutes) * time.Minute
	}
	if v, ok := lookup("PUBLIC_READS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid PUBLIC_READS %q: %w", v, err)
		}
		c.Access.PublicReads = b
	}
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		c.Log.File = v
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if len(c.Auth.SecretKey) < minSecretLength {
		return fmt.Errorf("config: auth secret must be at least %d characters (set JWT_SECRET)", minSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if _, _, err := c.Database.Driver(); err != nil {
		return err
	}
	return nil
}

// Driver maps the database URL to a database/sql driver name and DSN.
func (d DatabaseConfig) Driver() (driver, dsn string, err error) {
	u := strings.TrimSpace(d.URL)
	switch {
	case u == "":
		return "", "", errors.New("config: database url is empty")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DriverPostgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(u, "sqlite://"), nil
	case strings.Contains(u, "://"):
		return "", "", fmt.Errorf("config: unsupported database url %q", u)
	default:
		// bare path
		return DriverSQLite, u, nil
	}
}

// SQLitePath returns the file path of a SQLite database, or "" for
// in-memory and non-SQLite URLs.
func (d DatabaseConfig) SQLitePath() string {
	driver, dsn, err := d.Driver()
	if err != nil || driver != DriverSQLite || dsn == ":memory:" {
		return ""
	}
	return dsn
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
