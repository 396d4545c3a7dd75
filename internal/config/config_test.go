package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func validConfig() Config {
	cfg := Default()
	cfg.Auth.SecretKey = "0123456789abcdef0123"
	return cfg
}

// =========================================================================
// DEFAULTS AND VALIDATION
// =========================================================================

func TestDefault_RequiresSecret(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestDefault_Values(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Access.PublicReads)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"short secret", func(c *Config) { c.Auth.SecretKey = "short" }, true},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"mysql url", func(c *Config) { c.Database.URL = "mysql://root@localhost/db" }, true},
		{"postgres url", func(c *Config) { c.Database.URL = "postgresql://u:p@h/db" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// =========================================================================
// DATABASE URL TESTS
// =========================================================================

func TestDatabaseConfig_Driver(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
		wantPath   string
	}{
		{"sqlite://data/mediaplay.db", DriverSQLite, "data/mediaplay.db", "data/mediaplay.db"},
		{"sqlite:///var/lib/m.db", DriverSQLite, "/var/lib/m.db", "/var/lib/m.db"},
		{"sqlite://:memory:", DriverSQLite, ":memory:", ""},
		{"local.db", DriverSQLite, "local.db", "local.db"},
		{"postgres://u:p@localhost:5432/db", DriverPostgres, "postgres://u:p@localhost:5432/db", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d := DatabaseConfig{URL: tt.url}
			driver, dsn, err := d.Driver()
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
			assert.Equal(t, tt.wantPath, d.SQLitePath())
		})
	}
}

// =========================================================================
// ENV + FILE OVERLAY TESTS
// =========================================================================

func TestApplyEnv_Overrides(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"PORT":                        "9090",
		"DATABASE_URL":                "postgres://u:p@db/media",
		"JWT_SECRET":                  "env-secret-env-secret",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "5",
		"PUBLIC_READS":                "true",
		"CORS_ORIGINS":                "https://a.example, https://b.example",
		"LOG_FORMAT":                  "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@db/media", cfg.Database.URL)
	assert.Equal(t, "env-secret-env-secret", cfg.Auth.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Access.PublicReads)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_RejectsGarbage(t *testing.T) {
	for _, key := range []string{"PORT", "ACCESS_TOKEN_EXPIRE_MINUTES", "PUBLIC_READS", "DB_MAX_OPEN_CONNS"} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(envMap(map[string]string{key: "not-a-value"}))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)

	assert.Equal(t, "Mediaplay API", cfg.App.Name)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite://data/mediaplay.db", cfg.Database.URL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	content := `
[server]
port = 7000

[auth]
secret_key = "file-secret-file-secret"
token_ttl = "10m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 10*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "file-secret-file-secret", cfg.Auth.SecretKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
