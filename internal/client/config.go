package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultBaseURL matches the server's default port.
const DefaultBaseURL = "http://localhost:8000"

// Config is what mediaplayctl remembers between runs.
//
//	base_url = "http://localhost:8000"
//	token = "eyJ..."
//	playlist_id = 3
type Config struct {
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token,omitempty"`
	PlaylistID int64  `toml:"playlist_id,omitempty"`
}

// DefaultConfigPath returns ~/.config/mediaplay/client.toml, or the
// platform's equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("client: locating config directory: %w", err)
	}
	return filepath.Join(dir, "mediaplay", "client.toml"), nil
}

// LoadConfig reads the file at path. A missing file is not an error: the
// defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := Config{BaseURL: DefaultBaseURL}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{BaseURL: DefaultBaseURL}, nil
		}
		return Config{}, fmt.Errorf("client: reading %s: %w", path, err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg, nil
}

// SaveConfig writes cfg to path. The file holds a bearer token, so it is
// only readable by the owner.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("client: creating config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("client: opening %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("client: writing %s: %w", path, err)
	}
	return f.Close()
}
