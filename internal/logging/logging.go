// Package logging builds the process-wide *slog.Logger from config.
//
// Everything in the server logs through log/slog. This package only picks
// the handler and the output:
//
//	format "text" → charmbracelet/log handler (coloured, human readable)
//	format "json" → slog.NewJSONHandler (for log shippers)
//	file set      → lumberjack rotating file instead of stdout
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sakif/mediaplay-sync/internal/config"
)

// New returns the logger and a close function for the underlying output.
// The close function is safe to call when logging to stdout.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     io.Writer = os.Stdout
		closeFn           = func() error { return nil }
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = rotator
		closeFn = rotator.Close
	}

	return slog.New(NewHandler(out, cfg.Format, level)), closeFn, nil
}

// NewHandler returns the slog.Handler for the given format.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           charmlog.Level(level),
	})
}

// ParseLevel accepts debug, info, warn and error (case-insensitive).
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
	return level, nil
}
