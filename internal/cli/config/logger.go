package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel parses a log level name. An empty name is the default level.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		name = DefaultLogLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q\nHint: use one of debug, info, warn, error", name)
	}
	return level, nil
}

// NewLogger builds the logger described by the configuration.
// --verbose lowers the level to debug.
func NewLogger(w io.Writer, cfg *Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
