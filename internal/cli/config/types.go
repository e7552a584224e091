// Package config provides configuration management for the textnb CLI.
//
// This package extends the shared project configuration from
// internal/config with CLI-specific fields: output mode, verbosity and
// logging.
package config

import (
	sharedcfg "github.com/leapstack-labs/textnb/internal/config"
)

// LanguageConfig is an alias for the shared language declaration.
type LanguageConfig = sharedcfg.LanguageConfig

// Config holds all CLI configuration options.
type Config struct {
	DefaultFormats       string           `koanf:"default_formats"`
	GuardVersions        bool             `koanf:"guard_versions"`
	AssumeCurrentVersion bool             `koanf:"assume_current_version"`
	RequireExplicit      bool             `koanf:"require_explicit"`
	Languages            []LanguageConfig `koanf:"languages"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`

	// ProjectRoot is the directory holding textnb.yaml, or the working
	// directory when there is none.
	ProjectRoot string `koanf:"-"`
}

// Project returns the engine settings as a shared ProjectConfig.
func (c *Config) Project() *sharedcfg.ProjectConfig {
	return &sharedcfg.ProjectConfig{
		DefaultFormats:       c.DefaultFormats,
		GuardVersions:        c.GuardVersions,
		AssumeCurrentVersion: c.AssumeCurrentVersion,
		RequireExplicit:      c.RequireExplicit,
		Languages:            c.Languages,
	}
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Output modes accepted by --output.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// Log formats accepted by --log-format.
var LogFormats = []string{"text", "json"}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	p := sharedcfg.DefaultProjectConfig()
	return &Config{
		DefaultFormats:       p.DefaultFormats,
		GuardVersions:        p.GuardVersions,
		AssumeCurrentVersion: p.AssumeCurrentVersion,
		RequireExplicit:      p.RequireExplicit,
		OutputFormat:         DefaultOutput,
		LogLevel:             DefaultLogLevel,
		LogFormat:            DefaultLogFormat,
	}
}
