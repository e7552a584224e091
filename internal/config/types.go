// Package config provides the shared project configuration of textnb.
// It is decoupled from CLI concerns so that other tools embedding the engine
// can load a project's textnb.yaml the same way the CLI does.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/textnb/internal/engine"
	"github.com/leapstack-labs/textnb/pkg/dialect"
	"github.com/leapstack-labs/textnb/pkg/version"
)

// LanguageConfig declares an extra script language. The light, percent and
// hydrogen dialects are registered for its extension.
type LanguageConfig struct {
	Extension string `koanf:"extension"`
	Language  string `koanf:"language"`
	Comment   string `koanf:"comment"`
}

// Validate checks that every field is set.
func (l LanguageConfig) Validate() error {
	switch {
	case l.Extension == "":
		return fmt.Errorf("language extension is required")
	case l.Language == "":
		return fmt.Errorf("language %s: language name is required", l.Extension)
	case strings.TrimSpace(l.Comment) == "":
		return fmt.Errorf("language %s: comment prefix is required", l.Extension)
	}
	return nil
}

// ProjectConfig holds the settings of the negotiation engine.
type ProjectConfig struct {
	// DefaultFormats is the compact formats list for documents that declare none
	DefaultFormats string `koanf:"default_formats"`

	GuardVersions        bool `koanf:"guard_versions"`
	AssumeCurrentVersion bool `koanf:"assume_current_version"`
	RequireExplicit      bool `koanf:"require_explicit"`

	Languages []LanguageConfig `koanf:"languages"`
}

// Validate checks the configuration. Formats are validated when the engine
// is built, against the final registry.
func (c *ProjectConfig) Validate() error {
	for _, lang := range c.Languages {
		if err := lang.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Guard returns the version guard described by the configuration.
func (c *ProjectConfig) Guard() *version.Guard {
	return &version.Guard{
		Enabled:       c.GuardVersions,
		AssumeCurrent: c.AssumeCurrentVersion,
	}
}

// Registry returns the builtin registry, extended with the configured
// languages if there are any.
func (c *ProjectConfig) Registry() (*dialect.Registry, error) {
	if len(c.Languages) == 0 {
		return dialect.Builtin(), nil
	}

	b := dialect.NewBuiltinBuilder()
	for _, lang := range c.Languages {
		b.Script(lang.Extension, lang.Language, lang.Comment)
	}
	reg, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid languages: %w", err)
	}
	return reg, nil
}

// EngineConfig converts the project configuration to an engine configuration.
func (c *ProjectConfig) EngineConfig(logger *slog.Logger) (engine.Config, error) {
	if err := c.Validate(); err != nil {
		return engine.Config{}, err
	}
	reg, err := c.Registry()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Registry:        reg,
		DefaultFormats:  c.DefaultFormats,
		Guard:           c.Guard(),
		RequireExplicit: c.RequireExplicit,
		Logger:          logger,
	}, nil
}

// NewEngine builds an engine from the project configuration.
func (c *ProjectConfig) NewEngine(logger *slog.Logger) (*engine.Engine, error) {
	cfg, err := c.EngineConfig(logger)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg)
}
