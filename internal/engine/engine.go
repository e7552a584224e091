// Package engine negotiates the dialect of text notebooks.
// It wires metadata migration, dialect resolution, sniffing, the version
// guard and codec selection around one shared registry.
package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/textnb/pkg/dialect"
	"github.com/leapstack-labs/textnb/pkg/formats"
	"github.com/leapstack-labs/textnb/pkg/metadata"
	"github.com/leapstack-labs/textnb/pkg/resolve"
	"github.com/leapstack-labs/textnb/pkg/sniff"
	"github.com/leapstack-labs/textnb/pkg/version"
)

// Engine negotiates dialects. It holds no per-document state and is safe
// for concurrent use.
type Engine struct {
	reg      *dialect.Registry
	parser   *formats.Parser
	resolver *resolve.Resolver
	sniffer  *sniff.Sniffer

	defaults        formats.List
	guard           version.Guard
	requireExplicit bool
	codecs          map[string]Codec

	// Structured logger
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Registry is the dialect catalog (optional, uses dialect.Builtin if nil)
	Registry *dialect.Registry
	// DefaultFormats is the compact formats list used for documents that
	// declare none, e.g. "ipynb,py:percent"
	DefaultFormats string
	// Guard is the version guard (optional, uses version.DefaultGuard if nil)
	Guard *version.Guard
	// RequireExplicit disables sniffing: a dialect must be declared, or be
	// the only one for its extension.
	RequireExplicit bool
	// Codecs maps dialect names to their reader/exporter pair (optional)
	Codecs map[string]Codec
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reg := cfg.Registry
	if reg == nil {
		reg = dialect.Builtin()
	}

	guard := version.DefaultGuard()
	if cfg.Guard != nil {
		guard = *cfg.Guard
	}

	e := &Engine{
		reg:             reg,
		parser:          formats.NewParser(reg),
		resolver:        resolve.New(reg),
		sniffer:         sniff.New(sniff.Config{Registry: reg}),
		guard:           guard,
		requireExplicit: cfg.RequireExplicit,
		codecs:          cfg.Codecs,
		logger:          logger,
	}

	defaults, err := e.parser.ParseMany(cfg.DefaultFormats)
	if err != nil {
		return nil, fmt.Errorf("invalid default formats: %w", err)
	}
	e.defaults = defaults

	logger.Debug("initializing engine",
		"dialects", len(reg.All()),
		"default_formats", defaults.String(),
		"guard", guard.Enabled,
		"require_explicit", cfg.RequireExplicit)

	return e, nil
}

// Registry returns the dialect registry.
func (e *Engine) Registry() *dialect.Registry {
	return e.reg
}

// Parser returns the specifier parser.
func (e *Engine) Parser() *formats.Parser {
	return e.parser
}

// Defaults returns the default formats list.
func (e *Engine) Defaults() formats.List {
	return e.defaults
}

// Migrate normalizes legacy notebook metadata. See metadata.Migrate.
func (e *Engine) Migrate(meta map[string]any) map[string]any {
	return metadata.Migrate(meta)
}

// ReadMetadata returns the migrated notebook metadata found in the header
// of text.
func (e *Engine) ReadMetadata(text, ext string) (map[string]any, error) {
	return e.sniffer.ReadMetadata(text, ext)
}

// ReadFormat returns the dialect declared in the header of text, or "".
func (e *Engine) ReadFormat(text, ext string) (string, error) {
	return e.sniffer.ReadFormat(text, ext)
}

// Sniff guesses the dialect of text from its header and content.
func (e *Engine) Sniff(text, ext string) (sniff.Result, error) {
	res, err := e.sniffer.Sniff(text, ext)
	if err != nil {
		return res, err
	}
	e.logger.Debug("sniffed dialect",
		"ext", ext,
		"dialect", res.Dialect,
		"source", string(res.Source),
		"double_percent", res.Tally.DoublePercent,
		"magic", res.Tally.Magic,
		"section_break", res.Tally.SectionBreak)
	return res, nil
}

// Describe returns the descriptor of a text document with extension ext.
//
// meta is the metadata of the paired notebook, if any. The dialect declared
// there (or in the default formats) wins; otherwise the text is sniffed,
// unless explicit declarations are required, in which case the extension
// must have a single dialect.
func (e *Engine) Describe(text, ext string, meta map[string]any) (*dialect.Descriptor, error) {
	meta = metadata.Migrate(meta)

	name, err := e.resolver.ResolveDialect(meta, ext, e.defaults, false)
	if err != nil {
		return nil, err
	}

	source := "metadata"
	if name == "" && !e.requireExplicit && !e.reg.IsMarkup(ext) {
		res, err := e.Sniff(text, ext)
		if err != nil {
			return nil, err
		}
		name, source = res.Dialect, string(res.Source)
	}

	desc, err := e.reg.Resolve(ext, name)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("resolved dialect", "ext", ext, "dialect", desc.Name, "source", source)
	return desc, nil
}

// CheckMerge runs the version guard before notebook content from source is
// merged into destination.
//
// meta is the metadata read from source. The recorded version is its
// text_representation.format_version; the dialect is the one declared for
// the extension of source, or the registry default. A disabled guard, a
// notebook source or a source equal to destination is always accepted, even
// with metadata that would not decode.
func (e *Engine) CheckMerge(meta map[string]any, source, destination string) error {
	// Nothing is decoded when the guard cannot refuse.
	if !e.guard.Enabled || source == destination {
		return nil
	}
	ext := filepath.Ext(source)
	if ext == dialect.NotebookExtension {
		return nil
	}

	migrated := metadata.Migrate(meta)
	block, err := metadata.DecodeBlock(migrated)
	if err != nil {
		return fmt.Errorf("failed to read metadata of %s: %w", filepath.Base(source), err)
	}

	name, err := e.resolver.ResolveDialect(migrated, ext, e.defaults, true)
	if err != nil {
		return err
	}
	desc, err := e.reg.Resolve(ext, name)
	if err != nil {
		return err
	}

	tag := version.Tag{Dialect: desc.Name, Version: block.FormatVersion()}
	err = e.guard.Check(tag, len(meta) > 0, desc, source, destination)

	e.logger.Debug("version check",
		"source", source,
		"destination", destination,
		"dialect", desc.String(),
		"recorded", tag.Version,
		"current", desc.Current,
		"ok", err == nil)

	return err
}

// Record records in meta that ext is written with the named dialect.
func (e *Engine) Record(meta map[string]any, ext, name string) error {
	if err := e.resolver.RecordDialect(meta, ext, name); err != nil {
		return err
	}
	e.logger.Debug("recorded dialect", "ext", ext, "dialect", name)
	return nil
}
