package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/textnb/internal/cli/config"
	"github.com/leapstack-labs/textnb/internal/cli/output"
	"github.com/leapstack-labs/textnb/internal/engine"
	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := cfg.Project().NewEngine(logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, nil
}

// getConfig returns the current configuration, or the defaults when the
// command runs without the root command (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// Metadata document encodings.
const (
	encodingJSON = "json"
	encodingYAML = "yaml"
	encodingTOML = "toml"
)

// metadataEncoding returns the encoding of a metadata file from its extension.
func metadataEncoding(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", dialect.NotebookExtension:
		return encodingJSON, nil
	case ".yaml", ".yml":
		return encodingYAML, nil
	case ".toml":
		return encodingTOML, nil
	default:
		return "", fmt.Errorf("unsupported metadata file %s\nHint: use a .json, .yaml, .yml, .toml or .ipynb file", filepath.Base(path))
	}
}

// readMetadataFile reads notebook metadata from a JSON, YAML or TOML file.
// For an .ipynb notebook the top-level "metadata" object is returned.
func readMetadataFile(path string) (map[string]any, error) {
	encoding, err := metadataEncoding(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path) //nolint:gosec // G304: user-provided path
	if err != nil {
		return nil, err
	}

	meta := map[string]any{}
	switch encoding {
	case encodingJSON:
		err = json.Unmarshal(content, &meta)
	case encodingTOML:
		err = toml.Unmarshal(content, &meta)
	default:
		err = yaml.Unmarshal(content, &meta)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if filepath.Ext(path) == dialect.NotebookExtension {
		nb, _ := meta["metadata"].(map[string]any)
		if nb == nil {
			nb = map[string]any{}
		}
		return nb, nil
	}
	return meta, nil
}

// writeMetadataFile writes metadata back in the encoding of path. For an
// .ipynb notebook only the "metadata" object is replaced.
func writeMetadataFile(path string, meta map[string]any) error {
	encoding, err := metadataEncoding(path)
	if err != nil {
		return err
	}

	doc := meta
	if filepath.Ext(path) == dialect.NotebookExtension {
		content, err := os.ReadFile(path) //nolint:gosec // G304: user-provided path
		if err != nil {
			return err
		}
		doc = map[string]any{}
		if err := json.Unmarshal(content, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		doc["metadata"] = meta
	}

	f, err := os.Create(path) //nolint:gosec // G304: user-provided path
	if err != nil {
		return err
	}
	if err := encodeMetadata(f, doc, encoding); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// encodeMetadata writes metadata as JSON, YAML or TOML.
func encodeMetadata(w io.Writer, meta map[string]any, encoding string) error {
	switch encoding {
	case encodingTOML:
		enc := toml.NewEncoder(w)
		enc.Indent = "  "
		return enc.Encode(meta)
	case encodingYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(meta); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// readDocument reads a text document.
func readDocument(path string) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: user-provided path
	if err != nil {
		return "", err
	}
	return string(content), nil
}
