package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Rewrite legacy notebook metadata",
		Long: `Rewrite notebook metadata written by older versions to the current layout:
flat jupytext_* keys and nbrmd_* keys move under the jupytext block, and
metadata_filter becomes notebook_metadata_filter and cell_metadata_filter.

The file is a metadata document (.json, .yaml, .yml, .toml), a notebook (.ipynb)
or a text notebook, whose YAML header is rewritten. The result is printed,
or written back with --write.`,
		Example: `  # Print migrated metadata as YAML
  textnb migrate metadata.json --output yaml

  # Migrate the header of a script in place
  textnb migrate analysis.py --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args[0], write)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return cmd
}

func runMigrate(cmd *cobra.Command, path string, write bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if cmdCtx.Engine.IsTextNotebook(path) {
		return migrateDocument(cmdCtx, path, write)
	}

	meta, err := readMetadataFile(path)
	if err != nil {
		return err
	}
	migrated := cmdCtx.Engine.Migrate(meta)

	if write {
		if err := writeMetadataFile(path, migrated); err != nil {
			return err
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("migrated %s", filepath.Base(path)))
		return nil
	}

	r := cmdCtx.Renderer
	if r.Structured() {
		return r.Structure(migrated)
	}
	encoding, err := metadataEncoding(path)
	if err != nil {
		return err
	}
	return encodeMetadata(r.Writer(), migrated, encoding)
}

func migrateDocument(cmdCtx *CommandContext, path string, write bool) error {
	text, err := readDocument(path)
	if err != nil {
		return err
	}

	migrated, changed, err := cmdCtx.Engine.MigrateHeader(text, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", filepath.Base(path), err)
	}

	r := cmdCtx.Renderer
	if !write {
		r.Printf("%s", migrated)
		return nil
	}
	if !changed {
		r.Println(r.Muted(fmt.Sprintf("%s is up to date", filepath.Base(path))))
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(migrated), info.Mode().Perm()); err != nil {
		return err
	}
	r.Success(fmt.Sprintf("migrated header of %s", filepath.Base(path)))
	return nil
}
