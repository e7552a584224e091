package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/textnb/pkg/metadata"
)

// NewRecordCommand creates the record command.
func NewRecordCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "record <file> <ext> <dialect>",
		Short: "Record the dialect of a paired format in notebook metadata",
		Long: `Record in the formats list of a notebook that the paired file with the
given extension is written in the given dialect.

The entry for the extension is updated in place, keeping its options; it is
appended when the list has none. The file is a notebook (.ipynb) or a
metadata document (.json, .yaml, .yml, .toml).`,
		Example: `  # Pair notebook.ipynb with a percent script
  textnb record notebook.ipynb py percent --write`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, args[0], args[1], args[2], write)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return cmd
}

func runRecord(cmd *cobra.Command, path, ext, name string, write bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	eng := cmdCtx.Engine

	spec, err := eng.Parser().ParseOne(ext)
	if err != nil {
		return err
	}
	if _, err := eng.Registry().Resolve(spec.Extension, name); err != nil {
		return err
	}

	meta, err := readMetadataFile(path)
	if err != nil {
		return err
	}
	meta = eng.Migrate(meta)
	if err := eng.Record(meta, ext, name); err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if write {
		if err := writeMetadataFile(path, meta); err != nil {
			return err
		}
		block := metadata.RawBlock(meta)
		r.Success(fmt.Sprintf("%s formats: %v", filepath.Base(path), block[metadata.KeyFormats]))
		return nil
	}

	if r.Structured() {
		return r.Structure(meta)
	}
	encoding, err := metadataEncoding(path)
	if err != nil {
		return err
	}
	return encodeMetadata(r.Writer(), meta, encoding)
}
