package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/textnb/pkg/formats"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var metadataFile string

	cmd := &cobra.Command{
		Use:   "parse <specs>...",
		Short: "Expand format specifiers to their long form",
		Long: `Parse compact format specifiers such as "ipynb,py:percent" or "nb.py:light"
and print their long form. Several arguments are joined with commas.

Specifiers with the auto extension are resolved against the kernel of the
notebook given with --metadata.`,
		Example: `  # Long form of a paired formats list
  textnb parse ipynb,py:percent

  # Resolve the auto extension from a notebook
  textnb parse auto:light --metadata notebook.ipynb --output yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, strings.Join(args, ","), metadataFile)
		},
	}

	cmd.Flags().StringVar(&metadataFile, "metadata", "", "Notebook or metadata file used to resolve the auto extension")
	return cmd
}

func runParse(cmd *cobra.Command, specs, metadataFile string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	parser := cmdCtx.Engine.Parser()
	r := cmdCtx.Renderer

	list, err := parser.ParseMany(specs)
	if err != nil {
		return err
	}

	if metadataFile != "" {
		meta, err := readMetadataFile(metadataFile)
		if err != nil {
			return err
		}
		if list, err = parser.ResolveAuto(list, meta); err != nil {
			return err
		}
	}

	cmdCtx.Logger.Debug("parsed formats", "specs", specs, "count", len(list))

	if r.Structured() {
		records := make([]map[string]any, len(list))
		for i, spec := range list {
			records[i] = formats.Record(spec)
		}
		return r.Structure(records)
	}

	rows := make([][]string, len(list))
	for i, spec := range list {
		rows[i] = []string{
			spec.Extension,
			spec.Dialect,
			spec.Prefix,
			spec.Suffix,
			optionalBool(spec.CommentMagics),
			optionalBool(spec.SplitAtHeading),
		}
	}
	r.Table([]string{"Extension", "Dialect", "Prefix", "Suffix", "Comment magics", "Split at heading"}, rows)
	r.Printf("Compact form: %s\n", parser.Format(list))
	return nil
}

func optionalBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
