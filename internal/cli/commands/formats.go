package commands

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/textnb/internal/cli/output"
	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// DialectInfo is the structured output of the formats command.
type DialectInfo struct {
	Extension    string `json:"extension" yaml:"extension"`
	Name         string `json:"name" yaml:"name"`
	Language     string `json:"language,omitempty" yaml:"language,omitempty"`
	HeaderPrefix string `json:"header_prefix,omitempty" yaml:"header_prefix,omitempty"`
	Current      string `json:"current_version" yaml:"current_version"`
	MinReadable  string `json:"min_readable_version" yaml:"min_readable_version"`
	Markup       bool   `json:"markup" yaml:"markup"`
	Default      bool   `json:"default" yaml:"default"`
}

// NewFormatsCommand creates the formats command.
func NewFormatsCommand() *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the registered dialects",
		Long: `List every text notebook dialect with its extension, language and version contract.

The first dialect listed for an extension is its default.`,
		Example: `  # All dialects
  textnb formats

  # Dialects for Python scripts, as JSON
  textnb formats --ext py --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFormats(cmd, ext)
		},
	}

	cmd.Flags().StringVar(&ext, "ext", "", "Only list the dialects of this extension")
	return cmd
}

func runFormats(cmd *cobra.Command, ext string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	reg := cmdCtx.Engine.Registry()
	r := cmdCtx.Renderer

	infos, err := dialectInfos(reg, ext)
	if err != nil {
		return err
	}

	if r.Structured() {
		return r.Structure(infos)
	}

	titleCaser := cases.Title(language.English)
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		lang := "Markup"
		if !info.Markup {
			lang = titleCaser.String(info.Language)
		}
		def := ""
		if info.Default {
			def = "*"
		}
		rows = append(rows, []string{info.Extension, info.Name, lang, info.HeaderPrefix, info.Current, info.MinReadable, def})
	}

	if r.EffectiveMode() == output.ModeText {
		r.Header(1, "Dialects")
	}
	r.Table([]string{"Extension", "Dialect", "Language", "Header prefix", "Version", "Min readable", "Default"}, rows)
	return nil
}

// dialectInfos lists the registry grouped by extension, optionally
// restricted to one extension.
func dialectInfos(reg *dialect.Registry, ext string) ([]DialectInfo, error) {
	exts := reg.Extensions()
	if ext != "" {
		ext = dialect.NormalizeExtension(ext)
		if _, err := reg.Default(ext); err != nil {
			return nil, err
		}
		exts = []string{ext}
	}

	var infos []DialectInfo
	for _, e := range exts {
		for i, name := range reg.Candidates(e) {
			d, err := reg.Resolve(e, name)
			if err != nil {
				return nil, err
			}
			infos = append(infos, DialectInfo{
				Extension:    d.Extension,
				Name:         d.Name,
				Language:     d.Language,
				HeaderPrefix: d.HeaderPrefix,
				Current:      d.Current,
				MinReadable:  d.MinReadableVersion(),
				Markup:       d.Markup,
				Default:      i == 0,
			})
		}
	}
	return infos, nil
}
