package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/textnb/internal/cli/output"
	"github.com/leapstack-labs/textnb/internal/engine"
)

// SniffReport is the outcome of sniffing one file.
type SniffReport struct {
	Path          string `json:"path" yaml:"path"`
	Dialect       string `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	DoublePercent int    `json:"double_percent" yaml:"double_percent"`
	Magic         int    `json:"magic" yaml:"magic"`
	SectionBreak  int    `json:"section_break" yaml:"section_break"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewSniffCommand creates the sniff command.
func NewSniffCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "sniff <files>...",
		Short: "Guess the dialect of text notebooks",
		Long: `Guess the dialect of text notebooks from their header and content.

A dialect declared in the header wins. Otherwise cell markers, magic
commands and section breaks are counted, and the extension's default is
used when nothing is conclusive. Files are processed in parallel.`,
		Example: `  # Sniff every Python script in a directory
  textnb sniff notebooks/*.py

  # As JSON, with the marker counts
  textnb sniff analysis.py --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSniff(cmd, args, jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of files sniffed in parallel")
	return cmd
}

func runSniff(cmd *cobra.Command, paths []string, jobs int) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	reports, err := sniffFiles(cmd.Context(), cmdCtx.Engine, paths, jobs)
	if err != nil {
		return err
	}

	failed := 0
	for _, rep := range reports {
		if rep.Error != "" {
			failed++
		}
	}

	if r.Structured() {
		if err := r.Structure(reports); err != nil {
			return err
		}
	} else {
		renderSniffReports(r, reports)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be sniffed", failed, len(reports))
	}
	return nil
}

// sniffFiles sniffs paths concurrently. Reports keep the order of paths;
// per-file failures are recorded in the report, not returned.
func sniffFiles(ctx context.Context, eng *engine.Engine, paths []string, jobs int) ([]SniffReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}

	reports := make([]SniffReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = sniffFile(eng, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func sniffFile(eng *engine.Engine, path string) SniffReport {
	rep := SniffReport{Path: path}

	text, err := readDocument(path)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}

	ext := filepath.Ext(path)
	res, err := eng.Sniff(text, ext)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Dialect = res.Dialect
	rep.Source = string(res.Source)
	rep.DoublePercent = res.Tally.DoublePercent
	rep.Magic = res.Tally.Magic
	rep.SectionBreak = res.Tally.SectionBreak

	if desc, err := eng.Registry().Resolve(ext, res.Dialect); err == nil {
		rep.Version = desc.Current
	}
	return rep
}

func renderSniffReports(r *output.Renderer, reports []SniffReport) {
	if r.EffectiveMode() == output.ModeMarkdown {
		rows := make([][]string, len(reports))
		for i, rep := range reports {
			rows[i] = []string{rep.Path, rep.Dialect, rep.Source, rep.Version,
				strconv.Itoa(rep.DoublePercent), strconv.Itoa(rep.Magic), strconv.Itoa(rep.SectionBreak), rep.Error}
		}
		r.Table([]string{"Path", "Dialect", "Source", "Version", "Cells", "Magics", "Sections", "Error"}, rows)
		return
	}

	styles := r.Styles()
	for _, rep := range reports {
		if rep.Error != "" {
			r.Error(fmt.Sprintf("%s: %s", rep.Path, rep.Error))
			continue
		}
		r.Printf("%s  %s %s\n",
			rep.Path,
			styles.Dialect.Render(rep.Dialect),
			r.Muted(fmt.Sprintf("(%s, version %s)", rep.Source, rep.Version)))
	}
}
