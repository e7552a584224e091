package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// CheckResult is the structured output of the check command.
type CheckResult struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Safe        bool   `json:"safe" yaml:"safe"`
	Reason      string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <source> <destination>",
		Short: "Check that a text notebook can be merged into another file",
		Long: `Check the format version recorded in the header of a text notebook before its
content is merged into a destination file.

The merge is refused when the recorded version is outside the range the
reader supports for the dialect. Sources in the native notebook format, and
merges of a file into itself, are always accepted.`,
		Example: `  # Before updating notebook.ipynb from its paired script
  textnb check notebook.py notebook.ipynb`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], args[1])
		},
	}
}

func runCheck(cmd *cobra.Command, source, destination string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	var meta map[string]any
	if filepath.Ext(source) != dialect.NotebookExtension {
		text, err := readDocument(source)
		if err != nil {
			return err
		}
		if meta, err = cmdCtx.Engine.ReadMetadata(text, filepath.Ext(source)); err != nil {
			return fmt.Errorf("failed to read header of %s: %w", filepath.Base(source), err)
		}
	}

	checkErr := cmdCtx.Engine.CheckMerge(meta, source, destination)
	result := CheckResult{Source: source, Destination: destination, Safe: checkErr == nil}
	if checkErr != nil {
		result.Reason = checkErr.Error()
	}

	if r.Structured() {
		if err := r.Structure(result); err != nil {
			return err
		}
		return checkErr
	}

	if checkErr != nil {
		return checkErr
	}
	r.Success(fmt.Sprintf("%s can be merged into %s", filepath.Base(source), filepath.Base(destination)))
	return nil
}
