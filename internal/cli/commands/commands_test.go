package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/textnb/internal/cli/config"
	"github.com/leapstack-labs/textnb/pkg/version"
)

// execute runs cmd with args under the default configuration and returns
// its output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// executeWithOutput is like execute with an --output mode.
func executeWithOutput(t *testing.T, mode string, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	_, err := config.LoadConfig(writeProject(t, "output: "+mode+"\n"), nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return buf.String(), err
}

func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textnb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewFormatsCommand(), "formats", []string{"ext"}},
		{NewParseCommand(), "parse <specs>...", []string{"metadata"}},
		{NewSniffCommand(), "sniff <files>...", []string{"jobs"}},
		{NewCheckCommand(), "check <source> <destination>", nil},
		{NewMigrateCommand(), "migrate <file>", []string{"write"}},
		{NewRecordCommand(), "record <file> <ext> <dialect>", []string{"write"}},
		{NewWatchCommand(), "watch [dir]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestFormatsCommand(t *testing.T) {
	out, err := execute(t, NewFormatsCommand(), "--ext", "py")
	require.NoError(t, err)

	assert.Contains(t, out, "| .py | light | Python | # | 1.3 | 1.1 | * |")
	assert.Contains(t, out, "| .py | sphinx |")
	assert.NotContains(t, out, ".jl")
}

func TestFormatsCommand_JSON(t *testing.T) {
	out, err := executeWithOutput(t, "json", NewFormatsCommand(), "--ext", ".md")
	require.NoError(t, err)

	var infos []DialectInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "markdown", infos[0].Name)
	assert.True(t, infos[0].Markup)
	assert.True(t, infos[0].Default)
}

func TestFormatsCommand_UnknownExtension(t *testing.T) {
	_, err := execute(t, NewFormatsCommand(), "--ext", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".docx")
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, NewParseCommand(), "ipynb,nb.py:percent", "md:markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "| .py | percent | nb |")
	assert.Contains(t, out, "Compact form: ipynb,nb.py:percent,md")
}

func TestParseCommand_YAML(t *testing.T) {
	out, err := executeWithOutput(t, "yaml", NewParseCommand(), "py:light")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	assert.Equal(t, []map[string]any{{"extension": ".py", "format_name": "light"}}, records)
}

func TestParseCommand_AutoExtension(t *testing.T) {
	meta := writeFile(t, t.TempDir(), "nb.ipynb",
		`{"metadata": {"language_info": {"file_extension": ".jl"}}, "cells": []}`)

	out, err := execute(t, NewParseCommand(), "ipynb,auto:percent", "--metadata", meta)
	require.NoError(t, err)
	assert.Contains(t, out, "Compact form: ipynb,jl:percent")

	_, err = execute(t, NewParseCommand(), "auto:percent")
	require.NoError(t, err, "auto is a legitimate extension until resolved")
}

func TestParseCommand_Invalid(t *testing.T) {
	_, err := execute(t, NewParseCommand(), "ipynb,docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
}

func TestSniffCommand(t *testing.T) {
	dir := t.TempDir()
	percent := writeFile(t, dir, "a.py", "# %%\nx = 1\n")
	light := writeFile(t, dir, "b.py", "x = 1\n")
	hydrogen := writeFile(t, dir, "c.py", "# %%\n%matplotlib inline\n")

	out, err := execute(t, NewSniffCommand(), percent, light, hydrogen)
	require.NoError(t, err)

	assert.Contains(t, out, "| "+percent+" | percent | heuristic | 1.2 | 1 | 0 | 0 |")
	assert.Contains(t, out, "| "+light+" | light | default | 1.3 |")
	assert.Contains(t, out, "| "+hydrogen+" | hydrogen | heuristic |")
}

func TestSniffCommand_KeepsOrderAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.py", "b.R", "c.md", "d.sh"} {
		paths = append(paths, writeFile(t, dir, name, "x\n"))
	}
	missing := filepath.Join(dir, "missing.py")
	paths = append(paths, missing)

	out, err := executeWithOutput(t, "json", NewSniffCommand(), append(paths, "--jobs", "2")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 5 files")

	var reports []SniffReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 5)
	for i, rep := range reports {
		assert.Equal(t, paths[i], rep.Path)
	}
	assert.Equal(t, "spin", reports[1].Dialect)
	assert.Equal(t, "markdown", reports[2].Dialect)
	assert.NotEmpty(t, reports[4].Error)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	header := func(v string) string {
		return "# ---\n# jupyter:\n#   jupytext:\n#     text_representation:\n" +
			"#       extension: .py\n#       format_name: percent\n#       format_version: '" + v + "'\n# ---\n"
	}
	ok := writeFile(t, dir, "ok.py", header("1.1"))
	tooNew := writeFile(t, dir, "new.py", header("1.9"))
	dest := filepath.Join(dir, "nb.ipynb")

	out, err := execute(t, NewCheckCommand(), ok, dest)
	require.NoError(t, err)
	assert.Contains(t, out, "ok.py can be merged into nb.ipynb")

	_, err = execute(t, NewCheckCommand(), tooNew, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, version.ErrMergeUnsafe)

	_, err = execute(t, NewCheckCommand(), dest, ok)
	assert.NoError(t, err, "notebook sources are never checked")
}

func TestCheckCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "nb.py", "# %%\nx = 1\n")

	out, err := executeWithOutput(t, "json", NewCheckCommand(), src, filepath.Join(dir, "nb.ipynb"))
	require.NoError(t, err)

	var result CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Safe)
	assert.Empty(t, result.Reason)
}

func TestMigrateCommand_MetadataFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "meta.json", `{"jupytext_formats": "ipynb,py", "kernelspec": {"name": "python3"}}`)

	out, err := execute(t, NewMigrateCommand(), path)
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, map[string]any{"formats": "ipynb,py"}, meta["jupytext"])
	assert.NotContains(t, meta, "jupytext_formats")
}

func TestMigrateCommand_TOMLFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "meta.toml", "jupytext_formats = \"ipynb,py:percent\"\n\n[kernelspec]\nname = \"python3\"\n")

	_, err := execute(t, NewMigrateCommand(), path, "--write")
	require.NoError(t, err)

	var meta map[string]any
	_, err = toml.DecodeFile(path, &meta)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"formats": "ipynb,py:percent"}, meta["jupytext"])
	assert.Equal(t, map[string]any{"name": "python3"}, meta["kernelspec"])
}

func TestMigrateCommand_WriteNotebook(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nb.ipynb",
		`{"cells": [], "metadata": {"jupytext": {"metadata_filter": {"notebook": "-all"}}}, "nbformat": 4}`)

	_, err := execute(t, NewMigrateCommand(), path, "--write")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var nb map[string]any
	require.NoError(t, json.Unmarshal(content, &nb))
	assert.EqualValues(t, 4, nb["nbformat"], "the rest of the notebook is kept")
	assert.Equal(t, map[string]any{"notebook_metadata_filter": "-all"}, nb["metadata"].(map[string]any)["jupytext"])
}

func TestMigrateCommand_TextNotebook(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nb.py",
		"# ---\n# jupyter:\n#   jupytext_formats: ipynb,py\n# ---\n\nx = 1\n")

	_, err := execute(t, NewMigrateCommand(), path, "-w")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# ---\n# jupyter:\n#   jupytext:\n#     formats: ipynb,py\n# ---\n\nx = 1\n", string(content))

	out, err := execute(t, NewMigrateCommand(), path, "-w")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestMigrateCommand_UnsupportedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "hello")
	_, err := execute(t, NewMigrateCommand(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metadata file")
}

func TestRecordCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "meta.yaml", "jupytext:\n  formats: ipynb,py:light\n")

	out, err := execute(t, NewRecordCommand(), path, "py", "percent")
	require.NoError(t, err)
	assert.Contains(t, out, "formats: ipynb,py:percent")

	_, err = execute(t, NewRecordCommand(), path, "md", "markdown", "--write")
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "formats: ipynb,py:light,md")
}

func TestRecordCommand_UnknownDialect(t *testing.T) {
	path := writeFile(t, t.TempDir(), "meta.json", `{}`)
	_, err := execute(t, NewRecordCommand(), path, "py", "nosuch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nosuch")
}

func TestNotebookWatcher_Changed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "nb.py", "x = 1\n")
	writeFile(t, dir, "notes.txt", "hello")

	cfg := config.DefaultConfig()
	eng, err := cfg.Project().NewEngine(nil)
	require.NoError(t, err)

	w := newNotebookWatcher(eng)
	result, err := w.seed(dir)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, 1, result.Skipped)

	assert.False(t, w.changed(path), "same content")
	require.NoError(t, os.WriteFile(path, []byte("# %%\nx = 1\n"), 0600))
	assert.True(t, w.changed(path))
	assert.False(t, w.changed(path), "already seen")

	assert.False(t, w.changed(filepath.Join(dir, "notes.txt")), "not a text notebook")

	require.NoError(t, os.Remove(path))
	assert.False(t, w.changed(path))
}

func TestNotebookWatcher_Loop(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "x = 1\n")
	b := writeFile(t, dir, "b.py", "y = 1\n")

	eng, err := config.DefaultConfig().Project().NewEngine(nil)
	require.NoError(t, err)
	w := newNotebookWatcher(eng)
	_, err = w.seed(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("# %%\nx = 1\n"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("# %%\ny = 1\n"), 0600))

	events := make(chan fsnotify.Event, 8)
	errs := make(chan error)
	for _, p := range []string{a, b, a, b} {
		events <- fsnotify.Event{Name: p, Op: fsnotify.Write}
	}

	var active, overlaps int32
	var stopped atomic.Bool
	reports := make(chan SniffReport, 4)
	report := func(rep SniffReport) {
		assert.False(t, stopped.Load(), "report after loop returned")
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		reports <- rep
	}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		w.loop(ctx, watchSource{Events: events, Errors: errs}, report, func(string, ...any) {})
		stopped.Store(true)
		close(finished)
	}()

	var got []string
	for len(got) < 2 {
		select {
		case rep := <-reports:
			assert.Equal(t, "percent", rep.Dialect)
			got = append(got, filepath.Base(rep.Path))
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reports")
		}
	}
	sort.Strings(got)
	assert.Equal(t, []string{"a.py", "b.py"}, got)

	cancel()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not return")
	}

	assert.Zero(t, atomic.LoadInt32(&overlaps), "reports never run concurrently")
	assert.Empty(t, reports, "each file is reported once")
}

func TestNotebookWatcher_LoopStopsWhenSourceCloses(t *testing.T) {
	eng, err := config.DefaultConfig().Project().NewEngine(nil)
	require.NoError(t, err)
	w := newNotebookWatcher(eng)

	events := make(chan fsnotify.Event)
	close(events)

	finished := make(chan struct{})
	go func() {
		w.loop(context.Background(), watchSource{Events: events}, func(SniffReport) {
			t.Error("unexpected report")
		}, func(string, ...any) {})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not return")
	}
}
