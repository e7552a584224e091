// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// Sample project layout written by SetupTestProject, relative to its root.
const (
	PercentScript = "notebooks/analysis.py"
	LightScript   = "notebooks/plain.py"
	LegacyScript  = "notebooks/legacy.py"
	Markdown      = "notebooks/report.md"
	Notebook      = "notebooks/analysis.ipynb"
)

// SetupTestProject creates a temporary project with a textnb.yaml and a few
// text notebooks.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	dirs := []string{
		filepath.Join(tmpDir, "notebooks"),
		filepath.Join(tmpDir, ".ipynb_checkpoints"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	files := map[string]string{
		"textnb.yaml": `default_formats: ipynb,py:percent
languages:
  - extension: .ts
    language: typescript
    comment: "//"
`,
		PercentScript: `# %% [markdown]
# # Analysis

# %%
x = 1
`,
		LightScript: `x = 1
print(x)
`,
		LegacyScript: `# ---
# jupyter:
#   jupytext_formats: ipynb,py:light
#   jupytext_format_version: '1.1'
# ---

x = 1
`,
		Markdown: `# Report

Some text.
`,
		Notebook: `{
 "cells": [],
 "metadata": {
  "jupytext": {"formats": "ipynb,py:percent"},
  "kernelspec": {"name": "python3", "language": "python", "display_name": "Python 3"}
 },
 "nbformat": 4,
 "nbformat_minor": 5
}
`,
		".ipynb_checkpoints/analysis-checkpoint.py": "# %%\nx = 1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
