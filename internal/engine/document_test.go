package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/textnb/pkg/dialect"
)

func TestMigrateHeader(t *testing.T) {
	e := newTestEngine(t, Config{})

	text := lines(
		"#!/usr/bin/env python",
		"# ---",
		"# title: Demo",
		"# jupyter:",
		"#   jupytext_formats: ipynb,py:percent",
		"# ---",
		"",
		"# %%",
		"x = 1",
	)

	got, changed, err := e.MigrateHeader(text, ".py")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lines(
		"#!/usr/bin/env python",
		"# ---",
		"# title: Demo",
		"# jupyter:",
		"#   jupytext:",
		"#     formats: ipynb,py:percent",
		"# ---",
		"",
		"# %%",
		"x = 1",
	), got)

	again, changed, err := e.MigrateHeader(got, ".py")
	require.NoError(t, err)
	assert.False(t, changed, "current headers are left alone")
	assert.Equal(t, got, again)
}

func TestMigrateHeader_Markdown(t *testing.T) {
	e := newTestEngine(t, Config{})

	text := lines(
		"---",
		"jupyter:",
		"  jupytext_format_version: '1.0'",
		"---",
		"# Title",
	)

	got, changed, err := e.MigrateHeader(text, ".md")
	require.NoError(t, err)
	assert.True(t, changed)

	meta, err := e.ReadMetadata(got, ".md")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"jupytext": map[string]any{
			"text_representation": map[string]any{"format_version": "1.0"},
		},
	}, meta)
	assert.True(t, strings.HasSuffix(got, "---\n# Title\n"))
}

func TestMigrateHeader_Unchanged(t *testing.T) {
	e := newTestEngine(t, Config{})

	text := lines("# %%", "x = 1")
	got, changed, err := e.MigrateHeader(text, ".py")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, text, got)

	_, _, err = e.MigrateHeader(text, ".docx")
	assert.ErrorIs(t, err, dialect.ErrUnknownExtension)
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}
