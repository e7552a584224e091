package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/textnb/pkg/dialect"
	"github.com/leapstack-labs/textnb/pkg/formats"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return New(dialect.Builtin())
}

func mustParse(t *testing.T, r *Resolver, csv string) formats.List {
	t.Helper()
	list, err := r.Parser().ParseMany(csv)
	require.NoError(t, err)
	return list
}

func TestResolveDialect_TextRepresentationWins(t *testing.T) {
	r := newTestResolver(t)
	meta := map[string]any{
		"jupytext": map[string]any{
			"formats": "ipynb,py:light",
			"text_representation": map[string]any{
				"extension":   ".py",
				"format_name": "percent",
			},
		},
	}

	for _, explicit := range []bool{false, true} {
		name, err := r.ResolveDialect(meta, ".py", nil, explicit)
		require.NoError(t, err)
		assert.Equal(t, "percent", name)
	}

	// the text representation only speaks for its own extension
	name, err := r.ResolveDialect(meta, ".R", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "spin", name)

	// a formats list for .py does not outrank it either
	meta["jupytext"].(map[string]any)["formats"] = "py:hydrogen"
	name, err = r.ResolveDialect(meta, ".py", mustParse(t, r, "py:sphinx"), true)
	require.NoError(t, err)
	assert.Equal(t, "percent", name)
}

func TestResolveDialect_FormatsList(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		meta     map[string]any
		ext      string
		defaults string
		explicit bool
		want     string
	}{
		{
			name: "declared entry",
			meta: map[string]any{"jupytext": map[string]any{"formats": "ipynb,py:hydrogen"}},
			ext:  ".py",
			want: "hydrogen",
		},
		{
			name: "first match wins",
			meta: map[string]any{"jupytext": map[string]any{"formats": "py:sphinx,pct.py:percent"}},
			ext:  ".py",
			want: "sphinx",
		},
		{
			name: "prefixed entry matches the extension",
			meta: map[string]any{"jupytext": map[string]any{"formats": "ipynb,pct.py:percent"}},
			ext:  ".py",
			want: "percent",
		},
		{
			name:     "defaults used without declared formats",
			meta:     map[string]any{},
			ext:      ".jl",
			defaults: "ipynb,jl:percent",
			want:     "percent",
		},
		{
			name:     "declared formats replace defaults",
			meta:     map[string]any{"jupytext": map[string]any{"formats": "ipynb,md"}},
			ext:      ".py",
			defaults: "py:percent",
			want:     "",
		},
		{
			name: "auto resolves through the kernel",
			meta: map[string]any{
				"jupytext":      map[string]any{"formats": "ipynb,auto:percent"},
				"language_info": map[string]any{"file_extension": ".r"},
			},
			ext:  ".R",
			want: "percent",
		},
		{
			name: "nameless entry answers when not explicit",
			meta: map[string]any{"jupytext": map[string]any{"formats": "py,py:percent"}},
			ext:  ".py",
			want: "",
		},
		{
			name:     "nameless entry skipped when explicit",
			meta:     map[string]any{"jupytext": map[string]any{"formats": "py,py:percent"}},
			ext:      ".py",
			explicit: true,
			want:     "percent",
		},
		{
			name: "structured formats list",
			meta: map[string]any{"jupytext": map[string]any{"formats": []any{
				"ipynb",
				map[string]any{"extension": ".py", "format_name": "percent", "prefix": "scripts/"},
			}}},
			ext:  ".py",
			want: "percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var defaults formats.List
			if tt.defaults != "" {
				defaults = mustParse(t, r, tt.defaults)
			}
			got, err := r.ResolveDialect(tt.meta, tt.ext, defaults, tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDialect_Fallbacks(t *testing.T) {
	r := newTestResolver(t)

	name, err := r.ResolveDialect(nil, ".py", nil, false)
	require.NoError(t, err)
	assert.Empty(t, name, "nothing declared, caller sniffs")

	name, err = r.ResolveDialect(nil, ".py", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "light", name)

	name, err = r.ResolveDialect(nil, "R", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "spin", name)

	for _, ext := range []string{".md", ".Rmd"} {
		name, err = r.ResolveDialect(nil, ext, nil, true)
		require.NoError(t, err)
		assert.Empty(t, name, "markup extensions have no dialect name")
	}

	_, err = r.ResolveDialect(nil, ".docx", nil, true)
	assert.True(t, errors.Is(err, dialect.ErrUnknownExtension))
}

func TestResolveDialect_InvalidFormats(t *testing.T) {
	r := newTestResolver(t)
	meta := map[string]any{"jupytext": map[string]any{"formats": "ipynb,docx"}}

	_, err := r.ResolveDialect(meta, ".py", nil, false)
	assert.True(t, errors.Is(err, formats.ErrInvalidFormatSpec))
}

func TestDescriptor(t *testing.T) {
	r := newTestResolver(t)

	d, err := r.Descriptor(map[string]any{"jupytext": map[string]any{"formats": "ipynb,py:percent"}}, ".py", nil)
	require.NoError(t, err)
	assert.Equal(t, "percent", d.Name)

	d, err = r.Descriptor(nil, ".md", nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", d.Name)

	// .py has light, percent, hydrogen and sphinx
	_, err = r.Descriptor(nil, ".py", nil)
	var ambiguous *dialect.AmbiguousFormatNameError
	require.True(t, errors.As(err, &ambiguous))
	assert.ElementsMatch(t, []string{"light", "percent", "hydrogen", "sphinx"}, ambiguous.Candidates)
}

func TestRecordDialect(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name    string
		formats any
		ext     string
		dialect string
		want    any
	}{
		{"replace in place", "ipynb,py:light,md", ".py", "percent", "ipynb,py:percent,md"},
		{"append when absent", "ipynb,md", ".py", "percent", "ipynb,md,py:percent"},
		{"drop later duplicates", "py:light,ipynb,py:sphinx", "py", "hydrogen", "py:hydrogen,ipynb"},
		{"prefix is part of the path", "ipynb,pct.py:percent,py:light", "pct.py", "hydrogen", "ipynb,pct.py:hydrogen,py:light"},
		{"markup name not rendered", "ipynb", ".md", "markdown", "ipynb,md"},
		{"no formats yet", nil, ".R", "spin", "R:spin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := map[string]any{}
			if tt.formats != nil {
				block["formats"] = tt.formats
			}
			meta := map[string]any{"jupytext": block}

			require.NoError(t, r.RecordDialect(meta, tt.ext, tt.dialect))
			assert.Equal(t, tt.want, meta["jupytext"].(map[string]any)["formats"])

			name, err := r.ResolveDialect(meta, tt.ext, nil, true)
			require.NoError(t, err)
			if !dialect.Builtin().IsMarkup(tt.ext) {
				assert.Equal(t, tt.dialect, name)
			}
		})
	}
}

func TestRecordDialect_StructuredList(t *testing.T) {
	r := newTestResolver(t)
	meta := map[string]any{"jupytext": map[string]any{"formats": []any{
		"ipynb",
		map[string]any{"extension": ".py", "format_name": "light", "suffix": ".nb"},
	}}}

	require.NoError(t, r.RecordDialect(meta, ".py", "percent"))
	assert.Equal(t, []any{
		map[string]any{"extension": ".ipynb"},
		map[string]any{"extension": ".py", "format_name": "percent", "suffix": ".nb"},
	}, meta["jupytext"].(map[string]any)["formats"])
}

func TestRecordDialect_Errors(t *testing.T) {
	r := newTestResolver(t)

	assert.ErrorIs(t, r.RecordDialect(nil, ".py", "light"), ErrNoMetadata)
	assert.ErrorIs(t, r.RecordDialect(map[string]any{}, ".docx", "light"), formats.ErrInvalidFormatSpec)
	assert.Error(t, r.RecordDialect(map[string]any{"jupytext": "oops"}, ".py", "light"))

	meta := map[string]any{}
	require.NoError(t, r.RecordDialect(meta, ".py", "light"))
	assert.Equal(t, map[string]any{"jupytext": map[string]any{"formats": "py:light"}}, meta)
}
