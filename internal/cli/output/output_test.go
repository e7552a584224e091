package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	var out bytes.Buffer

	assert.Equal(t, ModeMarkdown, NewRenderer(&out, &out, ModeAuto).EffectiveMode(), "buffers are not terminals")
	assert.Equal(t, ModeMarkdown, NewRenderer(&out, &out, "").EffectiveMode())
	assert.Equal(t, ModeText, NewRenderer(&out, &out, ModeText).EffectiveMode())
	assert.True(t, NewRenderer(&out, &out, ModeYAML).Structured())
	assert.False(t, NewRenderer(&out, &out, ModeText).Structured())
}

func TestRenderer_Table(t *testing.T) {
	rows := [][]string{{".py", "percent"}, {".md", "markdown"}}

	var md bytes.Buffer
	NewRenderer(&md, &md, ModeMarkdown).Table([]string{"Extension", "Dialect"}, rows)
	assert.Contains(t, strings.ToLower(md.String()), "| extension | dialect |")
	assert.Contains(t, md.String(), "| .py | percent |")

	var text bytes.Buffer
	NewRenderer(&text, &text, ModeText).Table([]string{"Extension", "Dialect"}, rows)
	assert.Contains(t, text.String(), "┌")
	assert.Contains(t, text.String(), "percent")
}

func TestRenderer_Structure(t *testing.T) {
	v := map[string]any{"dialect": "percent"}

	var js bytes.Buffer
	require.NoError(t, NewRenderer(&js, &js, ModeJSON).Structure(v))
	assert.JSONEq(t, `{"dialect":"percent"}`, js.String())

	var ym bytes.Buffer
	require.NoError(t, NewRenderer(&ym, &ym, ModeYAML).Structure(v))
	assert.Equal(t, "dialect: percent\n", ym.String())
}

func TestRenderer_Messages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Header(1, "Dialects")
	r.Success("done")
	r.Warning("careful")
	r.Error("broken")

	assert.Contains(t, out.String(), "Dialects")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ broken")
	assert.Equal(t, "plain", r.Muted("plain"), "no color outside a terminal")

	var md bytes.Buffer
	NewRenderer(&md, &md, ModeMarkdown).Header(2, "Sniff")
	assert.Equal(t, "## Sniff\n\n", md.String())
}
