package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// quotedAfter feeds lines one by one and records IsQuoted after each.
func quotedAfter(tr *Tracker, lines ...string) []bool {
	out := make([]bool, len(lines))
	for i, line := range lines {
		tr.ReadLine(line)
		out[i] = tr.IsQuoted()
	}
	return out
}

func TestTracker_Python(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []bool
	}{
		{
			name:  "plain code",
			lines: []string{"x = 1", "print(x)"},
			want:  []bool{false, false},
		},
		{
			name:  "closed strings",
			lines: []string{`a = "text # not a comment"`, `b = 'it''s'`},
			want:  []bool{false, false},
		},
		{
			name:  "docstring over several lines",
			lines: []string{`"""Start`, "# %%", `end"""`, "# %%"},
			want:  []bool{true, true, false, false},
		},
		{
			name:  "single quoted triple",
			lines: []string{"s = '''", "In[1]:", "'''"},
			want:  []bool{true, true, false},
		},
		{
			name:  "other quote inside triple",
			lines: []string{`"""`, `it's "here"`, `"""`},
			want:  []bool{true, true, false},
		},
		{
			name:  "unterminated plain quote ends with the line",
			lines: []string{`s = "open`, "x = 1"},
			want:  []bool{false, false},
		},
		{
			name:  "escaped quote",
			lines: []string{`s = "a \" b"`, `t = """x\"""`, `"""`},
			want:  []bool{false, true, false},
		},
		{
			name:  "quote after comment is ignored",
			lines: []string{`x = 1  # don't`, `# """`},
			want:  []bool{false, false},
		},
		{
			name:  "triple opened and closed on one line",
			lines: []string{`doc = """one line"""`},
			want:  []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quotedAfter(New("python"), tt.lines...))
		})
	}
}

func TestTracker_R(t *testing.T) {
	tr := New("R")
	assert.Equal(t,
		[]bool{true, true, false, false},
		quotedAfter(tr, `x <- "multi`, "# %%", `line"`, "# %%"),
	)

	tr = New("R")
	assert.Equal(t, []bool{false}, quotedAfter(tr, `s <- '''`+`'`))
}

func TestTracker_OtherLanguagesUsePythonRules(t *testing.T) {
	for _, language := range []string{"julia", "bash", "c++", ""} {
		t.Run(language, func(t *testing.T) {
			tr := New(language)
			assert.Equal(t,
				[]bool{true, true, false, false},
				quotedAfter(tr, `x = """`, "# %%", `"""`, "y = 1"),
			)
		})
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := New("python")
	tr.ReadLine(`"""`)
	assert.True(t, tr.IsQuoted())
	tr.Reset()
	assert.False(t, tr.IsQuoted())
}
