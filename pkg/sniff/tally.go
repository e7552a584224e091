package sniff

import (
	"regexp"
	"strings"
)

// Dialect names the heuristic can produce.
const (
	Percent  = "percent"
	Hydrogen = "hydrogen"
	Sphinx   = "sphinx"
)

// sectionBreak opens a sphinx-gallery text block.
var sectionBreak = strings.Repeat("#", 20)

var magicPattern = regexp.MustCompile(`^(%|%%|%%%)[a-zA-Z]`)

// Tally counts the markers seen while scanning a script.
type Tally struct {
	DoublePercent int // "# %%" cell markers, and legacy "# <codecell>" / "# In[1]:"
	Magic         int // uncommented "%magic" lines
	SectionBreak  int // lines opening with twenty '#', .py only

	Lines  int // lines read
	Quoted int // lines skipped inside string literals
}

// markers holds the cell marker patterns for one comment prefix.
type markers struct {
	exact    *regexp.Regexp
	spaced   *regexp.Regexp
	nbscript *regexp.Regexp
}

func newMarkers(comment string) markers {
	c := regexp.QuoteMeta(comment)
	return markers{
		exact:    regexp.MustCompile(`^` + c + `( %%|%%)$`),
		spaced:   regexp.MustCompile(`^` + c + `( %%|%%)\s`),
		nbscript: regexp.MustCompile(`^` + c + `( <codecell>| In\[[0-9 ]*\]:?)`),
	}
}

func (m markers) cell(line string) bool {
	return m.exact.MatchString(line) || m.spaced.MatchString(line) || m.nbscript.MatchString(line)
}

// Scan reads lines once and counts markers, ignoring lines that end inside
// a string literal according to tracker. A nil tracker sees no literals.
func Scan(lines []string, ext, comment string, tracker QuoteTracker) Tally {
	var t Tally
	m := newMarkers(comment)
	countBreaks := ext == ".py"

	for _, line := range lines {
		t.Lines++
		if tracker != nil {
			tracker.ReadLine(line)
			if tracker.IsQuoted() {
				t.Quoted++
				continue
			}
		}

		if comment != "" && m.cell(line) {
			t.DoublePercent++
		}
		if magicPattern.MatchString(line) && (comment == "" || !strings.HasPrefix(line, comment)) {
			t.Magic++
		}
		if countBreaks && strings.HasPrefix(line, sectionBreak) {
			t.SectionBreak++
		}
	}
	return t
}

// Decide picks a dialect from a tally. It reports false when the tally is
// inconclusive and the extension's default dialect applies.
func Decide(t Tally) (string, bool) {
	if t.DoublePercent >= 1 {
		if t.Magic > 0 {
			return Hydrogen, true
		}
		return Percent, true
	}
	if t.SectionBreak >= 2 {
		return Sphinx, true
	}
	return "", false
}
