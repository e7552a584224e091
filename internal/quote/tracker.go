// Package quote tracks string literals across the lines of a script.
//
// The tracker is fed one line at a time and reports whether the end of the
// last line read lies inside an open string literal. It only understands the
// quoting rules needed to tell code from string content: single and double
// quotes, Python triple quotes, backslash escapes and '#' comments.
package quote

// Tracker is a per-document string literal tracker. Use New.
type Tracker struct {
	multiline bool // plain quotes may span lines (R)
	triples   bool // triple quotes are recognized (Python)

	single byte // open plain quote, 0 when none
	triple byte // open triple quote, 0 when none
}

// New returns a tracker for a language tag ("python", "R", ...). R has its
// own rules; every other language is read with Python's.
func New(language string) *Tracker {
	if language == "R" {
		return &Tracker{multiline: true}
	}
	return &Tracker{triples: true}
}

// IsQuoted reports whether the last line read ended inside a string literal.
func (t *Tracker) IsQuoted() bool {
	return t.single != 0 || t.triple != 0
}

// ReadLine advances the tracker over one line (without its newline).
func (t *Tracker) ReadLine(line string) {
	for i := 0; i < len(line); i++ {
		c := line[i]

		if c == '\\' {
			// Escapes only matter inside literals, and skip the next byte.
			if t.IsQuoted() {
				i++
			}
			continue
		}

		if c == '#' && !t.IsQuoted() {
			break
		}

		if c != '"' && c != '\'' {
			continue
		}

		switch {
		case t.single != 0:
			if c == t.single {
				t.single = 0
			}
		case t.triple != 0:
			if c == t.triple && isTriple(line, i, c) {
				t.triple = 0
				i += 2
			}
		case t.triples && isTriple(line, i, c):
			t.triple = c
			i += 2
		default:
			t.single = c
		}
	}

	if !t.multiline {
		// An unterminated plain quote does not continue on the next line.
		t.single = 0
	}
}

// Reset forgets any open literal.
func (t *Tracker) Reset() {
	t.single, t.triple = 0, 0
}

func isTriple(line string, i int, c byte) bool {
	return i+2 < len(line) && line[i+1] == c && line[i+2] == c
}
