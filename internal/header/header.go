// Package header reads and writes the YAML header of text notebooks.
//
// A text notebook may open with a YAML block framed by "---" lines, each
// line behind the comment prefix of the script language:
//
//	#!/usr/bin/env python
//	# -*- coding: utf-8 -*-
//	# ---
//	# title: Analysis
//	# jupyter:
//	#   jupytext:
//	#     formats: ipynb,py:percent
//	# ---
//
// The "jupyter" entry holds the notebook metadata. Other entries are kept
// verbatim as extra header lines. A shebang line and an encoding cookie in
// front of the block are reported as jupytext.executable and
// jupytext.encoding.
package header

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	jupyterKey   = "jupyter"
	namespaceKey = "jupytext"
)

var (
	delimiterPattern = regexp.MustCompile(`^---\s*$`)
	jupyterPattern   = regexp.MustCompile(`^jupyter\s*:\s*$`)
	indentPattern    = regexp.MustCompile(`^\s`)
	blankPattern     = regexp.MustCompile(`^\s*$`)
)

// Header is the result of extracting a header from the lines of a document.
type Header struct {
	// Metadata is the content of the "jupyter" entry, plus the executable
	// and encoding lines under "jupytext". Never nil.
	Metadata map[string]any
	// Extra holds the non-jupyter header lines, uncommented.
	Extra []string
	// Found reports whether a complete YAML header was found.
	Found bool
	// Start is the index of the opening delimiter (after any shebang and
	// encoding lines).
	Start int
	// End is the index of the first body line: after the closing delimiter
	// and one blank line, if any. Without a header, End == Start.
	End int
}

// Extractor extracts headers. The zero value is ready to use.
type Extractor struct{}

// Extract reads the header of lines written with the given comment prefix
// ("" for markup documents).
func (Extractor) Extract(lines []string, prefix string) (map[string]any, int, error) {
	h, err := Extract(lines, prefix)
	if err != nil {
		return nil, 0, err
	}
	return h.Metadata, h.End, nil
}

// Extract reads the header of lines written with the given comment prefix.
func Extract(lines []string, prefix string) (*Header, error) {
	h := &Header{Metadata: map[string]any{}}

	comment := prefix
	if prefix == "#'" {
		comment = "#"
	}
	encodingPattern := regexp.MustCompile(`^[ \t\f]*` + regexp.QuoteMeta(comment) + `.*?coding[:=][ \t]*[-_.a-zA-Z0-9]+`)

	var jupyter []string
	inJupyter := false
	start, end := 0, -1

	for i, line := range lines {
		if i == 0 && comment != "" && strings.HasPrefix(line, comment+"!") {
			namespace(h.Metadata)["executable"] = line[len(comment)+1:]
			start = i + 1
			continue
		}
		if i == start && comment != "" {
			if encodingPattern.MatchString(line) {
				namespace(h.Metadata)["encoding"] = line
				start = i + 1
				continue
			}
		}

		if !strings.HasPrefix(line, prefix) {
			break
		}
		text := Uncomment(line, prefix)

		if i == start {
			if delimiterPattern.MatchString(text) {
				continue
			}
			break
		}
		if delimiterPattern.MatchString(text) {
			end = i
			break
		}

		if jupyterPattern.MatchString(text) {
			inJupyter = true
		} else if !indentPattern.MatchString(text) {
			inJupyter = false
		}

		if inJupyter {
			jupyter = append(jupyter, text)
		} else {
			h.Extra = append(h.Extra, text)
		}
	}

	h.Start, h.End = start, start
	if end < 0 {
		h.Extra = nil
		return h, nil
	}

	if len(jupyter) > 0 {
		var doc map[string]any
		if err := yaml.Unmarshal([]byte(strings.Join(jupyter, "\n")), &doc); err != nil {
			return nil, &ParseError{Line: start + 1, Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
		meta, ok := doc[jupyterKey].(map[string]any)
		if !ok && doc[jupyterKey] != nil {
			return nil, &ParseError{Line: start + 1, Message: "the jupyter entry must be a mapping"}
		}
		for k, v := range meta {
			if k == namespaceKey {
				if block, ok := v.(map[string]any); ok {
					for bk, bv := range block {
						namespace(h.Metadata)[bk] = bv
					}
					continue
				}
			}
			h.Metadata[k] = v
		}
	}

	h.Found = true
	h.End = end + 1
	if h.End < len(lines) && blankPattern.MatchString(Uncomment(lines[h.End], prefix)) {
		h.End++
	}
	return h, nil
}

// Render writes metadata and extra lines as a commented YAML header,
// including delimiters. It returns nil when there is nothing to write.
// The executable and encoding entries are not rendered: they belong to the
// lines in front of the header.
func Render(meta map[string]any, extra []string, prefix string) ([]string, error) {
	meta = withoutPreamble(meta)
	if len(meta) == 0 && len(extra) == 0 {
		return nil, nil
	}

	body := append([]string(nil), extra...)
	if len(meta) > 0 {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{jupyterKey: meta}); err != nil {
			return nil, fmt.Errorf("failed to encode header: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode header: %w", err)
		}
		body = append(body, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")...)
	}

	out := make([]string, 0, len(body)+2)
	out = append(out, Comment("---", prefix))
	for _, line := range body {
		out = append(out, Comment(line, prefix))
	}
	out = append(out, Comment("---", prefix))
	return out, nil
}

// Uncomment removes the comment prefix, and one following space, from line.
func Uncomment(line, prefix string) string {
	if prefix == "" {
		return line
	}
	if strings.HasPrefix(line, prefix+" ") {
		return line[len(prefix)+1:]
	}
	return strings.TrimPrefix(line, prefix)
}

// Comment puts the comment prefix in front of a line.
func Comment(line, prefix string) string {
	switch {
	case prefix == "":
		return line
	case line == "":
		return prefix
	default:
		return prefix + " " + line
	}
}

func namespace(meta map[string]any) map[string]any {
	block, ok := meta[namespaceKey].(map[string]any)
	if !ok {
		block = map[string]any{}
		meta[namespaceKey] = block
	}
	return block
}

func withoutPreamble(meta map[string]any) map[string]any {
	block, ok := meta[namespaceKey].(map[string]any)
	if !ok {
		return meta
	}
	_, hasExec := block["executable"]
	_, hasEnc := block["encoding"]
	if !hasExec && !hasEnc {
		return meta
	}

	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	trimmed := make(map[string]any, len(block))
	for k, v := range block {
		if k != "executable" && k != "encoding" {
			trimmed[k] = v
		}
	}
	if len(trimmed) == 0 {
		delete(out, namespaceKey)
	} else {
		out[namespaceKey] = trimmed
	}
	return out
}
