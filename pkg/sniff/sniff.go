// Package sniff guesses the dialect of a text notebook from its content.
//
// Explicit metadata in the document header always wins. Otherwise the
// script is scanned once for cell markers (Scan) and the resulting Tally is
// turned into a dialect by a pure decision (Decide). When nothing is
// conclusive the registry default for the extension applies.
package sniff

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/textnb/internal/header"
	"github.com/leapstack-labs/textnb/internal/quote"
	"github.com/leapstack-labs/textnb/pkg/dialect"
	"github.com/leapstack-labs/textnb/pkg/metadata"
	"github.com/leapstack-labs/textnb/pkg/resolve"
)

// HeaderExtractor reads the metadata header of a document. It returns the
// metadata and the index of the first body line.
type HeaderExtractor interface {
	Extract(lines []string, prefix string) (map[string]any, int, error)
}

// QuoteTracker reports, line by line, whether a script is inside a string
// literal.
type QuoteTracker interface {
	ReadLine(line string)
	IsQuoted() bool
}

// TrackerFactory creates a fresh QuoteTracker for a language tag.
type TrackerFactory func(language string) QuoteTracker

// Source says where a sniffed dialect came from.
type Source string

// Sources.
const (
	SourceMetadata  Source = "metadata"
	SourceHeuristic Source = "heuristic"
	SourceDefault   Source = "default"
)

// unmanagedKeys may appear in the jupytext block without making the header
// an explicit declaration.
var unmanagedKeys = map[string]bool{
	metadata.KeyEncoding:     true,
	metadata.KeyExecutable:   true,
	metadata.KeyMainLanguage: true,
}

// Result is the outcome of sniffing one document.
type Result struct {
	Dialect  string
	Source   Source
	Tally    Tally
	Metadata map[string]any // migrated header metadata, never nil
}

// Config configures a Sniffer.
type Config struct {
	Registry  *dialect.Registry // required
	Extractor HeaderExtractor   // defaults to header.Extractor
	Trackers  TrackerFactory    // defaults to quote.New
}

// Sniffer guesses dialects. It holds no per-document state and may be shared.
type Sniffer struct {
	reg       *dialect.Registry
	resolver  *resolve.Resolver
	extractor HeaderExtractor
	trackers  TrackerFactory
}

// New creates a sniffer.
func New(cfg Config) *Sniffer {
	s := &Sniffer{
		reg:       cfg.Registry,
		resolver:  resolve.New(cfg.Registry),
		extractor: cfg.Extractor,
		trackers:  cfg.Trackers,
	}
	if s.extractor == nil {
		s.extractor = header.Extractor{}
	}
	if s.trackers == nil {
		s.trackers = func(language string) QuoteTracker { return quote.New(language) }
	}
	return s
}

// ReadMetadata returns the migrated header metadata of text. R scripts
// without a "#" header are read again with the "#'" prefix.
func (s *Sniffer) ReadMetadata(text, ext string) (map[string]any, error) {
	ext = dialect.NormalizeExtension(ext)
	lines := SplitLines(text)

	prefix := "#"
	if s.reg.IsMarkup(ext) {
		prefix = ""
	} else if comment := s.reg.Comment(ext); comment != "" {
		prefix = comment
	}

	meta, _, err := s.extractor.Extract(lines, prefix)
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 && (ext == ".R" || ext == ".r") {
		if meta, _, err = s.extractor.Extract(lines, "#'"); err != nil {
			return nil, err
		}
	}
	return metadata.Migrate(meta), nil
}

// ReadFormat returns the dialect declared by the header of text, or "" when
// the header declares none. It never sniffs.
func (s *Sniffer) ReadFormat(text, ext string) (string, error) {
	meta, err := s.ReadMetadata(text, ext)
	if err != nil {
		return "", err
	}
	return s.resolver.ResolveDialect(meta, ext, nil, false)
}

// Sniff returns the dialect of text, a document with extension ext.
func (s *Sniffer) Sniff(text, ext string) (Result, error) {
	ext = dialect.NormalizeExtension(ext)

	meta, err := s.ReadMetadata(text, ext)
	if err != nil {
		return Result{}, err
	}
	res := Result{Metadata: meta}

	if Explicit(meta) {
		name, err := s.resolver.ResolveDialect(meta, ext, nil, true)
		if err != nil {
			return Result{}, err
		}
		if name != "" {
			res.Dialect, res.Source = name, SourceMetadata
			return res, nil
		}
	}

	if lang, ok := s.reg.Script(ext); ok {
		res.Tally = Scan(SplitLines(text), ext, lang.Comment, s.trackers(lang.Language))
		if name, ok := Decide(res.Tally); ok {
			if _, err := s.reg.Resolve(ext, name); err == nil {
				res.Dialect, res.Source = name, SourceHeuristic
				return res, nil
			}
		}
	}

	d, err := s.reg.Default(ext)
	if err != nil {
		return Result{}, fmt.Errorf("cannot sniff %s: %w", ext, err)
	}
	res.Dialect, res.Source = d.Name, SourceDefault
	return res, nil
}

// Explicit reports whether header metadata declares anything beyond the
// unmanaged encoding, executable and main_language entries.
func Explicit(meta map[string]any) bool {
	for key := range meta {
		if key != metadata.Namespace {
			return true
		}
	}
	for key := range metadata.RawBlock(meta) {
		if !unmanagedKeys[key] {
			return true
		}
	}
	return false
}

// SplitLines splits text into lines, accepting both \n and \r\n endings.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
