package engine

// discovery.go - finding text notebooks on disk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// Document is a text notebook found on disk.
type Document struct {
	Path string
	Ext  string
	Hash string // sha256 of the content
}

// DiscoveryResult lists the documents found under a directory.
type DiscoveryResult struct {
	Documents []Document
	Skipped   int // files with other extensions

	// Errors (non-fatal)
	Errors []DiscoveryError

	Duration time.Duration
}

// DiscoveryError represents a non-fatal error during discovery.
type DiscoveryError struct {
	Path    string
	Message string
}

// HasErrors returns true if any errors occurred.
func (r *DiscoveryResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a human-readable summary.
func (r *DiscoveryResult) Summary() string {
	return fmt.Sprintf("Documents: %d (%d other files skipped, %d errors) | Duration: %s",
		len(r.Documents), r.Skipped, len(r.Errors), r.Duration.Round(time.Millisecond))
}

// IsTextNotebook reports whether path has the extension of a registered
// text dialect.
func (e *Engine) IsTextNotebook(path string) bool {
	ext := filepath.Ext(path)
	return ext != "" && ext != dialect.NotebookExtension && e.reg.IsNotebookExtension(ext)
}

// Discover walks root and returns every text notebook below it, sorted by
// path. Hidden directories are skipped.
func (e *Engine) Discover(root string) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("cannot discover documents: %w", err)
	}

	e.logger.Debug("discovering documents", "root", root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Errors = append(result.Errors, DiscoveryError{Path: path, Message: walkErr.Error()})
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.IsTextNotebook(path) {
			result.Skipped++
			return nil
		}

		hash, err := HashFile(path)
		if err != nil {
			result.Errors = append(result.Errors, DiscoveryError{Path: path, Message: err.Error()})
			return nil
		}
		result.Documents = append(result.Documents, Document{Path: path, Ext: filepath.Ext(path), Hash: hash})
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Path < result.Documents[j].Path
	})
	result.Duration = time.Since(start)

	e.logger.Debug("discovery completed",
		"documents", len(result.Documents),
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// HashFile returns the sha256 of a file's content.
func HashFile(path string) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the caller's own tree
	if err != nil {
		return "", err
	}
	return computeHash(content), nil
}

func computeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
