package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// ErrMissingCodec matches *MissingCodecError with errors.Is.
var ErrMissingCodec = errors.New("missing codec")

// Codec is the reader and exporter of one dialect. The engine only selects
// codecs; cell tokenization is up to the codec.
type Codec interface {
	// Read parses text into a notebook document.
	Read(text string) (map[string]any, error)
	// Export renders a notebook document as text.
	Export(notebook map[string]any) (string, error)
}

// MissingCodecError is returned when no codec is registered for a dialect.
type MissingCodecError struct {
	Dialect   string
	Available []string
}

func (e *MissingCodecError) Error() string {
	msg := fmt.Sprintf("no codec registered for dialect %q", e.Dialect)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf("\nAvailable codecs: %s", strings.Join(e.Available, ", "))
	}
	return msg
}

// Is reports whether target is ErrMissingCodec.
func (e *MissingCodecError) Is(target error) bool {
	return target == ErrMissingCodec
}

// SelectCodec returns the codec registered for the dialect of desc.
// Codecs are keyed by dialect name, so one codec serves every extension of
// its dialect.
func (e *Engine) SelectCodec(desc *dialect.Descriptor) (Codec, error) {
	if c, ok := e.codecs[desc.Name]; ok && c != nil {
		return c, nil
	}

	available := make([]string, 0, len(e.codecs))
	for name := range e.codecs {
		available = append(available, name)
	}
	sort.Strings(available)
	return nil, &MissingCodecError{Dialect: desc.Name, Available: available}
}
