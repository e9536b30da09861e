// Package ini reads and writes the flat key/value component configuration
// format: [section] headers followed by key=value lines.
//
// The parser streams entries to a callback instead of building a map, so a
// section name may repeat and every occurrence stays a separate section.
package ini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leefowlercu/compage/component"
)

// maxLineSize bounds a single configuration line.
const maxLineSize = 64 * 1024

// Entry is one parser event. A section header produces an entry with
// NewSection set and an empty Key; each key/value line produces an entry
// with NewSection unset.
type Entry struct {
	Section    string
	Key        string
	Value      string
	NewSection bool
	Line       int
}

// LineError describes a line the parser or the handler rejected.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParseError collects every rejected line of a stream.
type ParseError struct {
	Lines []LineError
}

func (e *ParseError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, l.Error())
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Unwrap exposes the line errors and component.ErrConfigParse to errors.Is.
func (e *ParseError) Unwrap() []error {
	errs := []error{component.ErrConfigParse}
	for _, l := range e.Lines {
		errs = append(errs, l.Err)
	}
	return errs
}

var (
	errUnterminatedSection = errors.New("unterminated section header")
	errEmptySection        = errors.New("empty section name")
	errMissingSeparator    = errors.New("expected key=value")
	errEmptyKey            = errors.New("empty key")
	errOutsideSection      = errors.New("key outside of any section")
)

// Parse reads r line by line and calls fn for every entry. Malformed lines
// and handler errors do not stop parsing; they are returned together as a
// *ParseError once the stream is exhausted. Read failures are returned as is.
func Parse(r io.Reader, fn func(Entry) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var (
		section string
		lineNo  int
		bad     []LineError
	)

	reject := func(err error) {
		bad = append(bad, LineError{Line: lineNo, Err: err})
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}

		if line[0] == '[' {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				reject(errUnterminatedSection)
				continue
			}
			name := strings.TrimSpace(line[1:end])
			if name == "" {
				reject(errEmptySection)
				continue
			}
			section = name
			if err := fn(Entry{Section: section, NewSection: true, Line: lineNo}); err != nil {
				reject(err)
			}
			continue
		}

		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			reject(errMissingSeparator)
			continue
		}
		key := strings.TrimSpace(line[:sep])
		if key == "" {
			reject(errEmptyKey)
			continue
		}
		if section == "" {
			reject(errOutsideSection)
			continue
		}

		value := stripInlineComment(strings.TrimSpace(line[sep+1:]))
		if err := fn(Entry{Section: section, Key: key, Value: value, Line: lineNo}); err != nil {
			reject(err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read configuration; %w", err)
	}

	if len(bad) > 0 {
		return &ParseError{Lines: bad}
	}
	return nil
}

// stripInlineComment drops a trailing " ;comment" from a value.
func stripInlineComment(value string) string {
	for i := 1; i < len(value); i++ {
		if value[i] == ';' && (value[i-1] == ' ' || value[i-1] == '\t') {
			return strings.TrimSpace(value[:i])
		}
	}
	return value
}
