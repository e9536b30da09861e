package ini

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits configuration text. Sections are separated by a blank line.
type Writer struct {
	w        *bufio.Writer
	sections int
	err      error
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Section starts a new [name] section.
func (w *Writer) Section(name string) {
	if w.sections > 0 {
		w.printf("\n")
	}
	w.sections++
	w.printf("[%s]\n", name)
}

// KeyValue writes one key=value line in the current section.
func (w *Writer) KeyValue(key, value string) {
	w.printf("%s=%s\n", key, value)
}

// Comment writes a ; comment line.
func (w *Writer) Comment(text string) {
	w.printf("; %s\n", text)
}

// Flush writes buffered data and returns the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to write configuration; %w", err)
	}
	return nil
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.w, format, args...); err != nil {
		w.err = fmt.Errorf("failed to write configuration; %w", err)
	}
}
