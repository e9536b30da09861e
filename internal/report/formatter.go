package report

import (
	"fmt"
	"slices"
	"strings"
)

// Formatter renders a report into a specific output format.
type Formatter interface {
	// Format converts the report to the output format.
	Format(r *Report) ([]byte, error)

	// Name returns the formatter name used by --format.
	Name() string

	// ContentType returns the MIME content type.
	ContentType() string
}

var formatters = map[string]func() Formatter{
	"text": func() Formatter { return NewTextFormatter() },
	"json": func() Formatter { return NewJSONFormatter() },
	"yaml": func() Formatter { return NewYAMLFormatter() },
	"toml": func() Formatter { return NewTOMLFormatter() },
}

// Names returns the accepted format names, sorted.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ForName returns the formatter registered under name.
func ForName(name string) (Formatter, error) {
	mk, ok := formatters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown format %q; must be one of: %s", name, strings.Join(Names(), ", "))
	}
	return mk(), nil
}
