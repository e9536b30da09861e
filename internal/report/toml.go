package report

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFormatter formats reports as TOML.
type TOMLFormatter struct{}

// NewTOMLFormatter creates a new TOML formatter.
func NewTOMLFormatter() *TOMLFormatter {
	return &TOMLFormatter{}
}

// Name returns the formatter name.
func (f *TOMLFormatter) Name() string {
	return "toml"
}

// ContentType returns the MIME content type.
func (f *TOMLFormatter) ContentType() string {
	return "application/toml"
}

// Format converts the report to TOML. Components and instances become
// arrays of tables.
func (f *TOMLFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode TOML; %w", err)
	}
	return buf.Bytes(), nil
}
