package report

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{pretty: true}
}

// NewCompactJSONFormatter creates a JSON formatter without indentation.
func NewCompactJSONFormatter() *JSONFormatter {
	return &JSONFormatter{pretty: false}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// ContentType returns the MIME content type.
func (f *JSONFormatter) ContentType() string {
	return "application/json"
}

// Format converts the report to JSON.
func (f *JSONFormatter) Format(r *Report) ([]byte, error) {
	var data []byte
	var err error

	if f.pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON; %w", err)
	}

	return append(data, '\n'), nil
}
