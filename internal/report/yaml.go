package report

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// ContentType returns the MIME content type.
func (f *YAMLFormatter) ContentType() string {
	return "application/yaml"
}

// Format converts the report to YAML.
func (f *YAMLFormatter) Format(r *Report) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML; %w", err)
	}
	return data, nil
}
