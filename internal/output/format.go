package output

import (
	"fmt"
	"strings"
)

// OutputFormat selects how `r2x run` reports the finalized graph.
type OutputFormat string

const (
	// FormatTable prints a per-kind component count table.
	FormatTable OutputFormat = "table"

	// FormatYAML dumps the graph as YAML.
	FormatYAML OutputFormat = "yaml"

	// FormatJSON dumps the graph as JSON.
	FormatJSON OutputFormat = "json"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Valid checks if the output format is known.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses s case-insensitively. "yml" is accepted for YAML.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if !f.Valid() {
		return "", fmt.Errorf("unknown output format %q (valid: %s)", s, strings.Join(ValidFormats(), ", "))
	}
	return f, nil
}

// ValidFormats returns the accepted format names.
func ValidFormats() []string {
	return []string{"table", "yaml", "json"}
}
