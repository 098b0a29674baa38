package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		valid  bool
	}{
		{FormatYAML, true},
		{FormatJSON, true},
		{FormatTable, true},
		{OutputFormat("dir"), false},
		{OutputFormat(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.format.Valid())
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YML", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"table", FormatTable, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidFormats(t *testing.T) {
	assert.Equal(t, []string{"table", "yaml", "json"}, ValidFormats())
	assert.Equal(t, "yaml", FormatYAML.String())
}
