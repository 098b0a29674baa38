package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.Color
		wantDim  bool
	}{
		{name: "applied returns green", status: StatusApplied, wantFG: colorGreen},
		{name: "valid returns green", status: StatusValid, wantFG: colorGreen},
		{name: "skipped returns yellow", status: StatusSkipped, wantFG: ColorYellow},
		{name: "absent returns yellow", status: StatusAbsent, wantFG: ColorYellow},
		{name: "unchanged returns faint", status: StatusUnchanged, wantDim: true},
		{name: "removed returns red", status: StatusRemoved, wantFG: colorRed},
		{name: "failed returns bold red", status: StatusFailed, wantBold: true, wantFG: colorBoldRed},
		{name: "unknown returns default unstyled", status: "unknown-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := statusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != "" {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatStatusLine(t *testing.T) {
	short := stripAnsi(FormatStatusLine("pass", "imports", StatusSkipped))
	long := stripAnsi(FormatStatusLine("pass", "pcm_defaults", StatusApplied))

	assert.True(t, strings.HasPrefix(short, "pass:imports"))
	assert.True(t, strings.HasSuffix(long, "applied"))
	assert.Equal(t, strings.Index(short, "skipped"), strings.Index(long, "applied"),
		"status words should align")

	huge := stripAnsi(FormatStatusLine("file", strings.Repeat("x", 40), StatusValid))
	assert.Contains(t, huge, strings.Repeat("x", 40)+"  valid")
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("Catalogue loaded")
	assert.Contains(t, result, "✔")
	assert.Contains(t, result, "Catalogue loaded")
}

func TestFormatVetCheck(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		detail string
	}{
		{name: "with detail", label: "Catalogue decoded", detail: "42 descriptors"},
		{name: "without detail", label: "Schema check passed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatVetCheck(tt.label, tt.detail)
			assert.Contains(t, result, "✔")
			assert.Contains(t, result, tt.label)
			if tt.detail != "" {
				assert.Contains(t, result, tt.detail)
			} else {
				assert.False(t, strings.HasSuffix(stripAnsi(result), " "))
			}
		})
	}

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := stripAnsi(FormatVetCheck("Catalogue decoded", "inputs.yaml"))
		line2 := stripAnsi(FormatVetCheck("Processing specs validated", "run/inputs_case"))
		assert.Equal(t, strings.Index(line1, "inputs.yaml"), strings.Index(line2, "run/inputs_case"))
	})
}

// stripAnsi removes ANSI escape sequences for content assertions.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
