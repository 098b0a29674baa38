package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// IsMissingToken reports whether a raw text cell denotes a missing value.
func IsMissingToken(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// Infer converts a raw text cell into int64, float64, bool, string or nil.
func Infer(raw string) any {
	s := strings.TrimSpace(raw)
	if missingTokens[s] {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.ContainsAny(s, "0123456789") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// Normalize maps decoder-specific scalar types onto the canonical set
// (int64, float64, bool, string, nil) and recurses into maps and slices.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case []byte:
		return string(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

// DeepCopy copies maps and slices recursively; scalars are returned as-is.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = DeepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = DeepCopy(e)
		}
		return out
	default:
		return v
	}
}

// Float returns v as a float64 when it is numeric or a numeric string.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// IsNumeric reports whether v is an int or float value.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int64, int, float64, float32:
		return true
	}
	return false
}

// String returns the canonical text form of a cell. Missing is "".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Compare orders two non-missing cells. Numbers compare numerically when both
// sides are numeric; everything else compares by canonical string.
func Compare(a, b any) int {
	if IsNumeric(a) && IsNumeric(b) {
		fa, _ := Float(a)
		fb, _ := Float(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	if IsNumeric(a) != IsNumeric(b) {
		// "5" in a filter against a numeric column
		fa, oka := Float(a)
		fb, okb := Float(b)
		if oka && okb {
			return Compare(fa, fb)
		}
	}
	return strings.Compare(String(a), String(b))
}

// Equal reports whether two cells are equal under Compare. Missing equals only missing.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Compare(a, b) == 0
}
