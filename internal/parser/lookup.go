package parser

import (
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// MissingVintage stands in for an empty vintage in lookup keys so that rows
// without a vintage still match generators without one.
const MissingVintage = "__missing_vintage__"

// GeneratorName is the name of the generator for a technology, vintage and
// region. The vintage is left out when empty.
func GeneratorName(technology, vintage, region string) string {
	if vintage == "" {
		return technology + "_" + region
	}
	return technology + "_" + vintage + "_" + region
}

// GenKey identifies the table rows that describe one generator.
type GenKey struct {
	Technology string
	Region     string
	Vintage    string
}

// NewGenKey normalizes the parts of a key.
func NewGenKey(technology, region, vintage string) GenKey {
	if vintage == "" {
		vintage = MissingVintage
	}
	return GenKey{
		Technology: strings.ToLower(technology),
		Region:     region,
		Vintage:    vintage,
	}
}

// RowGenKey reads the technology, region and vintage columns of row i.
func RowGenKey(t *frame.Table, i int) GenKey {
	return NewGenKey(
		frame.String(t.Value(i, "technology")),
		frame.String(t.Value(i, "region")),
		frame.String(t.Value(i, "vintage")),
	)
}

// floatAt returns the numeric cell at row i, false when missing.
func floatAt(t *frame.Table, i int, column string) (float64, bool) {
	v := t.Value(i, column)
	if v == nil {
		return 0, false
	}
	return frame.Float(v)
}

// keyedFloats indexes a numeric column by generator key. Later rows win.
func keyedFloats(t *frame.Table, column string) map[GenKey]float64 {
	out := map[GenKey]float64{}
	if t == nil || !t.HasColumn(column) {
		return out
	}
	for i := range t.Len() {
		if f, ok := floatAt(t, i, column); ok {
			out[RowGenKey(t, i)] = f
		}
	}
	return out
}

// columnMap indexes one column by another, both as strings.
func columnMap(t *frame.Table, key, value string) map[string]string {
	out := map[string]string{}
	if t == nil || !t.HasColumn(key) || !t.HasColumn(value) {
		return out
	}
	for i := range t.Len() {
		out[strings.ToLower(frame.String(t.Value(i, key)))] = frame.String(t.Value(i, value))
	}
	return out
}

// techFloats indexes a numeric column by lowercased technology.
func techFloats(t *frame.Table, column string) map[string]float64 {
	out := map[string]float64{}
	if t == nil || !t.HasColumn(column) {
		return out
	}
	for i := range t.Len() {
		if f, ok := floatAt(t, i, column); ok {
			out[strings.ToLower(frame.String(t.Value(i, "technology")))] = f
		}
	}
	return out
}
