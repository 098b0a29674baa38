package procspec

import (
	"fmt"
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// Match reports whether value satisfies c. A missing value never matches.
func (c Constraint) Match(value any) bool {
	if value == nil {
		return false
	}
	switch c.Op {
	case OpEq:
		return frame.Equal(value, c.Value)
	case OpNe:
		return !frame.Equal(value, c.Value)
	case OpGt, OpGe, OpLt, OpLe:
		if c.Value == nil {
			return false
		}
		cmp := frame.Compare(value, c.Value)
		switch c.Op {
		case OpGt:
			return cmp > 0
		case OpGe:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case OpIn, OpNotIn:
		found := false
		for _, e := range asList(c.Value) {
			if frame.Equal(value, e) {
				found = true
				break
			}
		}
		return found == (c.Op == OpIn)
	case OpContains:
		return strings.Contains(frame.String(value), frame.String(c.Value))
	}
	return false
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}

// matchAll evaluates every constraint against get.
func (f Filters) matchAll(get func(field string) any) bool {
	for _, c := range f {
		if !c.Match(get(c.Field)) {
			return false
		}
	}
	return true
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}
