package sysmod

import (
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func hasAnyPrefix(s string, prefixes []string) bool {
	s = strings.ToLower(s)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

// setExt sets key on a component's Ext, creating the map. It returns the
// previous value.
func setExt(ext *system.Ext, key string, value any) (any, bool) {
	if *ext == nil {
		*ext = system.Ext{}
	}
	prev, ok := (*ext)[key]
	(*ext)[key] = value
	return prev, ok
}

// truthy interprets switch values such as "1", "true" or 1.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "0", "false", "f", "no", "n", "off":
			return false
		}
		return true
	}
	f, ok := frame.Float(v)
	return ok && f != 0
}

// lookupTable returns the value column of the first row whose key column
// equals key.
func lookupTable(t *frame.Table, keyCol, key, valueCol string) (any, bool) {
	if t == nil {
		return nil, false
	}
	for i := range t.Len() {
		if frame.String(t.Value(i, keyCol)) == key {
			return t.Value(i, valueCol), true
		}
	}
	return nil, false
}

// regionPairRates indexes a from/to/rate table by unordered region pair.
func regionPairRates(t *frame.Table, fromCol, toCol, rateCol string) map[[2]string]float64 {
	out := map[[2]string]float64{}
	if t == nil {
		return out
	}
	for i := range t.Len() {
		rate, ok := frame.Float(t.Value(i, rateCol))
		if !ok {
			continue
		}
		a := frame.String(t.Value(i, fromCol))
		b := frame.String(t.Value(i, toCol))
		out[[2]string{a, b}] = rate
		if _, ok := out[[2]string{b, a}]; !ok {
			out[[2]string{b, a}] = rate
		}
	}
	return out
}

// setWheeling sets the forward and backward wheeling charge on a line.
func setWheeling(l *system.TransmissionLine, rate float64) (float64, bool) {
	prev, replaced := setExt(&l.Ext, "Wheeling Charge", rate)
	setExt(&l.Ext, "Wheeling Charge Back", rate)
	old, _ := frame.Float(prev)
	return old, replaced
}
