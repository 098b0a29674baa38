package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// DefaultsFileName is looked up when a defaults path names a folder.
const DefaultsFileName = "defaults.json"

//go:embed defaults.json
var embeddedDefaults []byte

// Defaults is the typed view of defaults.json.
type Defaults struct {
	ExcludedTechs       []string            `mapstructure:"excluded_techs"`
	NonBreakTechs       []string            `mapstructure:"non_break_techs"`
	CapacityThreshold   float64             `mapstructure:"capacity_threshold"`
	EmissionDefaultUnit string              `mapstructure:"emission_default_unit"`
	H2PriceScalar       float64             `mapstructure:"h2_price_scalar"`
	ElectrolyzerMinLoad float64             `mapstructure:"electrolyzer_min_load"`
	TechCategories      map[string][]string `mapstructure:"tech_categories"`

	// Raw holds every key, including ones without a typed field.
	Raw map[string]any `mapstructure:"-"`
}

// LoadDefaults reads defaults.json and merges overrides into it.
//
// An empty path reads the embedded defaults. A folder path reads
// defaults.json inside it. A missing file yields only the overrides. List
// values are merged with the override entries appended and duplicates
// removed in order; any other override value replaces the file value.
func LoadDefaults(path string, overrides map[string]any) (map[string]any, error) {
	base, err := readDefaults(path)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		base[k] = mergeValue(base[k], frame.DeepCopy(v))
	}
	return base, nil
}

func readDefaults(path string) (map[string]any, error) {
	data := embeddedDefaults
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(expanded); err == nil && info.IsDir() {
			expanded = filepath.Join(expanded, DefaultsFileName)
		}
		data, err = os.ReadFile(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return map[string]any{}, nil
			}
			return nil, fmt.Errorf("reading defaults: %w", err)
		}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding defaults: %w", err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("defaults file must contain a dict, got %T", doc)
	}
	return m, nil
}

func mergeValue(base, override any) any {
	bl, ok1 := asList(base)
	ol, ok2 := asList(override)
	if !ok1 || !ok2 {
		return override
	}
	out := slices.Clone(bl)
	for _, v := range ol {
		if !slices.ContainsFunc(out, func(e any) bool { return frame.Equal(e, v) }) {
			out = append(out, v)
		}
	}
	return out
}

func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// DecodeDefaults converts a merged defaults map into Defaults.
func DecodeDefaults(raw map[string]any) (*Defaults, error) {
	d := &Defaults{Raw: raw}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           d,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding defaults: %w", err)
	}
	return d, nil
}

// Excluded reports whether a technology matches an excluded prefix.
func (d *Defaults) Excluded(technology string) bool {
	return hasPrefix(technology, d.ExcludedTechs)
}

// Breakable reports whether generators with this name may be split.
func (d *Defaults) Breakable(name string) bool {
	return !hasPrefix(name, d.NonBreakTechs)
}

// Category returns the category whose prefix is the longest match for the
// technology, or "" when nothing matches.
func (d *Defaults) Category(technology string) string {
	tech := strings.ToLower(technology)
	best, bestLen := "", 0
	cats := make([]string, 0, len(d.TechCategories))
	for c := range d.TechCategories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		for _, p := range d.TechCategories[c] {
			if strings.HasPrefix(tech, strings.ToLower(p)) && len(p) > bestLen {
				best, bestLen = c, len(p)
			}
		}
	}
	return best
}

func hasPrefix(s string, prefixes []string) bool {
	s = strings.ToLower(s)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
