package sysmod

import (
	"fmt"
	"sort"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

type pcmDefaultsParams struct {
	// Override sets every field present in the defaults, not only unset ones.
	Override bool `mapstructure:"override"`
}

type pcmDefaults struct {
	params pcmDefaultsParams
}

func newPCMDefaults(params map[string]any) (Pass, error) {
	p := &pcmDefaults{}
	if err := decodeParams(params, &p.params); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pcmDefaults) Info() Info {
	return Info{
		Name:        "pcm_defaults",
		Description: "Fill generator operating attributes from production cost defaults",
		Requires:    []string{"pcm_defaults"},
		OnMissing:   Skip,
		Consumes:    []string{EffectUnitCapacity},
		Idempotent:  true,
	}
}

// pcmField binds a defaults key to a generator attribute.
type pcmField struct {
	// scaled values are per MW and multiplied by capacity
	scaled bool
	isSet  func(g *system.Generator) bool
	set    func(g *system.Generator, v any) error
}

func floatField(get func(g *system.Generator) **float64) pcmField {
	return pcmField{
		isSet: func(g *system.Generator) bool { return *get(g) != nil },
		set: func(g *system.Generator, v any) error {
			f, ok := frame.Float(v)
			if !ok {
				return fmt.Errorf("expected a number, got %T", v)
			}
			*get(g) = system.Float(f)
			return nil
		},
	}
}

var pcmFields = map[string]pcmField{
	"heat_rate":           floatField(func(g *system.Generator) **float64 { return &g.HeatRate }),
	"vom_cost":            floatField(func(g *system.Generator) **float64 { return &g.VOMCost }),
	"fuel_price":          floatField(func(g *system.Generator) **float64 { return &g.FuelPrice }),
	"forced_outage_rate":  floatField(func(g *system.Generator) **float64 { return &g.ForcedOutageRate }),
	"planned_outage_rate": floatField(func(g *system.Generator) **float64 { return &g.PlannedOutageRate }),
	"mean_time_to_repair": floatField(func(g *system.Generator) **float64 { return &g.MeanTimeToRepair }),
	"min_stable_level":    floatField(func(g *system.Generator) **float64 { return &g.MinStableLevel }),
	"min_up_time":         floatField(func(g *system.Generator) **float64 { return &g.MinUpTime }),
	"min_down_time":       floatField(func(g *system.Generator) **float64 { return &g.MinDownTime }),
	"start_cost_per_MW": func() pcmField {
		f := floatField(func(g *system.Generator) **float64 { return &g.StartupCost })
		f.scaled = true
		return f
	}(),
	"ramp_limits": {
		scaled: true,
		isSet:  func(g *system.Generator) bool { return g.RampLimits != nil },
		set: func(g *system.Generator, v any) error {
			m, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("expected a mapping with up and down, got %T", v)
			}
			up, _ := frame.Float(m["up"])
			down, _ := frame.Float(m["down"])
			g.RampLimits = &system.RampLimits{Up: up, Down: down}
			return nil
		},
	},
	"capacity": {
		isSet: func(g *system.Generator) bool { return g.Capacity != 0 },
		set: func(g *system.Generator, v any) error {
			f, ok := frame.Float(v)
			if !ok {
				return fmt.Errorf("expected a number, got %T", v)
			}
			g.Capacity = f
			return nil
		},
	},
}

// fieldOrder sorts keys so capacity is set last; scaled fields use the
// capacity the generator had before this pass.
func fieldOrder(keys []string) []string {
	sort.SliceStable(keys, func(i, j int) bool {
		wi, wj := 0, 0
		if keys[i] == "capacity" {
			wi = 1
		}
		if keys[j] == "capacity" {
			wj = 1
		}
		if wi != wj {
			return wi < wj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (p *pcmDefaults) Apply(sys *system.System, aux Aux, _ *Env) error {
	log := output.PassLogger("pcm_defaults")
	ref := aux.Record("pcm_defaults")

	var applied int
	for _, g := range sys.Generators() {
		values := pcmValues(ref, g)
		if values == nil {
			log.Debug("no defaults match generator, skipping", "name", g.Name)
			continue
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			if _, ok := pcmFields[k]; ok {
				keys = append(keys, k)
			}
		}
		for _, k := range fieldOrder(keys) {
			field := pcmFields[k]
			if !p.params.Override && field.isSet(g) {
				continue
			}
			v := values[k]
			if isNull(v) {
				continue
			}
			if field.scaled {
				v = scale(v, g.Capacity)
			}
			if err := field.set(g, v); err != nil {
				log.Warn("cannot set default", "name", g.Name, "field", k, "err", err)
			}
		}
		applied++
	}
	log.Info("applied defaults", "generators", applied)
	return nil
}

// pcmValues looks up defaults by generator name, then technology, then
// category.
func pcmValues(ref map[string]any, g *system.Generator) map[string]any {
	for _, key := range []string{g.Name, g.Technology, g.Category} {
		if key == "" {
			continue
		}
		if m, ok := ref[key].(map[string]any); ok && len(m) > 0 {
			return m
		}
	}
	return nil
}

// isNull treats nil and mappings whose values are all empty as unset.
func isNull(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return v == nil
	}
	for _, e := range m {
		if truthy(e) {
			return false
		}
	}
	return true
}

func scale(v any, factor float64) any {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			if f, ok := frame.Float(e); ok {
				out[k] = f * factor
			} else {
				out[k] = e
			}
		}
		return out
	}
	if f, ok := frame.Float(v); ok {
		return f * factor
	}
	return v
}
