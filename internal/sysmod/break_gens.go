package sysmod

import (
	"fmt"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

type breakGensParams struct {
	// CapacityThreshold is the smallest remainder, in MW, kept as a unit.
	CapacityThreshold *float64 `mapstructure:"capacity_threshold"`
	// NonBreakTechs replaces the defaults list of name prefixes never split.
	NonBreakTechs []string `mapstructure:"non_break_techs"`
}

type breakGens struct {
	params breakGensParams
}

func newBreakGens(params map[string]any) (Pass, error) {
	p := &breakGens{}
	if err := decodeParams(params, &p.params); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *breakGens) Info() Info {
	return Info{
		Name:        "break_gens",
		Description: "Split aggregated generators into units of average size",
		Requires:    []string{"pcm_defaults"},
		OnMissing:   Skip,
		Produces:    []string{EffectUnitCapacity},
	}
}

func (p *breakGens) Apply(sys *system.System, aux Aux, env *Env) error {
	log := output.PassLogger("break_gens")
	ref := aux.Record("pcm_defaults")
	d := env.defaults()

	threshold := d.CapacityThreshold
	if p.params.CapacityThreshold != nil {
		threshold = *p.params.CapacityThreshold
	}
	breakable := d.Breakable
	if p.params.NonBreakTechs != nil {
		breakable = func(name string) bool {
			return !hasAnyPrefix(name, p.params.NonBreakTechs)
		}
	}

	var dropped float64
	for _, g := range sys.Generators() {
		if !breakable(g.Name) {
			continue
		}
		avg, ok := averageCapacity(ref, g)
		if !ok {
			continue
		}
		splits := int(g.Capacity / avg)
		remainder := g.Capacity - float64(splits)*avg
		if splits <= 1 {
			continue
		}

		log.Debug("breaking generator", "name", g.Name, "capacity", g.Capacity, "units", splits, "unit_capacity", avg)
		for i := 1; i <= splits; i++ {
			if err := addUnit(sys, g, unitName(g.Name, i), avg); err != nil {
				return err
			}
		}
		if remainder > threshold {
			if err := addUnit(sys, g, unitName(g.Name, splits+1), remainder); err != nil {
				return err
			}
		} else {
			dropped += remainder
			log.Debug("dropped remainder", "name", g.Name, "capacity", remainder)
		}
		sys.RemoveGenerator(g.Name)
	}

	log.Info("total capacity dropped", "MW", dropped)
	return nil
}

func unitName(name string, n int) string {
	return fmt.Sprintf("%s_%02d", name, n)
}

// averageCapacity looks up avg_capacity_MW by category, then technology.
func averageCapacity(ref map[string]any, g *system.Generator) (float64, bool) {
	for _, key := range []string{g.Category, g.Technology} {
		if key == "" {
			continue
		}
		entry, ok := ref[key].(map[string]any)
		if !ok {
			continue
		}
		avg, ok := frame.Float(entry["avg_capacity_MW"])
		if ok && avg > 0 {
			return avg, true
		}
		return 0, false
	}
	return 0, false
}

// addUnit adds a copy of g with its emissions under a new name.
func addUnit(sys *system.System, g *system.Generator, name string, capacity float64) error {
	unit := g.Copy(name)
	unit.Capacity = capacity
	if err := sys.Add(unit); err != nil {
		return err
	}
	for _, e := range sys.EmissionsOf(g.Name) {
		c := *e
		c.Name = system.EmissionName(name, e.Type, e.Source)
		c.Generator = name
		if err := sys.Add(&c); err != nil {
			return err
		}
	}
	return nil
}
