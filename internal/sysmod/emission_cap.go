package sysmod

import (
	"fmt"
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/parser"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// ExtEmissionConstraints is the system Ext key holding emission constraints.
const ExtEmissionConstraints = "emission_constraints"

type emissionCapParams struct {
	// EmissionCap overrides the cap read from co2_cap.
	EmissionCap *float64 `mapstructure:"emission_cap"`
	DefaultUnit string   `mapstructure:"default_unit"`
}

type emissionCap struct {
	params emissionCapParams
}

func newEmissionCap(params map[string]any) (Pass, error) {
	p := &emissionCap{}
	if err := decodeParams(params, &p.params); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *emissionCap) Info() Info {
	return Info{
		Name:        "emission_cap",
		Description: "Add precombustion rates and an annual emission cap constraint",
		Optional:    []string{"switches", "emission_rates", "co2_cap"},
		OnMissing:   Skip,
		Produces:    []string{EffectEmissionCap},
	}
}

func (p *emissionCap) Apply(sys *system.System, aux Aux, env *Env) error {
	log := output.PassLogger("emission_cap")
	unit := p.params.DefaultUnit
	if unit == "" {
		unit = env.defaults().EmissionDefaultUnit
	}
	if unit == "" {
		unit = "tonne"
	}

	hasCO2 := false
	for _, e := range sys.Emissions() {
		if e.Type == system.CO2 {
			hasCO2 = true
			break
		}
	}
	if !hasCO2 {
		log.Warn("no CO2 emission in the system, skipping")
		return nil
	}

	switchTable := aux.Table("switches")
	rates := aux.Table("emission_rates")
	if switchTable == nil {
		log.Warn("missing switches table, skipping")
		return nil
	}
	if rates == nil {
		log.Warn("missing emission rates, skipping")
		return nil
	}
	switches := map[string]any{}
	for i := range switchTable.Len() {
		switches[strings.ToLower(frame.String(switchTable.Value(i, "key")))] = switchTable.Value(i, "value")
	}

	if truthy(switches["gsw_precombustion"]) {
		n, err := addPrecombustion(sys, rates)
		if err != nil {
			return err
		}
		log.Debug("added precombustion rates", "emissions", n)
	}

	capValue := p.params.EmissionCap
	etype := system.CO2
	if capValue == nil {
		if truthy(switches["gsw_annualcapco2e"]) {
			etype = system.CO2E
		}
		v, ok := lookupFirst(aux.Table("co2_cap"), "value")
		if !ok {
			log.Warn("co2_cap not found, skipping")
			return nil
		}
		capValue = &v
	}

	constraints, _ := sys.Ext[ExtEmissionConstraints].(map[string]any)
	if constraints == nil {
		constraints = map[string]any{}
		sys.Ext[ExtEmissionConstraints] = constraints
	}
	name := fmt.Sprintf("Annual_%s_cap", etype)
	constraints[name] = map[string]any{
		"sense":         "<=",
		"rhs_value":     *capValue,
		"units":         unit,
		"penalty_price": 500.0,
		"emission_type": string(etype),
		"coefficient":   1.0,
		"scalar":        1000.0,
	}
	log.Info("added emission constraint", "name", name, "cap", *capValue, "units", unit)
	return nil
}

// addPrecombustion adds each precombustion rate to the emission of the same
// type on the matching generator.
func addPrecombustion(sys *system.System, rates *frame.Table) (int, error) {
	type row struct {
		gen   parser.GenKey
		etype system.EmissionType
		rate  float64
	}
	seen := map[row]bool{}
	byKey := map[parser.GenKey][]*system.Generator{}
	for _, g := range sys.Generators() {
		k := parser.NewGenKey(g.Technology, g.Region, g.Vintage)
		byKey[k] = append(byKey[k], g)
	}

	var n int
	for i := range rates.Len() {
		if !containsFold(frame.String(rates.Value(i, "emission_source")), "precombustion") {
			continue
		}
		etype, err := system.ParseEmissionType(frame.String(rates.Value(i, "emission_type")))
		if err != nil {
			output.Warn("unknown emission type", "type", rates.Value(i, "emission_type"))
			continue
		}
		rate, ok := frame.Float(rates.Value(i, "rate"))
		if !ok {
			continue
		}
		r := row{parser.RowGenKey(rates, i), etype, rate}
		if seen[r] {
			continue
		}
		seen[r] = true

		for _, g := range byKey[r.gen] {
			var match []*system.Emission
			for _, e := range sys.EmissionsOf(g.Name) {
				if e.Type == etype {
					match = append(match, e)
				}
			}
			switch len(match) {
			case 0:
				continue
			case 1:
				match[0].Rate += rate
				n++
			default:
				return n, fmt.Errorf("multiple %s emissions attached to %s", etype, g.Name)
			}
		}
	}
	return n, nil
}

func lookupFirst(t *frame.Table, column string) (float64, bool) {
	if t == nil || t.Len() == 0 {
		return 0, false
	}
	return frame.Float(t.Value(0, column))
}
