package parser

import (
	"fmt"
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// generatorTables are the optional attribute tables joined onto capacity.
type generatorTables struct {
	heatRate  map[GenKey]float64
	vom       map[GenKey]float64
	forced    map[string]float64
	planned   map[string]float64
	fuel      map[string]string
	fuelPrice map[[2]string]float64
}

func (p *Parser) loadGeneratorTables() (*generatorTables, error) {
	heat, err := p.optional("heat_rate")
	if err != nil {
		return nil, err
	}
	vom, err := p.optional("cost_vom")
	if err != nil {
		return nil, err
	}
	forced, err := p.optional("outage_forced")
	if err != nil {
		return nil, err
	}
	planned, err := p.optional("outage_planned")
	if err != nil {
		return nil, err
	}
	fuel, err := p.optional("fuel_map")
	if err != nil {
		return nil, err
	}
	price, err := p.optional("fuel_price")
	if err != nil {
		return nil, err
	}

	gt := &generatorTables{
		heatRate:  keyedFloats(heat, "heat_rate"),
		vom:       keyedFloats(vom, "vom_cost"),
		forced:    techFloats(forced, "forced_outage_rate"),
		planned:   techFloats(planned, "planned_outage_rate"),
		fuel:      columnMap(fuel, "technology", "fuel_type"),
		fuelPrice: map[[2]string]float64{},
	}
	if price != nil {
		for i := range price.Len() {
			if f, ok := floatAt(price, i, "fuel_price"); ok {
				k := [2]string{
					strings.ToLower(frame.String(price.Value(i, "fuel_type"))),
					frame.String(price.Value(i, "region")),
				}
				gt.fuelPrice[k] = f
			}
		}
	}
	return gt, nil
}

func (p *Parser) buildGenerators(sys *system.System) error {
	t, err := p.required("online_capacity")
	if err != nil {
		return err
	}
	if err := requireColumns(t, "online_capacity", "technology", "region", "capacity"); err != nil {
		return err
	}
	tables, err := p.loadGeneratorTables()
	if err != nil {
		return err
	}

	byKey := map[GenKey][]string{}
	var excluded, empty int
	for i := range t.Len() {
		tech := frame.String(t.Value(i, "technology"))
		region := frame.String(t.Value(i, "region"))
		vintage := frame.String(t.Value(i, "vintage"))
		if p.defaults.Excluded(tech) {
			excluded++
			continue
		}
		capacity, ok := floatAt(t, i, "capacity")
		if !ok || capacity <= 0 {
			empty++
			continue
		}

		key := NewGenKey(tech, region, vintage)
		g := &system.Generator{
			Name:       GeneratorName(tech, vintage, region),
			Technology: tech,
			Vintage:    vintage,
			Region:     region,
			Category:   p.defaults.Category(tech),
			Capacity:   capacity,
		}
		if v, ok := tables.heatRate[key]; ok {
			g.HeatRate = system.Float(v)
		}
		if v, ok := tables.vom[key]; ok {
			g.VOMCost = system.Float(v)
		}
		if v, ok := tables.forced[key.Technology]; ok {
			g.ForcedOutageRate = system.Float(v)
		}
		if v, ok := tables.planned[key.Technology]; ok {
			g.PlannedOutageRate = system.Float(v)
		}
		if fuel, ok := tables.fuel[key.Technology]; ok {
			g.FuelType = fuel
			if v, ok := tables.fuelPrice[[2]string{strings.ToLower(fuel), region}]; ok {
				g.FuelPrice = system.Float(v)
			}
		}
		if err := sys.Add(g); err != nil {
			return err
		}
		byKey[key] = append(byKey[key], g.Name)
	}
	if excluded > 0 || empty > 0 {
		output.Debug("skipped capacity rows", "excluded_techs", excluded, "no_capacity", empty)
	}

	return p.buildEmissions(sys, byKey)
}

// buildEmissions attaches combustion emission rates to the generators that
// were created. Precombustion rows are left to the emission cap pass.
func (p *Parser) buildEmissions(sys *system.System, byKey map[GenKey][]string) error {
	t, err := p.optional("emission_rates")
	if err != nil || t == nil {
		return err
	}
	if err := requireColumns(t, "emission_rates", "technology", "region", "emission_type", "rate"); err != nil {
		return err
	}

	var unmatched int
	for i := range t.Len() {
		// rows without a source are stack emissions
		source := system.Combustion
		if s := frame.String(t.Value(i, "emission_source")); s != "" {
			if source, err = system.ParseEmissionSource(s); err != nil {
				return fmt.Errorf("emission_rates row %d: %w", i, err)
			}
		}
		if source != system.Combustion {
			continue
		}
		etype, err := system.ParseEmissionType(frame.String(t.Value(i, "emission_type")))
		if err != nil {
			return fmt.Errorf("emission_rates row %d: %w", i, err)
		}
		rate, ok := floatAt(t, i, "rate")
		if !ok {
			continue
		}
		names, ok := byKey[RowGenKey(t, i)]
		if !ok {
			unmatched++
			continue
		}
		for _, gen := range names {
			e := &system.Emission{
				Name:      system.EmissionName(gen, etype, source),
				Generator: gen,
				Type:      etype,
				Source:    source,
				Rate:      rate,
				Units:     p.defaults.EmissionDefaultUnit,
			}
			if err := sys.Add(e); err != nil {
				return err
			}
		}
	}
	if unmatched > 0 {
		output.Debug("emission rows without generator", "rows", unmatched)
	}
	return nil
}
