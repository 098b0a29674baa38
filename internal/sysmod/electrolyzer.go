package sysmod

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/parser"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// FuelPriceSeries is the hourly fuel price series of hydrogen generators.
const FuelPriceSeries = "fuel_price"

// ElectrolyzerDemandName is the name of the electrolyzer demand of a region.
func ElectrolyzerDemandName(region string) string {
	return region + "_electrolyzer"
}

type electrolyzer struct{}

func newElectrolyzer(params map[string]any) (Pass, error) {
	if err := decodeParams(params, &struct{}{}); err != nil {
		return nil, err
	}
	return &electrolyzer{}, nil
}

func (p *electrolyzer) Info() Info {
	return Info{
		Name:        "electrolyzer",
		Description: "Add electrolyzer demand and monthly hydrogen fuel prices",
		Optional:    []string{"electrolyzer_load", "hour_map", "h2_fuel_price"},
		OnMissing:   Skip,
		Produces:    []string{EffectHourlySeries},
	}
}

func (p *electrolyzer) Apply(sys *system.System, aux Aux, env *Env) error {
	log := output.PassLogger("electrolyzer")
	if env == nil || env.WeatherYear == 0 {
		log.Warn("weather year not set, skipping")
		return nil
	}
	if err := p.addLoad(sys, aux, env); err != nil {
		return err
	}
	p.addFuelPrice(sys, aux, env)
	return nil
}

func (p *electrolyzer) addLoad(sys *system.System, aux Aux, env *Env) error {
	log := output.PassLogger("electrolyzer")
	load := aux.Table("electrolyzer_load")
	if load == nil {
		log.Warn("no electrolyzer load found, skipping load")
		return nil
	}
	hours := aux.Table("hour_map")
	if hours == nil {
		log.Warn("no hour map found, cannot build hourly electrolyzer load")
		return nil
	}

	// region -> representative hour -> MW
	byRegion := map[string]map[string]float64{}
	for i := range load.Len() {
		region := frame.String(load.Value(i, "region"))
		mw, _ := frame.Float(load.Value(i, "load_MW"))
		if byRegion[region] == nil {
			byRegion[region] = map[string]float64{}
		}
		byRegion[region][frame.String(load.Value(i, "hour"))] += mw
	}
	regions := make([]string, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	minLoad := env.defaults().ElectrolyzerMinLoad
	start := time.Date(env.WeatherYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, region := range regions {
		if _, ok := sys.Region(region); !ok {
			log.Warn("region not in system, skipping electrolyzer load", "region", region)
			continue
		}
		values := make([]float64, hours.Len())
		for i := range hours.Len() {
			values[i] = byRegion[region][frame.String(hours.Value(i, "hour"))]
		}
		ts := &system.TimeSeries{
			Name:       parser.LoadSeries,
			Start:      start,
			Resolution: time.Hour,
			Values:     values,
			Units:      "MW",
		}
		peak := ts.Max()
		if peak < minLoad {
			log.Warn("electrolyzer load below minimum, skipping", "region", region, "peak", peak, "min", minLoad)
			continue
		}
		d := &system.Demand{
			Name:       ElectrolyzerDemandName(region),
			Region:     region,
			Category:   "electrolyzer",
			PeakDemand: peak,
			Ext: system.Ext{
				"load_type":       "electrolyzer",
				"interruptible":   true,
				"original_region": region,
			},
			Series: system.Series{parser.LoadSeries: ts},
		}
		if err := sys.Add(d); err != nil {
			return err
		}
		log.Debug("added electrolyzer load", "region", region, "peak", peak)
	}
	return nil
}

func (p *electrolyzer) addFuelPrice(sys *system.System, aux Aux, env *Env) {
	log := output.PassLogger("electrolyzer")
	prices := aux.Table("h2_fuel_price")
	if prices == nil {
		log.Warn("no monthly hydrogen price found, skipping fuel price")
		return
	}

	// region -> month -> $/kg
	monthly := map[string]map[int]float64{}
	for i := range prices.Len() {
		month, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(frame.String(prices.Value(i, "month"))), "m"))
		if err != nil || month < 1 || month > 12 {
			log.Warn("invalid month in hydrogen price", "month", prices.Value(i, "month"))
			continue
		}
		price, _ := frame.Float(prices.Value(i, "h2_price"))
		region := frame.String(prices.Value(i, "region"))
		if monthly[region] == nil {
			monthly[region] = map[int]float64{}
		}
		monthly[region][month] = price
	}

	start := time.Date(env.WeatherYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	// The last day of the year is dropped.
	n := int(start.AddDate(1, 0, 0).Sub(start).Hours()) - 24
	scalar := env.defaults().H2PriceScalar

	var added int
	for _, g := range sys.Generators() {
		if !containsFold(g.Name, "h2") && !containsFold(g.Technology, "hydrogen") {
			continue
		}
		byMonth, ok := monthly[g.Region]
		if !ok {
			log.Debug("no hydrogen price for region", "region", g.Region)
			continue
		}
		values := make([]float64, n)
		for h := range values {
			values[h] = byMonth[int(start.Add(time.Duration(h)*time.Hour).Month())] * scalar
		}
		if g.Series == nil {
			g.Series = system.Series{}
		}
		g.Series[FuelPriceSeries] = &system.TimeSeries{
			Name:       FuelPriceSeries,
			Start:      start,
			Resolution: time.Hour,
			Values:     values,
			Units:      "$/MWh",
		}
		added++
	}
	log.Info("added hydrogen fuel prices", "generators", added)
}
