package parser

import (
	"time"

	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// LoadSeries is the name of the hourly demand series.
const LoadSeries = "fixed_load"

// DemandName is the name of the end-use demand of a region.
func DemandName(region string) string {
	return region + "_load"
}

// buildDemand reads the load profile pivoted wide by region: one hour
// column plus one column per region.
func (p *Parser) buildDemand(sys *system.System) error {
	t, err := p.required("load_profile")
	if err != nil {
		return err
	}

	start := p.profileStart()
	for _, col := range t.Columns {
		if col == "hour" || col == t.Index {
			continue
		}
		values := make([]float64, t.Len())
		for i := range t.Len() {
			if f, ok := floatAt(t, i, col); ok {
				values[i] = f
			}
		}
		ts := &system.TimeSeries{
			Name:       LoadSeries,
			Start:      start,
			Resolution: time.Hour,
			Values:     values,
			Units:      "MW",
		}
		d := &system.Demand{
			Name:       DemandName(col),
			Region:     col,
			Category:   "load",
			PeakDemand: ts.Max(),
			Series:     system.Series{LoadSeries: ts},
		}
		if err := sys.Add(d); err != nil {
			return err
		}
	}
	return nil
}
