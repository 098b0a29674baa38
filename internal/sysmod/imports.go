package sysmod

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// HydroBudgetSeries is the daily energy budget of import generators in GWh.
const HydroBudgetSeries = "hydro_budget"

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

type imports struct{}

func newImports(params map[string]any) (Pass, error) {
	if err := decodeParams(params, &struct{}{}); err != nil {
		return nil, err
	}
	return &imports{}, nil
}

func (p *imports) Info() Info {
	return Info{
		Name:        "imports",
		Description: "Attach daily energy budgets to Canadian import generators",
		Requires:    []string{"canada_imports", "canada_szn_frac", "hour_map"},
		OnMissing:   Skip,
		Produces:    []string{EffectHourlySeries},
	}
}

func (p *imports) Apply(sys *system.System, aux Aux, env *Env) error {
	log := output.PassLogger("imports")
	if env == nil || env.WeatherYear == 0 {
		log.Warn("weather year not set, skipping")
		return nil
	}

	shares, err := dailyShares(aux.Table("hour_map"), aux.Table("canada_szn_frac"))
	if err != nil {
		return err
	}
	if len(shares) == 0 {
		log.Warn("no daily shares after joining hour map and seasonal fractions")
		return nil
	}

	totals := aux.Table("canada_imports")
	start := time.Date(env.WeatherYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	var added int
	for _, g := range sys.Generators() {
		if !containsFold(g.Name, "can-imports") && !containsFold(g.Technology, "canada") {
			continue
		}
		v, ok := lookupTable(totals, "region", g.Region, "value")
		total, numeric := frame.Float(v)
		if !ok || !numeric {
			log.Warn("no import data for region", "region", g.Region)
			continue
		}
		// The last day is dropped; MWh to GWh.
		values := make([]float64, len(shares)-1)
		for i := range values {
			values[i] = total * shares[i] / 1e3
		}
		if g.Series == nil {
			g.Series = system.Series{}
		}
		g.Series[HydroBudgetSeries] = &system.TimeSeries{
			Name:       HydroBudgetSeries,
			Start:      start,
			Resolution: 24 * time.Hour,
			Values:     values,
			Units:      "GWh",
		}
		log.Debug("added import budget", "name", g.Name, "total_MWh", total)
		added++
	}
	log.Info("added import budgets", "generators", added)
	return nil
}

// dailyShares joins each hourly timestamp to its season fraction, takes the
// daily median and normalises the result to sum to one. Seasons repeat, so
// the raw fractions can sum to more than one.
func dailyShares(hours, seasons *frame.Table) ([]float64, error) {
	frac := map[string]float64{}
	for i := range seasons.Len() {
		if f, ok := frame.Float(seasons.Value(i, "value")); ok {
			frac[frame.String(seasons.Value(i, "season"))] = f
		}
	}

	byDay := map[string][]float64{}
	for i := range hours.Len() {
		f, ok := frac[frame.String(hours.Value(i, "season"))]
		if !ok {
			continue
		}
		ts, err := parseTimestamp(frame.String(hours.Value(i, "time_index")))
		if err != nil {
			return nil, fmt.Errorf("hour_map row %d: %w", i, err)
		}
		day := ts.Format(time.DateOnly)
		byDay[day] = append(byDay[day], f)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]float64, len(days))
	var sum float64
	for i, d := range days {
		out[i] = median(byDay[d])
		sum += out[i]
	}
	if sum == 0 {
		return out, nil
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
