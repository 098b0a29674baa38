package sysmod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/parser"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func electrolyzerAux() Aux {
	return Aux{
		"hour_map": frame.FromTable("hour_map", table(
			[]string{"time_index", "hour", "season"},
			[]any{"2013-01-01 00:00:00", "h1", "winter"},
			[]any{"2013-01-01 01:00:00", "h2", "winter"},
			[]any{"2013-01-01 02:00:00", "h1", "winter"},
		)),
		"electrolyzer_load": frame.FromTable("electrolyzer_load", table(
			[]string{"hour", "region", "load_MW"},
			[]any{"h1", "p1", 2.0},
			[]any{"h1", "p1", 1.0},
			[]any{"h2", "p1", 5.0},
			[]any{"h1", "p2", 0.5},
			[]any{"h1", "p9", 4.0},
		)),
		"h2_fuel_price": frame.FromTable("h2_fuel_price", table(
			[]string{"region", "month", "h2_price"},
			[]any{"p1", "m1", 2.0},
			[]any{"p1", "m2", 3.0},
		)),
	}
}

func TestElectrolyzerLoad(t *testing.T) {
	sys := testSystem(t)
	p, err := New("electrolyzer", nil)
	require.NoError(t, err)
	require.NoError(t, p.Apply(sys, electrolyzerAux(), &Env{WeatherYear: 2013}))

	d, ok := sys.Demand("p1_electrolyzer")
	require.True(t, ok)
	assert.Equal(t, "p1", d.Region)
	assert.Equal(t, "electrolyzer", d.Category)
	assert.Equal(t, 5.0, d.PeakDemand)
	assert.Equal(t, true, d.Ext["interruptible"])
	assert.Equal(t, "electrolyzer", d.Ext["load_type"])

	ts := d.Series[parser.LoadSeries]
	require.NotNil(t, ts)
	assert.Equal(t, []float64{3, 5, 3}, ts.Values)
	assert.Equal(t, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), ts.Start)
	assert.Equal(t, time.Hour, ts.Resolution)

	_, ok = sys.Demand("p2_electrolyzer")
	assert.False(t, ok, "load below the minimum is skipped")
	_, ok = sys.Demand("p9_electrolyzer")
	assert.False(t, ok, "unknown region is skipped")

	require.NoError(t, sys.Wire())
}

func TestElectrolyzerFuelPrice(t *testing.T) {
	sys := testSystem(t)
	require.NoError(t, sys.Add(&system.Generator{
		Name: "h2-ct_new1_p1", Technology: "h2-ct", Vintage: "new1", Region: "p1", Capacity: 10,
	}))

	p, err := New("electrolyzer", nil)
	require.NoError(t, err)
	require.NoError(t, p.Apply(sys, electrolyzerAux(), &Env{WeatherYear: 2013}))

	g, _ := sys.Generator("h2-ct_new1_p1")
	ts := g.Series[FuelPriceSeries]
	require.NotNil(t, ts)
	require.Len(t, ts.Values, 8760-24)
	assert.Equal(t, 60.0, ts.Values[0])
	assert.Equal(t, 90.0, ts.Values[31*24])
	assert.Equal(t, 0.0, ts.Values[len(ts.Values)-1])

	gas, _ := sys.Generator("gas-cc_new1_p1")
	assert.NotContains(t, gas.Series, FuelPriceSeries)
}

func TestElectrolyzerSkips(t *testing.T) {
	tests := []struct {
		name string
		aux  Aux
		env  *Env
	}{
		{name: "no weather year", aux: electrolyzerAux(), env: &Env{}},
		{name: "no tables", aux: Aux{}, env: &Env{WeatherYear: 2013}},
		{
			name: "no hour map",
			aux: Aux{
				"electrolyzer_load": electrolyzerAux()["electrolyzer_load"],
				"hour_map":          frame.Absent("hour_map"),
			},
			env: &Env{WeatherYear: 2013},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := testSystem(t)
			before := sys.Summary()
			p, err := New("electrolyzer", nil)
			require.NoError(t, err)
			require.NoError(t, p.Apply(sys, tt.aux, tt.env))
			assert.Equal(t, before, sys.Summary())
		})
	}
}
