package sysmod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func importsAux(firstStamp string) Aux {
	return Aux{
		"hour_map": frame.FromTable("hour_map", table(
			[]string{"time_index", "hour", "season"},
			[]any{firstStamp, "h1", "winter"},
			[]any{"2013-01-01 12:00:00", "h2", "winter"},
			[]any{"2013-01-02T00:00:00", "h3", "winter"},
			[]any{"2013-01-02T12:00:00", "h4", "summer"},
			[]any{"2013-01-03 00:00", "h5", "summer"},
			[]any{"2013-01-03 12:00", "h6", "summer"},
		)),
		"canada_szn_frac": frame.FromTable("canada_szn_frac", table(
			[]string{"season", "value"},
			[]any{"winter", 0.6},
			[]any{"summer", 0.2},
		)),
		"canada_imports": frame.FromTable("canada_imports", table(
			[]string{"region", "value"},
			[]any{"p1", 1200.0},
		)),
	}
}

func TestImports(t *testing.T) {
	sys := testSystem(t)
	for _, g := range []*system.Generator{
		{Name: "can-imports_init-1_p1", Technology: "can-imports", Vintage: "init-1", Region: "p1", Capacity: 10},
		{Name: "can-imports_init-1_p2", Technology: "can-imports", Vintage: "init-1", Region: "p2", Capacity: 10},
	} {
		require.NoError(t, sys.Add(g))
	}

	p, err := New("imports", nil)
	require.NoError(t, err)
	require.NoError(t, p.Apply(sys, importsAux("2013-01-01 00:00:00"), &Env{WeatherYear: 2013}))

	g, _ := sys.Generator("can-imports_init-1_p1")
	ts := g.Series[HydroBudgetSeries]
	require.NotNil(t, ts)
	assert.Equal(t, 24*time.Hour, ts.Resolution)
	assert.Equal(t, "GWh", ts.Units)
	require.Len(t, ts.Values, 2)
	assert.InDelta(t, 0.6, ts.Values[0], 1e-9)
	assert.InDelta(t, 0.4, ts.Values[1], 1e-9)

	other, _ := sys.Generator("can-imports_init-1_p2")
	assert.NotContains(t, other.Series, HydroBudgetSeries)
	gas, _ := sys.Generator("gas-cc_new1_p1")
	assert.Empty(t, gas.Series)
}

func TestImportsBadTimestamp(t *testing.T) {
	sys := testSystem(t)
	p, err := New("imports", nil)
	require.NoError(t, err)
	err = p.Apply(sys, importsAux("first of January"), &Env{WeatherYear: 2013})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hour_map row 0")
}

func TestImportsNoWeatherYear(t *testing.T) {
	sys := testSystem(t)
	p, err := New("imports", nil)
	require.NoError(t, err)
	require.NoError(t, p.Apply(sys, importsAux("bad"), &Env{}))
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{3}, 3},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, median(tt.in))
	}
}
