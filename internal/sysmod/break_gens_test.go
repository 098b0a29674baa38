package sysmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func pcmAux(ref map[string]any) Aux {
	return Aux{"pcm_defaults": frame.FromRecord("pcm_defaults", ref)}
}

func TestBreakGens(t *testing.T) {
	tests := []struct {
		name      string
		capacity  float64
		params    map[string]any
		ref       map[string]any
		wantUnits map[string]float64
	}{
		{
			name:     "remainder above threshold becomes a unit",
			capacity: 500,
			ref:      map[string]any{"gas-cc": map[string]any{"avg_capacity_MW": 150.0}},
			wantUnits: map[string]float64{
				"gas-cc_new1_p1_01": 150, "gas-cc_new1_p1_02": 150,
				"gas-cc_new1_p1_03": 150, "gas-cc_new1_p1_04": 50,
			},
		},
		{
			name:     "remainder below threshold is dropped",
			capacity: 303,
			ref:      map[string]any{"gas-cc": map[string]any{"avg_capacity_MW": 150.0}},
			wantUnits: map[string]float64{
				"gas-cc_new1_p1_01": 150, "gas-cc_new1_p1_02": 150,
			},
		},
		{
			name:     "threshold parameter",
			capacity: 320,
			params:   map[string]any{"capacity_threshold": 25},
			ref:      map[string]any{"gas-cc": map[string]any{"avg_capacity_MW": 150.0}},
			wantUnits: map[string]float64{
				"gas-cc_new1_p1_01": 150, "gas-cc_new1_p1_02": 150,
			},
		},
		{
			name:      "single unit is kept whole",
			capacity:  200,
			ref:       map[string]any{"gas-cc": map[string]any{"avg_capacity_MW": 150.0}},
			wantUnits: map[string]float64{"gas-cc_new1_p1": 200},
		},
		{
			name:      "no average capacity",
			capacity:  500,
			ref:       map[string]any{"coal": map[string]any{"avg_capacity_MW": 150.0}},
			wantUnits: map[string]float64{"gas-cc_new1_p1": 500},
		},
		{
			name:      "non break technology parameter",
			capacity:  500,
			params:    map[string]any{"non_break_techs": []string{"gas"}},
			ref:       map[string]any{"gas-cc": map[string]any{"avg_capacity_MW": 150.0}},
			wantUnits: map[string]float64{"gas-cc_new1_p1": 500},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := testSystem(t)
			g, _ := sys.Generator("gas-cc_new1_p1")
			g.Capacity = tt.capacity

			p, err := New("break_gens", tt.params)
			require.NoError(t, err)
			require.NoError(t, p.Apply(sys, pcmAux(tt.ref), &Env{}))

			got := map[string]float64{}
			for _, g := range sys.Generators() {
				got[g.Name] = g.Capacity
			}
			assert.Equal(t, tt.wantUnits, got)
			for name := range tt.wantUnits {
				require.Len(t, sys.EmissionsOf(name), 1, name)
			}
			assert.Equal(t, len(tt.wantUnits), sys.Count(system.KindEmission))
			require.NoError(t, sys.Wire())
		})
	}
}

func TestBreakGensKeepsNonBreakDefaults(t *testing.T) {
	sys := testSystem(t)
	require.NoError(t, sys.Add(&system.Generator{
		Name: "upv_new1_p2", Technology: "upv", Vintage: "new1", Region: "p2",
		Category: "solar", Capacity: 900,
	}))

	p, err := New("break_gens", nil)
	require.NoError(t, err)
	ref := map[string]any{"solar": map[string]any{"avg_capacity_MW": 100.0}}
	require.NoError(t, p.Apply(sys, pcmAux(ref), &Env{}))

	g, ok := sys.Generator("upv_new1_p2")
	require.True(t, ok)
	assert.Equal(t, 900.0, g.Capacity)
}

func TestBreakGensCopiesAttributes(t *testing.T) {
	sys := testSystem(t)
	g, _ := sys.Generator("gas-cc_new1_p1")
	g.HeatRate = system.Float(7.5)
	g.Ext = system.Ext{"note": "x"}

	p, err := New("break_gens", nil)
	require.NoError(t, err)
	ref := map[string]any{"gas-cc": map[string]any{"avg_capacity_MW": 250.0}}
	require.NoError(t, p.Apply(sys, pcmAux(ref), &Env{}))

	u1, ok := sys.Generator("gas-cc_new1_p1_01")
	require.True(t, ok)
	u2, ok := sys.Generator("gas-cc_new1_p1_02")
	require.True(t, ok)
	require.NotNil(t, u1.HeatRate)
	assert.Equal(t, 7.5, *u1.HeatRate)
	assert.Equal(t, "x", u1.Ext["note"])

	*u1.HeatRate = 9
	assert.Equal(t, 7.5, *u2.HeatRate)

	e := sys.EmissionsOf("gas-cc_new1_p1_02")
	require.Len(t, e, 1)
	assert.Equal(t, "gas-cc_new1_p1_02_CO2_combustion", e[0].Name)
	assert.Equal(t, 0.4, e[0].Rate)
}
