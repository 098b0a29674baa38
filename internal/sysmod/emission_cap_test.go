package sysmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func emissionAux(switches [][]any, capRows ...[]any) Aux {
	aux := Aux{
		"switches": frame.FromTable("switches", table([]string{"key", "value"}, switches...)),
		"emission_rates": frame.FromTable("emission_rates", table(
			[]string{"emission_source", "emission_type", "technology", "vintage", "region", "rate"},
			[]any{"COMBUSTION", "CO2", "gas-cc", "new1", "p1", 0.4},
			[]any{"PRECOMBUSTION", "CO2", "gas-cc", "new1", "p1", 0.05},
			[]any{"PRECOMBUSTION", "CO2", "gas-cc", "new1", "p1", 0.05},
			[]any{"PRECOMBUSTION", "CH4", "gas-cc", "new1", "p1", 0.01},
		)),
		"co2_cap": frame.Absent("co2_cap"),
	}
	if capRows != nil {
		aux["co2_cap"] = frame.FromTable("co2_cap", table([]string{"year", "value"}, capRows...))
	}
	return aux
}

func constraint(t *testing.T, sys *system.System, name string) map[string]any {
	t.Helper()
	all, ok := sys.Ext[ExtEmissionConstraints].(map[string]any)
	require.True(t, ok, "no emission constraints")
	c, ok := all[name].(map[string]any)
	require.True(t, ok, "no constraint %s", name)
	return c
}

func TestEmissionCap(t *testing.T) {
	t.Run("cap from table", func(t *testing.T) {
		sys := testSystem(t)
		p, err := New("emission_cap", nil)
		require.NoError(t, err)
		aux := emissionAux([][]any{{"gsw_precombustion", "0"}}, []any{int64(2030), 1500.0})
		require.NoError(t, p.Apply(sys, aux, &Env{}))

		c := constraint(t, sys, "Annual_CO2_cap")
		assert.Equal(t, "<=", c["sense"])
		assert.Equal(t, 1500.0, c["rhs_value"])
		assert.Equal(t, "tonne", c["units"])
		assert.Equal(t, 500.0, c["penalty_price"])
		assert.Equal(t, "CO2", c["emission_type"])
		assert.Equal(t, 1.0, c["coefficient"])
		assert.Equal(t, 1000.0, c["scalar"])

		e, _ := sys.Emission("gas-cc_new1_p1_CO2_combustion")
		assert.InDelta(t, 0.4, e.Rate, 1e-12)
	})

	t.Run("CO2e switch", func(t *testing.T) {
		sys := testSystem(t)
		p, err := New("emission_cap", nil)
		require.NoError(t, err)
		aux := emissionAux([][]any{{"GSw_AnnualCapCO2e", "1"}}, []any{int64(2030), 10.0})
		require.NoError(t, p.Apply(sys, aux, &Env{}))

		c := constraint(t, sys, "Annual_CO2E_cap")
		assert.Equal(t, "CO2E", c["emission_type"])
	})

	t.Run("parameter cap and unit", func(t *testing.T) {
		sys := testSystem(t)
		p, err := New("emission_cap", map[string]any{"emission_cap": 42.0, "default_unit": "kg"})
		require.NoError(t, err)
		require.NoError(t, p.Apply(sys, emissionAux(nil), &Env{}))

		c := constraint(t, sys, "Annual_CO2_cap")
		assert.Equal(t, 42.0, c["rhs_value"])
		assert.Equal(t, "kg", c["units"])
	})

	t.Run("precombustion added once", func(t *testing.T) {
		sys := testSystem(t)
		p, err := New("emission_cap", nil)
		require.NoError(t, err)
		aux := emissionAux([][]any{{"gsw_precombustion", "1"}}, []any{int64(2030), 1.0})
		require.NoError(t, p.Apply(sys, aux, &Env{}))

		e, _ := sys.Emission("gas-cc_new1_p1_CO2_combustion")
		assert.InDelta(t, 0.45, e.Rate, 1e-12)
	})

	t.Run("missing cap leaves system without constraint", func(t *testing.T) {
		sys := testSystem(t)
		p, err := New("emission_cap", nil)
		require.NoError(t, err)
		require.NoError(t, p.Apply(sys, emissionAux(nil), &Env{}))
		assert.NotContains(t, sys.Ext, ExtEmissionConstraints)
	})

	t.Run("no CO2 emission", func(t *testing.T) {
		sys := testSystem(t)
		sys.Remove(system.Key{Kind: system.KindEmission, Name: "gas-cc_new1_p1_CO2_combustion"})
		p, err := New("emission_cap", map[string]any{"emission_cap": 42.0})
		require.NoError(t, err)
		require.NoError(t, p.Apply(sys, emissionAux(nil), &Env{}))
		assert.NotContains(t, sys.Ext, ExtEmissionConstraints)
	})

	t.Run("missing switches", func(t *testing.T) {
		sys := testSystem(t)
		p, err := New("emission_cap", map[string]any{"emission_cap": 42.0})
		require.NoError(t, err)
		aux := emissionAux(nil)
		aux["switches"] = frame.Absent("switches")
		require.NoError(t, p.Apply(sys, aux, &Env{}))
		assert.NotContains(t, sys.Ext, ExtEmissionConstraints)
	})
}
