package sysmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// table builds a table from a header and rows.
func table(columns []string, rows ...[]any) *frame.Table {
	t := frame.NewTable(columns...)
	for _, r := range rows {
		t.Append(r...)
	}
	return t
}

// testSystem has two western regions joined by a line and one gas plant
// with a combustion CO2 emission.
func testSystem(t *testing.T) *system.System {
	t.Helper()
	sys := system.New("test")
	for _, c := range []system.Component{
		&system.Region{Name: "p1", TransmissionRegion: "west"},
		&system.Region{Name: "p2", TransmissionRegion: "west"},
		&system.Generator{
			Name: "gas-cc_new1_p1", Technology: "gas-cc", Vintage: "new1",
			Region: "p1", Category: "gas-cc", Capacity: 500,
		},
		&system.Emission{
			Name: system.EmissionName("gas-cc_new1_p1", system.CO2, system.Combustion),
			Generator: "gas-cc_new1_p1", Type: system.CO2, Source: system.Combustion,
			Rate: 0.4, Units: "tonne",
		},
		&system.TransmissionLine{
			Name: system.LineName("p1", "p2", "AC"), FromRegion: "p1", ToRegion: "p2",
			LineType: "AC", ForwardCapacity: 100, BackwardCapacity: 80,
		},
	} {
		require.NoError(t, sys.Add(c))
	}
	require.NoError(t, sys.Wire())
	return sys
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		pass    string
		params  map[string]any
		wantErr error
	}{
		{name: "known pass", pass: "hurdle_rate", params: map[string]any{"hurdle_rate": 2.5}},
		{name: "weakly typed param", pass: "hurdle_rate", params: map[string]any{"hurdle_rate": "2.5"}},
		{name: "no params", pass: "ccs_credit"},
		{name: "unknown pass", pass: "nope", wantErr: oerrors.ErrValidation},
		{name: "unknown param", pass: "ccs_credit", params: map[string]any{"rate": 1}, wantErr: oerrors.ErrValidation},
		{name: "bad param type", pass: "break_gens", params: map[string]any{"capacity_threshold": "lots"}, wantErr: oerrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.pass, tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pass, p.Info().Name)
		})
	}
}

func TestNamesAndCatalogue(t *testing.T) {
	assert.Equal(t, []string{
		"break_gens", "cambium", "ccs_credit", "electrolyzer",
		"emission_cap", "hurdle_rate", "imports", "pcm_defaults",
	}, Names())

	cat := Catalogue()
	require.Len(t, cat, 8)
	for i, info := range cat {
		assert.Equal(t, Names()[i], info.Name)
		assert.NotEmpty(t, info.Description)
	}
}

func TestAux(t *testing.T) {
	aux := Aux{
		"tbl":    frame.FromTable("tbl", table([]string{"a"}, []any{int64(1)})),
		"rec":    frame.FromRecord("rec", map[string]any{"k": "v"}),
		"absent": frame.Absent("absent"),
	}

	assert.True(t, aux.Has("tbl"))
	assert.True(t, aux.Has("rec"))
	assert.False(t, aux.Has("absent"))
	assert.False(t, aux.Has("unread"))

	assert.Equal(t, 1, aux.Table("tbl").Len())
	assert.Nil(t, aux.Table("rec"))
	assert.Nil(t, aux.Table("absent"))
	assert.Equal(t, "v", aux.Record("rec")["k"])
	assert.Nil(t, aux.Record("absent"))
}

func TestEnvDefaultsFallback(t *testing.T) {
	var env *Env
	d := env.defaults()
	assert.Equal(t, "tonne", d.EmissionDefaultUnit)
	assert.InDelta(t, 30.0, d.H2PriceScalar, 1e-9)
}
