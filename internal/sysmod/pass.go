// Package sysmod provides the modifier passes that run over an assembled
// system: splitting generators into units, applying credits and charges,
// filling defaults and attaching time series.
package sysmod

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// OnMissing is the policy for a pass whose required table is absent.
type OnMissing string

const (
	// Skip logs a warning and leaves the system unchanged.
	Skip OnMissing = "skip"
	// Fail stops the pipeline with ErrMissingAuxiliaryData.
	Fail OnMissing = "fail"
)

// Effects a pass can declare. A pass consuming an effect must run after
// every pass producing it.
const (
	EffectUnitCapacity    = "unit_capacity"
	EffectWheelingCharge  = "wheeling_charge"
	EffectDeratedCapacity = "derated_capacity"
	EffectEmissionCap     = "emission_cap"
	EffectHourlySeries    = "hourly_series"
)

// Info describes a pass.
type Info struct {
	Name        string
	Description string

	// Requires lists tables the pass cannot run without.
	Requires []string
	// Optional lists tables the pass reads when present.
	Optional []string
	// OnMissing applies when a required table is absent.
	OnMissing OnMissing

	Consumes []string
	Produces []string

	// Idempotent passes may be listed more than once.
	Idempotent bool
}

// Pass modifies a system in place.
type Pass interface {
	Info() Info
	Apply(sys *system.System, aux Aux, env *Env) error
}

// Checker is implemented by passes with an invariant that must hold once
// every pass has run.
type Checker interface {
	Check(sys *system.System) error
}

// Env carries run settings shared by every pass.
type Env struct {
	SolveYear   int
	WeatherYear int
	Defaults    *config.Defaults
}

// Aux holds the tables read for one pass, keyed by descriptor name.
// Absent optional tables are absent datasets.
type Aux map[string]*frame.Dataset

// Has reports whether name was read and is present.
func (a Aux) Has(name string) bool {
	return !a[name].IsAbsent()
}

// Table returns the named table, or nil when absent or structured.
func (a Aux) Table(name string) *frame.Table {
	ds := a[name]
	if ds.IsAbsent() {
		return nil
	}
	return ds.Table
}

// Record returns the named structured record, or nil.
func (a Aux) Record(name string) map[string]any {
	ds := a[name]
	if ds.IsAbsent() {
		return nil
	}
	return ds.Record
}

// Factory creates a pass from its configured parameters.
type Factory func(params map[string]any) (Pass, error)

var factories = map[string]Factory{
	"break_gens":   newBreakGens,
	"ccs_credit":   newCCSCredit,
	"hurdle_rate":  newHurdleRate,
	"pcm_defaults": newPCMDefaults,
	"emission_cap": newEmissionCap,
	"electrolyzer": newElectrolyzer,
	"imports":      newImports,
	"cambium":      newCambium,
}

// New creates the named pass.
func New(name string, params map[string]any) (Pass, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown pass %q (available: %v)", oerrors.ErrValidation, name, Names())
	}
	p, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("pass %q: %w", name, err)
	}
	return p, nil
}

// Names lists the available passes, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Catalogue describes every available pass, sorted by name.
func Catalogue() []Info {
	out := make([]Info, 0, len(factories))
	for _, n := range Names() {
		p, err := factories[n](nil)
		if err != nil {
			continue
		}
		out = append(out, p.Info())
	}
	return out
}

// decodeParams decodes pass parameters into out. Unknown keys are errors.
func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", oerrors.ErrValidation, err)
	}
	return nil
}

// defaults returns env defaults, falling back to the embedded ones.
func (e *Env) defaults() *config.Defaults {
	if e != nil && e.Defaults != nil {
		return e.Defaults
	}
	raw, err := config.LoadDefaults("", nil)
	if err != nil {
		return &config.Defaults{}
	}
	d, err := config.DecodeDefaults(raw)
	if err != nil {
		return &config.Defaults{}
	}
	return d
}
