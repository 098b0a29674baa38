// Package parser assembles the component graph of a ReEDS run from the
// processed datasets of a file registry.
//
// Assembly has two phases. Builders first create components of one kind
// each, reading only their own tables. Wiring then resolves cross
// references (reserves to the regions of their transmission region) and the
// system validates every reference. A failure in either phase returns no
// graph.
package parser

import (
	"errors"
	"fmt"
	"time"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/registry"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// DefaultSystemName names the graph when Options.Name is empty.
const DefaultSystemName = "ReEDS"

// Options controls assembly.
type Options struct {
	// Name is the system name.
	Name string

	// WeatherYear anchors the start of load profiles.
	WeatherYear int

	// Defaults supplies excluded technologies, categories and units. Nil
	// uses the embedded defaults.
	Defaults *config.Defaults
}

// Parser builds a system from the tables of one registry.
type Parser struct {
	reg      *registry.Registry
	opts     Options
	defaults *config.Defaults
}

// New creates a parser over reg.
func New(reg *registry.Registry, opts Options) (*Parser, error) {
	if reg == nil {
		return nil, fmt.Errorf("parser requires a registry")
	}
	d := opts.Defaults
	if d == nil {
		raw, err := config.LoadDefaults("", nil)
		if err != nil {
			return nil, err
		}
		if d, err = config.DecodeDefaults(raw); err != nil {
			return nil, err
		}
	}
	if opts.Name == "" {
		opts.Name = DefaultSystemName
	}
	return &Parser{reg: reg, opts: opts, defaults: d}, nil
}

// Tables lists the descriptor names Build reads.
func Tables() []string {
	return []string{
		"hierarchy",
		"online_capacity",
		"heat_rate",
		"cost_vom",
		"outage_forced",
		"outage_planned",
		"fuel_map",
		"fuel_price",
		"emission_rates",
		"transmission_capacity",
		"load_profile",
		"reserve_requirements",
	}
}

type builder struct {
	name string
	fn   func(*system.System) error
}

// Build assembles and wires the system.
func (p *Parser) Build() (*system.System, error) {
	sys := system.New(p.opts.Name)

	builders := []builder{
		{"regions", p.buildRegions},
		{"generators", p.buildGenerators},
		{"transmission", p.buildTransmission},
		{"demand", p.buildDemand},
		{"reserves", p.buildReserves},
	}
	for _, b := range builders {
		before := sys.Len()
		if err := b.fn(sys); err != nil {
			return nil, fmt.Errorf("building %s: %w", b.name, err)
		}
		output.Debug("builder finished", "builder", b.name, "added", sys.Len()-before)
	}

	if err := p.wireReserves(sys); err != nil {
		return nil, fmt.Errorf("wiring reserves: %w", err)
	}
	if err := sys.Wire(); err != nil {
		return nil, fmt.Errorf("wiring system: %w", err)
	}

	output.Info("system assembled", "name", sys.Name, "components", sys.Len())
	return sys, nil
}

// required reads a table the assembler cannot work without.
func (p *Parser) required(name string) (*frame.Table, error) {
	ds, err := p.reg.Read(name)
	if err != nil {
		return nil, err
	}
	if ds.IsAbsent() {
		return nil, fmt.Errorf("%w: %q is required by the assembler", oerrors.ErrMissingRequiredFile, name)
	}
	if ds.Table == nil {
		return nil, fmt.Errorf("%w: %q is not tabular", oerrors.ErrSchemaMismatch, name)
	}
	return ds.Table, nil
}

// optional reads a table that may be unregistered or absent. Both return
// nil without error.
func (p *Parser) optional(name string) (*frame.Table, error) {
	if !p.reg.Has(name) {
		return nil, nil
	}
	ds, err := p.reg.Read(name)
	if err != nil {
		if errors.Is(err, oerrors.ErrNotRegistered) {
			return nil, nil
		}
		return nil, err
	}
	if ds.IsAbsent() {
		output.Debug("optional table absent", "name", name)
		return nil, nil
	}
	if ds.Table == nil {
		return nil, fmt.Errorf("%w: %q is not tabular", oerrors.ErrSchemaMismatch, name)
	}
	return ds.Table, nil
}

// requireColumns fails when t lacks any of the named columns.
func requireColumns(t *frame.Table, table string, columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return oerrors.NewSchemaMismatch("assemble", c, "column is required").WithFile(table)
		}
	}
	return nil
}

// profileStart is the first hour of the weather year.
func (p *Parser) profileStart() time.Time {
	return time.Date(p.opts.WeatherYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}
