package system

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// Kind names a component type.
type Kind string

const (
	KindRegion           Kind = "Region"
	KindGenerator        Kind = "Generator"
	KindTransmissionLine Kind = "TransmissionLine"
	KindReserve          Kind = "Reserve"
	KindDemand           Kind = "Demand"
	KindEmission         Kind = "Emission"
)

// Key identifies a component. Names are unique per kind.
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// Relation is the type of a reference between components.
type Relation string

const (
	LocatedIn  Relation = "located_in"
	PartOf     Relation = "part_of"
	AttachedTo Relation = "attached_to"
	Connects   Relation = "connects"
	AppliesTo  Relation = "applies_to"
)

// Owns reports whether the relation is an ownership relation. Ownership
// relations must not form cycles.
func (r Relation) Owns() bool {
	return r == LocatedIn || r == PartOf || r == AttachedTo
}

// Ref is an outgoing reference to another component by key.
type Ref struct {
	Relation Relation
	Target   Key
}

// Component is a node of the graph. References are held by key and resolved
// when the system is wired.
type Component interface {
	Key() Key
	Refs() []Ref
	clone() Component
}

// Ext holds free-form attributes set by passes.
type Ext map[string]any

func (e Ext) clone() Ext {
	if e == nil {
		return nil
	}
	return frame.DeepCopy(map[string]any(e)).(map[string]any)
}

// TimeSeries is a fixed-resolution series of values.
type TimeSeries struct {
	Name       string
	Start      time.Time
	Resolution time.Duration
	Values     []float64
	Units      string
}

// Clone returns a copy that shares no values with ts.
func (ts *TimeSeries) Clone() *TimeSeries {
	c := *ts
	c.Values = slices.Clone(ts.Values)
	return &c
}

// Max returns the largest value, or 0 for an empty series.
func (ts *TimeSeries) Max() float64 {
	if len(ts.Values) == 0 {
		return 0
	}
	return slices.Max(ts.Values)
}

// Series maps a variable name to its time series.
type Series map[string]*TimeSeries

func (s Series) clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	for k, ts := range s {
		out[k] = ts.Clone()
	}
	return out
}

// Names returns the series names, sorted.
func (s Series) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// Region is a balancing area.
type Region struct {
	Name               string
	TransmissionRegion string
	State              string
	Interconnect       string
	Country            string
	// Parent names the enclosing region, if any.
	Parent string
	Ext    Ext
}

func (r *Region) Key() Key { return Key{KindRegion, r.Name} }

func (r *Region) Refs() []Ref {
	if r.Parent == "" {
		return nil
	}
	return []Ref{{PartOf, Key{KindRegion, r.Parent}}}
}

func (r *Region) clone() Component {
	c := *r
	c.Ext = r.Ext.clone()
	return &c
}

// RampLimits bounds the rate of change of output in MW/min.
type RampLimits struct {
	Up   float64
	Down float64
}

// Generator is an aggregate of online capacity for one technology, vintage
// and region.
type Generator struct {
	Name       string
	Technology string
	Vintage    string
	Region     string
	Category   string
	FuelType   string
	Capacity   float64

	HeatRate          *float64
	VOMCost           *float64
	FuelPrice         *float64
	ForcedOutageRate  *float64
	PlannedOutageRate *float64
	MeanTimeToRepair  *float64
	MinStableLevel    *float64
	MinUpTime         *float64
	MinDownTime       *float64
	StartupCost       *float64
	RampLimits        *RampLimits

	Ext    Ext
	Series Series
}

func (g *Generator) Key() Key { return Key{KindGenerator, g.Name} }

func (g *Generator) Refs() []Ref {
	return []Ref{{LocatedIn, Key{KindRegion, g.Region}}}
}

func (g *Generator) clone() Component {
	c := *g
	c.HeatRate = clonePtr(g.HeatRate)
	c.VOMCost = clonePtr(g.VOMCost)
	c.FuelPrice = clonePtr(g.FuelPrice)
	c.ForcedOutageRate = clonePtr(g.ForcedOutageRate)
	c.PlannedOutageRate = clonePtr(g.PlannedOutageRate)
	c.MeanTimeToRepair = clonePtr(g.MeanTimeToRepair)
	c.MinStableLevel = clonePtr(g.MinStableLevel)
	c.MinUpTime = clonePtr(g.MinUpTime)
	c.MinDownTime = clonePtr(g.MinDownTime)
	c.StartupCost = clonePtr(g.StartupCost)
	c.RampLimits = clonePtr(g.RampLimits)
	c.Ext = g.Ext.clone()
	c.Series = g.Series.clone()
	return &c
}

// Copy returns a deep copy of g under a new name.
func (g *Generator) Copy(name string) *Generator {
	c := g.clone().(*Generator)
	c.Name = name
	return c
}

// TransmissionLine connects two regions.
type TransmissionLine struct {
	Name             string
	FromRegion       string
	ToRegion         string
	LineType         string
	ForwardCapacity  float64
	BackwardCapacity float64
	Ext              Ext
}

// LineName is the canonical name of the line between two regions.
func LineName(from, to, lineType string) string {
	if lineType == "" {
		return from + "||" + to
	}
	return from + "||" + to + "||" + lineType
}

func (l *TransmissionLine) Key() Key { return Key{KindTransmissionLine, l.Name} }

func (l *TransmissionLine) Refs() []Ref {
	return []Ref{
		{Connects, Key{KindRegion, l.FromRegion}},
		{Connects, Key{KindRegion, l.ToRegion}},
	}
}

func (l *TransmissionLine) clone() Component {
	c := *l
	c.Ext = l.Ext.clone()
	return &c
}

// Reserve is an operating reserve requirement over a set of regions.
type Reserve struct {
	Name               string
	Type               ReserveType
	Direction          ReserveDirection
	TransmissionRegion string
	Requirement        float64
	// Regions is filled when the assembler wires the reserve.
	Regions []string
	Ext     Ext
}

func (r *Reserve) Key() Key { return Key{KindReserve, r.Name} }

func (r *Reserve) Refs() []Ref {
	refs := make([]Ref, len(r.Regions))
	for i, name := range r.Regions {
		refs[i] = Ref{AppliesTo, Key{KindRegion, name}}
	}
	return refs
}

func (r *Reserve) clone() Component {
	c := *r
	c.Regions = slices.Clone(r.Regions)
	c.Ext = r.Ext.clone()
	return &c
}

// Demand is a load in one region.
type Demand struct {
	Name       string
	Region     string
	Category   string
	PeakDemand float64
	Ext        Ext
	Series     Series
}

func (d *Demand) Key() Key { return Key{KindDemand, d.Name} }

func (d *Demand) Refs() []Ref {
	return []Ref{{LocatedIn, Key{KindRegion, d.Region}}}
}

func (d *Demand) clone() Component {
	c := *d
	c.Ext = d.Ext.clone()
	c.Series = d.Series.clone()
	return &c
}

// Emission is an emission rate attached to a generator.
type Emission struct {
	Name      string
	Generator string
	Type      EmissionType
	Source    EmissionSource
	Rate      float64
	Units     string
}

// EmissionName is the canonical name of an emission component.
func EmissionName(generator string, t EmissionType, s EmissionSource) string {
	return fmt.Sprintf("%s_%s_%s", generator, t, s)
}

func (e *Emission) Key() Key { return Key{KindEmission, e.Name} }

func (e *Emission) Refs() []Ref {
	return []Ref{{AttachedTo, Key{KindGenerator, e.Generator}}}
}

func (e *Emission) clone() Component {
	c := *e
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
