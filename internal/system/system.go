// Package system holds the typed component graph assembled from a ReEDS run.
//
// Components reference each other by key. Building happens in two phases:
// components are added in any order, then Wire resolves every reference and
// checks the graph invariants. A system that fails to wire must not be used.
package system

import (
	"cmp"
	"fmt"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
)

// System is the component graph.
type System struct {
	Name string
	// Ext holds system-level attributes such as emission constraints.
	Ext Ext

	components map[Key]Component
	order      map[Kind][]string
	wired      bool

	// generator name -> emission names, built by Wire
	emissions map[string][]string
}

// New returns an empty system.
func New(name string) *System {
	return &System{
		Name:       name,
		Ext:        Ext{},
		components: map[Key]Component{},
		order:      map[Kind][]string{},
	}
}

// Add inserts c. Names must be unique per kind.
func (s *System) Add(c Component) error {
	k := c.Key()
	if k.Name == "" {
		return fmt.Errorf("%w: %s component has no name", oerrors.ErrValidation, k.Kind)
	}
	if _, ok := s.components[k]; ok {
		return &oerrors.DuplicateComponentError{Kind: string(k.Kind), Name: k.Name}
	}
	s.components[k] = c
	s.order[k.Kind] = append(s.order[k.Kind], k.Name)
	s.wired = false
	return nil
}

// Remove deletes the component with key k. Components referring to it
// become dangling and fail the next Wire unless they are removed too.
func (s *System) Remove(k Key) bool {
	if _, ok := s.components[k]; !ok {
		return false
	}
	delete(s.components, k)
	if i := slices.Index(s.order[k.Kind], k.Name); i >= 0 {
		s.order[k.Kind] = slices.Delete(s.order[k.Kind], i, i+1)
	}
	s.wired = false
	return true
}

// Get returns the component with key k.
func (s *System) Get(k Key) (Component, bool) {
	c, ok := s.components[k]
	return c, ok
}

// Has reports whether a component with key k exists.
func (s *System) Has(k Key) bool {
	_, ok := s.components[k]
	return ok
}

// Components returns the components of kind in insertion order.
func (s *System) Components(kind Kind) []Component {
	out := make([]Component, len(s.order[kind]))
	for i, n := range s.order[kind] {
		out[i] = s.components[Key{kind, n}]
	}
	return out
}

// Count returns the number of components of kind.
func (s *System) Count(kind Kind) int {
	return len(s.order[kind])
}

// Len returns the total number of components.
func (s *System) Len() int {
	return len(s.components)
}

func typed[T Component](s *System, kind Kind) []T {
	cs := s.Components(kind)
	out := make([]T, len(cs))
	for i, c := range cs {
		out[i] = c.(T)
	}
	return out
}

func lookup[T Component](s *System, kind Kind, name string) (T, bool) {
	c, ok := s.components[Key{kind, name}]
	if !ok {
		var zero T
		return zero, false
	}
	return c.(T), true
}

func (s *System) Regions() []*Region { return typed[*Region](s, KindRegion) }

func (s *System) Generators() []*Generator { return typed[*Generator](s, KindGenerator) }

func (s *System) Lines() []*TransmissionLine {
	return typed[*TransmissionLine](s, KindTransmissionLine)
}

func (s *System) Reserves() []*Reserve { return typed[*Reserve](s, KindReserve) }

func (s *System) Demands() []*Demand { return typed[*Demand](s, KindDemand) }

func (s *System) Emissions() []*Emission { return typed[*Emission](s, KindEmission) }

func (s *System) Region(name string) (*Region, bool) {
	return lookup[*Region](s, KindRegion, name)
}

func (s *System) Generator(name string) (*Generator, bool) {
	return lookup[*Generator](s, KindGenerator, name)
}

func (s *System) Line(name string) (*TransmissionLine, bool) {
	return lookup[*TransmissionLine](s, KindTransmissionLine, name)
}

func (s *System) Demand(name string) (*Demand, bool) {
	return lookup[*Demand](s, KindDemand, name)
}

func (s *System) Emission(name string) (*Emission, bool) {
	return lookup[*Emission](s, KindEmission, name)
}

// EmissionsOf returns the emissions attached to a generator. On a wired
// system this uses the index built by Wire.
func (s *System) EmissionsOf(generator string) []*Emission {
	if s.wired {
		names := s.emissions[generator]
		out := make([]*Emission, 0, len(names))
		for _, n := range names {
			if e, ok := s.Emission(n); ok {
				out = append(out, e)
			}
		}
		return out
	}
	var out []*Emission
	for _, e := range s.Emissions() {
		if e.Generator == generator {
			out = append(out, e)
		}
	}
	return out
}

// RemoveGenerator removes a generator together with its emissions.
func (s *System) RemoveGenerator(name string) bool {
	for _, e := range s.EmissionsOf(name) {
		s.Remove(e.Key())
	}
	return s.Remove(Key{KindGenerator, name})
}

// Wired reports whether the system has been wired since its last change.
func (s *System) Wired() bool {
	return s.wired
}

// Wire resolves every reference and validates the graph: each reference
// must point at an existing component and ownership relations must be
// acyclic. Wire is idempotent.
func (s *System) Wire() error {
	owners := map[Key][]Key{}
	emissions := map[string][]string{}

	for _, kind := range kindOrder {
		for _, c := range s.Components(kind) {
			k := c.Key()
			for _, ref := range c.Refs() {
				if _, ok := s.components[ref.Target]; !ok {
					return &oerrors.DanglingReferenceError{
						SourceKind: string(k.Kind),
						SourceName: k.Name,
						Relation:   string(ref.Relation),
						TargetKind: string(ref.Target.Kind),
						TargetName: ref.Target.Name,
					}
				}
				if ref.Relation.Owns() {
					owners[k] = append(owners[k], ref.Target)
				}
				if ref.Relation == AttachedTo {
					emissions[ref.Target.Name] = append(emissions[ref.Target.Name], k.Name)
				}
			}
		}
	}

	if err := checkAcyclic(owners); err != nil {
		return err
	}

	s.emissions = emissions
	s.wired = true
	return nil
}

var kindOrder = []Kind{
	KindRegion, KindGenerator, KindTransmissionLine, KindReserve, KindDemand, KindEmission,
}

func checkAcyclic(owners map[Key][]Key) error {
	done := sets.New[Key]()
	for _, start := range sortedKeys(owners) {
		if done.Has(start) {
			continue
		}
		path := sets.New[Key]()
		var visit func(k Key) error
		visit = func(k Key) error {
			if path.Has(k) {
				return fmt.Errorf("%w: ownership cycle through %s", oerrors.ErrInvariant, k)
			}
			if done.Has(k) {
				return nil
			}
			path.Insert(k)
			for _, next := range owners[k] {
				if err := visit(next); err != nil {
					return err
				}
			}
			path.Delete(k)
			done.Insert(k)
			return nil
		}
		if err := visit(start); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[Key][]Key) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Name, b.Name))
	})
	return keys
}

// Clone returns a deep copy. The copy is wired if s is.
func (s *System) Clone() *System {
	c := New(s.Name)
	c.Ext = s.Ext.clone()
	if c.Ext == nil {
		c.Ext = Ext{}
	}
	for _, kind := range kindOrder {
		for _, comp := range s.Components(kind) {
			cc := comp.clone()
			c.components[cc.Key()] = cc
			c.order[kind] = append(c.order[kind], cc.Key().Name)
		}
	}
	if s.wired {
		c.emissions = make(map[string][]string, len(s.emissions))
		for g, names := range s.emissions {
			c.emissions[g] = slices.Clone(names)
		}
		c.wired = true
	}
	return c
}

// Summary counts components per kind.
func (s *System) Summary() map[Kind]int {
	out := make(map[Kind]int, len(kindOrder))
	for _, k := range kindOrder {
		out[k] = s.Count(k)
	}
	return out
}

// Kinds lists component kinds in a stable order.
func Kinds() []Kind {
	return slices.Clone(kindOrder)
}
