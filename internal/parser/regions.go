package parser

import (
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func (p *Parser) buildRegions(sys *system.System) error {
	t, err := p.required("hierarchy")
	if err != nil {
		return err
	}
	if err := requireColumns(t, "hierarchy", "region"); err != nil {
		return err
	}

	for i := range t.Len() {
		name := frame.String(t.Value(i, "region"))
		if name == "" {
			continue
		}
		r := &system.Region{
			Name:               name,
			TransmissionRegion: frame.String(t.Value(i, "transmission_region")),
			State:              frame.String(t.Value(i, "state")),
			Interconnect:       frame.String(t.Value(i, "interconnect")),
			Country:            frame.String(t.Value(i, "country")),
			Parent:             frame.String(t.Value(i, "parent")),
		}
		if err := sys.Add(r); err != nil {
			return err
		}
	}
	return nil
}
