package parser

import (
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// buildTransmission creates one line per region pair and line type. The
// pair is ordered by name; a row in the opposite direction sets the
// backward capacity. A direction with no row mirrors the other.
func (p *Parser) buildTransmission(sys *system.System) error {
	t, err := p.required("transmission_capacity")
	if err != nil {
		return err
	}
	if err := requireColumns(t, "transmission_capacity", "from_region", "to_region", "capacity"); err != nil {
		return err
	}

	type seen struct{ forward, backward bool }
	var order []string
	lines := map[string]*system.TransmissionLine{}
	flags := map[string]*seen{}

	for i := range t.Len() {
		from := frame.String(t.Value(i, "from_region"))
		to := frame.String(t.Value(i, "to_region"))
		lineType := frame.String(t.Value(i, "line_type"))
		capacity, ok := floatAt(t, i, "capacity")
		if !ok || from == "" || to == "" {
			continue
		}

		reversed := to < from
		a, b := from, to
		if reversed {
			a, b = to, from
		}
		name := system.LineName(a, b, lineType)
		l, ok := lines[name]
		if !ok {
			l = &system.TransmissionLine{Name: name, FromRegion: a, ToRegion: b, LineType: lineType}
			lines[name] = l
			flags[name] = &seen{}
			order = append(order, name)
		}
		if reversed {
			l.BackwardCapacity = capacity
			flags[name].backward = true
		} else {
			l.ForwardCapacity = capacity
			flags[name].forward = true
		}
	}

	for _, name := range order {
		l, f := lines[name], flags[name]
		switch {
		case !f.backward:
			l.BackwardCapacity = l.ForwardCapacity
		case !f.forward:
			l.ForwardCapacity = l.BackwardCapacity
		}
		if err := sys.Add(l); err != nil {
			return err
		}
	}
	return nil
}
