package parser

import (
	"fmt"
	"strings"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// ReserveName is the name of a reserve product in a transmission region.
func ReserveName(transmissionRegion, reserveType string) string {
	return transmissionRegion + "_" + strings.ToLower(reserveType)
}

func (p *Parser) buildReserves(sys *system.System) error {
	t, err := p.optional("reserve_requirements")
	if err != nil || t == nil {
		return err
	}
	if err := requireColumns(t, "reserve_requirements", "reserve_type", "transmission_region", "requirement"); err != nil {
		return err
	}

	for i := range t.Len() {
		raw := frame.String(t.Value(i, "reserve_type"))
		rtype, err := system.ParseReserveType(raw)
		if err != nil {
			return fmt.Errorf("reserve_requirements row %d: %w", i, err)
		}
		dir, err := system.ParseReserveDirection(frame.String(t.Value(i, "direction")))
		if err != nil {
			return fmt.Errorf("reserve_requirements row %d: %w", i, err)
		}
		req, _ := floatAt(t, i, "requirement")
		tr := frame.String(t.Value(i, "transmission_region"))
		r := &system.Reserve{
			Name:               ReserveName(tr, raw),
			Type:               rtype,
			Direction:          dir,
			TransmissionRegion: tr,
			Requirement:        req,
		}
		if err := sys.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// wireReserves points every reserve at the regions of its transmission
// region. A transmission region without regions is a dangling reference.
func (p *Parser) wireReserves(sys *system.System) error {
	members := map[string][]string{}
	for _, r := range sys.Regions() {
		if r.TransmissionRegion != "" {
			members[r.TransmissionRegion] = append(members[r.TransmissionRegion], r.Name)
		}
	}
	for _, res := range sys.Reserves() {
		regions, ok := members[res.TransmissionRegion]
		if !ok {
			return &oerrors.DanglingReferenceError{
				SourceKind: string(system.KindReserve),
				SourceName: res.Name,
				Relation:   string(system.AppliesTo),
				TargetKind: "transmission region",
				TargetName: res.TransmissionRegion,
			}
		}
		res.Regions = append([]string(nil), regions...)
	}
	return nil
}
