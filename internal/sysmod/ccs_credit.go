package sysmod

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/parser"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

const (
	// ExtUoSCharge is the use-of-service charge in $/MWh.
	ExtUoSCharge = "UoS Charge"
	// ExtCCSBasis is the capacity the CCS credit was computed for.
	ExtCCSBasis = "CCS Credit Basis MW"
)

type ccsCredit struct{}

func newCCSCredit(params map[string]any) (Pass, error) {
	if err := decodeParams(params, &struct{}{}); err != nil {
		return nil, err
	}
	return &ccsCredit{}, nil
}

func (p *ccsCredit) Info() Info {
	return Info{
		Name:        "ccs_credit",
		Description: "Credit captured CO2 as a negative use-of-service charge",
		Requires:    []string{"co2_incentive", "emission_capture_rate", "upgrade_link"},
		OnMissing:   Skip,
		Consumes:    []string{EffectUnitCapacity},
		Idempotent:  true,
	}
}

type incentiveRow struct {
	key       parser.GenKey
	from      []string
	incentive float64
}

func (p *ccsCredit) Apply(sys *system.System, aux Aux, _ *Env) error {
	log := output.PassLogger("ccs_credit")
	incentives := aux.Table("co2_incentive")
	capture := aux.Table("emission_capture_rate")
	upgrades := aux.Table("upgrade_link")

	// upgraded technology -> technologies it upgrades from
	upgradedFrom := map[string][]string{}
	for i := range upgrades.Len() {
		to := strings.ToLower(frame.String(upgrades.Value(i, "to")))
		upgradedFrom[to] = append(upgradedFrom[to], strings.ToLower(frame.String(upgrades.Value(i, "from"))))
	}

	// Technologies not yet upgraded are eligible through their upgrade path.
	var rows []incentiveRow
	eligible := sets.New[string]()
	for i := range incentives.Len() {
		f, ok := frame.Float(incentives.Value(i, "incentive"))
		if !ok {
			continue
		}
		key := parser.RowGenKey(incentives, i)
		eligible.Insert(key.Technology)
		froms := upgradedFrom[key.Technology]
		eligible.Insert(froms...)
		rows = append(rows, incentiveRow{key: key, from: froms, incentive: f})
	}

	rates := map[parser.GenKey]float64{}
	for i := range capture.Len() {
		if f, ok := frame.Float(capture.Value(i, "capture_rate")); ok {
			rates[parser.RowGenKey(capture, i)] = f
		}
	}

	var credited int
	for _, g := range sys.Generators() {
		key := parser.NewGenKey(g.Technology, g.Region, g.Vintage)
		if !eligible.Has(key.Technology) {
			continue
		}
		rate, ok := rates[key]
		if !ok {
			log.Debug("generator has no capture rate, skipping", "name", g.Name)
			continue
		}
		var matches []float64
		for _, r := range rows {
			if r.key.Region != key.Region || r.key.Vintage != key.Vintage {
				continue
			}
			if r.key.Technology == key.Technology || slices.Contains(r.from, key.Technology) {
				matches = append(matches, r.incentive)
			}
		}
		if len(matches) != 1 {
			log.Warn("cannot apply CCS credit", "name", g.Name, "incentive_rows", len(matches))
			continue
		}

		charge := -matches[0] * rate
		setExt(&g.Ext, ExtUoSCharge, charge)
		setExt(&g.Ext, ExtCCSBasis, g.Capacity)
		log.Debug("applied CCS credit", "name", g.Name, "incentive", matches[0], "capture_rate", rate, "charge", charge)
		credited++
	}
	log.Info("applied CCS credit", "generators", credited)
	return nil
}

// Check verifies that the capacity the credit was computed for is still
// the credited capacity. Splitting generators after crediting breaks it.
func (p *ccsCredit) Check(sys *system.System) error {
	var basis, capacity float64
	for _, g := range sys.Generators() {
		b, ok := frame.Float(g.Ext[ExtCCSBasis])
		if !ok {
			continue
		}
		basis += b
		capacity += g.Capacity
	}
	if math.Abs(basis-capacity) > 1e-6*math.Max(1, math.Abs(capacity)) {
		return fmt.Errorf("%w: CCS credit basis sum mismatch: basis %.3f MW, credited capacity %.3f MW",
			oerrors.ErrInvariant, basis, capacity)
	}
	return nil
}
