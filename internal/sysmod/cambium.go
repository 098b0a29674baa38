package sysmod

import (
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

const (
	// ExtFixedLoad is the must-run output of a generator in MW.
	ExtFixedLoad = "Fixed Load"
	// ExtLoadScalar scales the demand of a region.
	ExtLoadScalar = "Load Scalar"
)

var mustRunTechs = []string{"nuclear", "lfill", "biopower"}

type cambiumParams struct {
	Perturb float64 `mapstructure:"perturb"`
}

type cambium struct {
	params cambiumParams
}

func newCambium(params map[string]any) (Pass, error) {
	p := &cambium{params: cambiumParams{Perturb: 1}}
	if err := decodeParams(params, &p.params); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *cambium) Info() Info {
	return Info{
		Name:        "cambium",
		Description: "Derate generators by outage rates, pin must-run output and scale load",
		Optional:    []string{"hurdle_rate"},
		OnMissing:   Skip,
		Consumes:    []string{EffectUnitCapacity},
		Produces:    []string{EffectDeratedCapacity, EffectWheelingCharge},
	}
}

func (p *cambium) Apply(sys *system.System, aux Aux, _ *Env) error {
	log := output.PassLogger("cambium")

	derated := derate(sys)
	log.Debug("derated generators", "count", derated)

	for _, g := range sys.Generators() {
		for _, tech := range mustRunTechs {
			if strings.Contains(g.Technology, tech) {
				setExt(&g.Ext, ExtFixedLoad, g.Capacity)
				break
			}
		}
	}
	for _, r := range sys.Regions() {
		setExt(&r.Ext, ExtLoadScalar, p.params.Perturb)
	}

	if t := aux.Table("hurdle_rate"); t != nil {
		rates := regionPairRates(t, "from_region", "to_region", "hurdle_rate")
		var n int
		for _, l := range sys.Lines() {
			if l.FromRegion == l.ToRegion {
				continue
			}
			rate, ok := rates[[2]string{l.FromRegion, l.ToRegion}]
			if !ok {
				log.Debug("no hurdle rate for line", "line", l.Name)
				continue
			}
			if old, replaced := setWheeling(l, rate); replaced {
				log.Debug("replacing wheeling charge", "line", l.Name, "old", old, "new", rate)
			}
			n++
		}
		log.Debug("applied hurdle rates", "lines", n)
	} else {
		log.Debug("hurdle rate table not found, skipping wheeling charges")
	}
	log.Info("applied cambium configuration", "derated", derated, "perturb", p.params.Perturb)
	return nil
}

// derate folds planned and forced outage rates into capacity. Distributed
// PV has no planned outages.
func derate(sys *system.System) int {
	var n int
	for _, g := range sys.Generators() {
		if strings.Contains(g.Name, "distpv") {
			g.PlannedOutageRate = nil
		}
		if g.PlannedOutageRate == nil || g.ForcedOutageRate == nil {
			continue
		}
		g.Capacity *= (1 - *g.PlannedOutageRate) * (1 - *g.ForcedOutageRate)
		g.PlannedOutageRate = nil
		g.ForcedOutageRate = nil
		g.MeanTimeToRepair = nil
		n++
	}
	return n
}
