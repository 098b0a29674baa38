package sysmod

import (
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

type hurdleRateParams struct {
	HurdleRate *float64 `mapstructure:"hurdle_rate"`
}

type hurdleRate struct {
	params hurdleRateParams
}

func newHurdleRate(params map[string]any) (Pass, error) {
	p := &hurdleRate{}
	if err := decodeParams(params, &p.params); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *hurdleRate) Info() Info {
	return Info{
		Name:        "hurdle_rate",
		Description: "Set a uniform wheeling charge on lines between regions",
		OnMissing:   Skip,
		Produces:    []string{EffectWheelingCharge},
		Idempotent:  true,
	}
}

func (p *hurdleRate) Apply(sys *system.System, _ Aux, _ *Env) error {
	log := output.PassLogger("hurdle_rate")
	if p.params.HurdleRate == nil {
		log.Warn("no hurdle_rate parameter, skipping")
		return nil
	}
	rate := *p.params.HurdleRate

	var n int
	for _, l := range sys.Lines() {
		if l.FromRegion == l.ToRegion {
			continue
		}
		if old, replaced := setWheeling(l, rate); replaced {
			log.Debug("replacing wheeling charge", "line", l.Name, "old", old, "new", rate)
		}
		n++
	}
	log.Info("applied hurdle rate", "rate", rate, "lines", n)
	return nil
}
