// Package pipeline runs an ordered list of modifier passes over an assembled
// system.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/registry"
	"github.com/NatLabRockies/r2x-reeds/internal/sysmod"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

// Reader is the part of the file registry the pipeline reads tables from.
type Reader interface {
	Read(name string, opts ...registry.ReadOption) (*frame.Dataset, error)
}

// Status is the outcome of one pass.
type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
)

// PassReport describes one executed pass.
type PassReport struct {
	Name     string
	Status   Status
	Duration time.Duration
	// Missing lists required tables that were absent when skipped.
	Missing []string
}

// Result is a finalized system and what each pass did to reach it.
type Result struct {
	System *system.System
	Passes []PassReport
}

// Pipeline is a validated, ordered list of passes.
type Pipeline struct {
	passes     []sysmod.Pass
	orderCheck bool
	observe    func(State, string)

	state State
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithoutOrderCheck disables ordering validation in New. Finalize checks
// still run.
func WithoutOrderCheck() Option {
	return func(p *Pipeline) { p.orderCheck = false }
}

// WithObserver calls fn on every state transition with the state and the
// current pass name, if any.
func WithObserver(fn func(State, string)) Option {
	return func(p *Pipeline) { p.observe = fn }
}

// New validates the pass order and returns a pipeline.
func New(passes []sysmod.Pass, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		passes:     passes,
		orderCheck: true,
		state:      StateUnbuilt,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.orderCheck {
		if err := ValidateOrder(passes); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FromConfig creates the configured passes in order.
func FromConfig(entries []config.PassConfig, opts ...Option) (*Pipeline, error) {
	passes := make([]sysmod.Pass, 0, len(entries))
	for _, e := range entries {
		pass, err := sysmod.New(e.Name, e.Params)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	return New(passes, opts...)
}

// ValidateOrder fails with ErrPassOrder when a pass consumes an effect a
// later pass produces, or when a non-idempotent pass appears twice.
func ValidateOrder(passes []sysmod.Pass) error {
	seen := map[string]bool{}
	for i, pass := range passes {
		info := pass.Info()
		if seen[info.Name] && !info.Idempotent {
			return &PassOrderError{Name: info.Name}
		}
		seen[info.Name] = true

		for _, effect := range info.Consumes {
			for _, later := range passes[i+1:] {
				if later.Info().Name == info.Name {
					continue
				}
				for _, produced := range later.Info().Produces {
					if produced == effect {
						return &PassOrderError{Name: info.Name, Effect: effect, Producer: later.Info().Name}
					}
				}
			}
		}
	}
	return nil
}

// Names returns the pass names in run order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.passes))
	for i, pass := range p.passes {
		out[i] = pass.Info().Name
	}
	return out
}

// State returns the state reached by the last Run.
func (p *Pipeline) State() State {
	return p.state
}

// Run applies every pass to a copy of sys. The input is never modified.
//
// Sequence:
//  1. ASSEMBLED: sys is cloned and wired.
//  2. PASS i:    the pass's tables are read, it is applied, the graph is rewired.
//  3. FINALIZED: Check runs for every applied pass implementing sysmod.Checker.
//
// Any error moves the pipeline to StateFailed and no system is returned.
func (p *Pipeline) Run(sys *system.System, reg Reader, env *sysmod.Env) (*Result, error) {
	p.transition(StateUnbuilt, "")
	if sys == nil {
		return nil, p.fail(errors.New("no system to modify"))
	}

	work := sys.Clone()
	if err := work.Wire(); err != nil {
		return nil, p.fail(fmt.Errorf("wiring assembled system: %w", err))
	}
	p.transition(StateAssembled, "")

	result := &Result{System: work}
	var applied []sysmod.Pass
	for i, pass := range p.passes {
		info := pass.Info()
		p.transition(StatePass(i), info.Name)
		log := output.PassLogger(info.Name)
		start := time.Now()

		aux, missing, err := readAux(reg, info)
		if err != nil {
			return nil, p.fail(&ApplyError{Index: i, Name: info.Name, Stage: "aux", Err: err})
		}
		if len(missing) > 0 {
			if info.OnMissing == sysmod.Fail {
				return nil, p.fail(&ApplyError{Index: i, Name: info.Name, Stage: "aux",
					Err: &oerrors.MissingAuxiliaryDataError{Pass: info.Name, Table: missing[0]}})
			}
			log.Warn("required tables missing, skipping pass", "tables", missing)
			result.Passes = append(result.Passes, PassReport{
				Name: info.Name, Status: StatusSkipped, Duration: time.Since(start), Missing: missing,
			})
			continue
		}

		if err := pass.Apply(work, aux, env); err != nil {
			return nil, p.fail(&ApplyError{Index: i, Name: info.Name, Stage: "apply", Err: err})
		}
		if err := work.Wire(); err != nil {
			return nil, p.fail(&ApplyError{Index: i, Name: info.Name, Stage: "wire", Err: err})
		}
		applied = append(applied, pass)
		result.Passes = append(result.Passes, PassReport{
			Name: info.Name, Status: StatusApplied, Duration: time.Since(start),
		})
		log.Debug("pass complete", "took", time.Since(start), "components", work.Len())
	}

	if err := checkAll(work, applied); err != nil {
		return nil, p.fail(err)
	}
	p.transition(StateFinalized, "")
	return result, nil
}

// readAux reads the required and optional tables of a pass. It returns the
// required tables that are absent. Unregistered names count as absent.
func readAux(reg Reader, info sysmod.Info) (sysmod.Aux, []string, error) {
	aux := sysmod.Aux{}
	var missing []string
	read := func(name string) error {
		if reg == nil {
			aux[name] = frame.Absent(name)
			return nil
		}
		ds, err := reg.Read(name)
		switch {
		case errors.Is(err, oerrors.ErrNotRegistered), errors.Is(err, oerrors.ErrMissingRequiredFile):
			aux[name] = frame.Absent(name)
		case err != nil:
			return err
		default:
			aux[name] = ds
		}
		return nil
	}

	for _, name := range info.Requires {
		if err := read(name); err != nil {
			return nil, nil, err
		}
		if aux[name].IsAbsent() {
			missing = append(missing, name)
		}
	}
	for _, name := range info.Optional {
		if err := read(name); err != nil {
			return nil, nil, err
		}
	}
	return aux, missing, nil
}

func checkAll(sys *system.System, applied []sysmod.Pass) error {
	var errs []error
	checked := map[string]bool{}
	for _, pass := range applied {
		c, ok := pass.(sysmod.Checker)
		name := pass.Info().Name
		if !ok || checked[name] {
			continue
		}
		checked[name] = true
		if err := c.Check(sys); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return utilerrors.NewAggregate(errs)
}

func (p *Pipeline) transition(s State, pass string) {
	p.state = s
	if p.observe != nil {
		p.observe(s, pass)
	}
}

func (p *Pipeline) fail(err error) error {
	p.transition(StateFailed, "")
	return err
}
