// Package upgrader brings run folders written by older model versions to the
// layout the catalogue expects.
package upgrader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
)

const (
	// MetaFile holds run metadata, including the model version tag.
	MetaFile = "meta.csv"
	// LegacyVersion is reported for runs whose metadata has no tag.
	LegacyVersion = "0.0.0"
)

// ReadVersion returns the tag column of meta.csv in root. The column is
// found by header name. A missing or empty tag yields LegacyVersion.
func ReadVersion(root string) (string, error) {
	path := filepath.Join(root, MetaFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: version file %s", oerrors.ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", oerrors.ErrRead, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return LegacyVersion, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", oerrors.ErrRead, path, err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "tag") {
			col = i
			break
		}
	}
	if col < 0 {
		return LegacyVersion, nil
	}

	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return LegacyVersion, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", oerrors.ErrRead, path, err)
	}
	if col >= len(row) || strings.TrimSpace(row[col]) == "" {
		return LegacyVersion, nil
	}
	return strings.TrimSpace(row[col]), nil
}

// Move renames a file relative to the run folder.
type Move struct {
	From string
	To   string
}

// pending reports whether the source exists and the target does not.
func (m Move) pending(root string) bool {
	if exists(filepath.Join(root, m.To)) {
		return false
	}
	return exists(filepath.Join(root, m.From))
}

func (m Move) apply(root string) (bool, error) {
	if !m.pending(root) {
		return false, nil
	}
	dst := filepath.Join(root, m.To)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	if err := os.Rename(filepath.Join(root, m.From), dst); err != nil {
		return false, err
	}
	return true, nil
}

// Step is a named set of file moves. Steps are idempotent: a move whose
// target already exists, or whose source is gone, is skipped.
type Step struct {
	Name        string
	Description string
	Moves       []Move
}

// Pending reports whether any move of the step still has work to do.
func (s Step) Pending(root string) bool {
	for _, m := range s.Moves {
		if m.pending(root) {
			return true
		}
	}
	return false
}

// Apply performs the step and reports whether anything moved.
func (s Step) Apply(root string) (bool, error) {
	var changed bool
	for _, m := range s.Moves {
		moved, err := m.apply(root)
		if err != nil {
			return changed, fmt.Errorf("step %s: moving %s: %w", s.Name, m.From, err)
		}
		changed = changed || moved
	}
	return changed, nil
}

// MoveHmapFile moves the hourly map into the representative-period folder.
var MoveHmapFile = Step{
	Name:        "move_hmap_file",
	Description: "Move hmap_allyrs.csv into inputs_case/rep",
	Moves: []Move{
		{From: "inputs_case/hmap_allyrs.csv", To: "inputs_case/rep/hmap_allyrs.csv"},
	},
}

// MoveTransmissionCost renames the legacy 500 kV transmission cost tables.
var MoveTransmissionCost = Step{
	Name:        "move_transmission_cost",
	Description: "Rename 500 kV transmission cost tables",
	Moves: []Move{
		{From: "inputs_case/transmission_distance_cost_500kVac.csv", To: "inputs_case/transmission_cost_ac.csv"},
		{From: "inputs_case/transmission_distance_cost_500kVdc.csv", To: "inputs_case/transmission_distance.csv"},
	},
}

// DefaultSteps returns the upgrade steps in order.
func DefaultSteps() []Step {
	return []Step{MoveHmapFile, MoveTransmissionCost}
}

// Report summarizes an upgrade.
type Report struct {
	Version string
	Applied []string
	Skipped []string
}

// Upgrader runs upgrade steps over one run folder.
type Upgrader struct {
	root   string
	steps  []Step
	dryRun bool
}

// Option configures an Upgrader.
type Option func(*Upgrader)

// WithSteps replaces the default steps.
func WithSteps(steps ...Step) Option {
	return func(u *Upgrader) { u.steps = steps }
}

// WithDryRun reports pending steps without touching files.
func WithDryRun(dry bool) Option {
	return func(u *Upgrader) { u.dryRun = dry }
}

// New returns an upgrader for the run folder at root.
func New(root string, opts ...Option) *Upgrader {
	u := &Upgrader{root: root, steps: DefaultSteps()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upgrade detects the run version and applies every pending step.
func (u *Upgrader) Upgrade() (*Report, error) {
	version, err := ReadVersion(u.root)
	if err != nil {
		return nil, err
	}
	output.Debug("detected run version", "version", version, "folder", u.root)

	report := &Report{Version: version}
	for _, step := range u.steps {
		if u.dryRun {
			if step.Pending(u.root) {
				report.Applied = append(report.Applied, step.Name)
			} else {
				report.Skipped = append(report.Skipped, step.Name)
			}
			continue
		}
		changed, err := step.Apply(u.root)
		if err != nil {
			return report, err
		}
		if changed {
			output.Info("applied upgrade step", "step", step.Name)
			report.Applied = append(report.Applied, step.Name)
		} else {
			report.Skipped = append(report.Skipped, step.Name)
		}
	}
	return report, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
