// Package descriptor defines file descriptors and the catalogue format that
// lists them.
package descriptor

import (
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/procspec"
	"github.com/NatLabRockies/r2x-reeds/internal/reader"
)

// Info is human-facing metadata about a file.
type Info struct {
	Description  string `yaml:"description,omitempty"`
	IsInput      bool   `yaml:"is_input,omitempty"`
	IsOptional   bool   `yaml:"is_optional,omitempty"`
	IsTimeseries bool   `yaml:"is_timeseries,omitempty"`
	Units        string `yaml:"units,omitempty"`
}

// Reader selects the read function and its keyword options.
type Reader struct {
	Function string         `yaml:"function,omitempty"`
	Kwargs   map[string]any `yaml:"kwargs,omitempty"`
}

// Descriptor describes one named input file.
type Descriptor struct {
	Name     string         `yaml:"name"`
	Location string         `yaml:"location"`
	Info     Info           `yaml:"info,omitempty"`
	Reader   Reader         `yaml:"reader,omitempty"`
	ProcSpec *procspec.Spec `yaml:"proc_spec,omitempty"`
}

// Function returns the configured read function id, falling back to the
// location's extension.
func (d *Descriptor) Function() string {
	if d.Reader.Function != "" {
		return d.Reader.Function
	}
	return reader.InferFunction(d.Location)
}

// Optional reports whether a missing file is acceptable.
func (d *Descriptor) Optional() bool {
	return d.Info.IsOptional
}

// Validate checks the processing spec against the kind of data the reader
// produces.
func (d *Descriptor) Validate(kind frame.Kind) error {
	if err := d.ProcSpec.Validate(kind); err != nil {
		return withName(err, d.Name)
	}
	return nil
}

// Clone returns a copy that shares no mutable state with d.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	if d.Reader.Kwargs != nil {
		c.Reader.Kwargs = frame.DeepCopy(d.Reader.Kwargs).(map[string]any)
	}
	c.ProcSpec = d.ProcSpec.Clone()
	return &c
}
