// Package registry holds the named file descriptors of one run and serves
// their processed datasets.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/NatLabRockies/r2x-reeds/internal/descriptor"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/procspec"
	"github.com/NatLabRockies/r2x-reeds/internal/reader"
)

// DefaultConcurrency bounds the number of files Preload reads at once.
const DefaultConcurrency = 4

// Registry maps descriptor names to descriptors and caches the processed
// dataset of every successful read. Descriptors are immutable once
// registered.
type Registry struct {
	root        string
	vars        map[string]string
	adapter     *reader.Adapter
	concurrency int

	mu          sync.RWMutex
	descriptors map[string]*descriptor.Descriptor
	order       []string
	cache       map[string]*frame.Dataset
}

// Option configures a Registry.
type Option func(*Registry)

// WithVars sets the placeholder values used in locations and filters.
func WithVars(vars map[string]string) Option {
	return func(r *Registry) {
		r.vars = make(map[string]string, len(vars))
		for k, v := range vars {
			r.vars[k] = v
		}
	}
}

// WithAdapter sets the reader adapter. The default adapter uses the
// built-in read functions.
func WithAdapter(a *reader.Adapter) Option {
	return func(r *Registry) { r.adapter = a }
}

// WithConcurrency bounds parallel reads in Preload.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates an empty registry rooted at a run folder.
func New(root string, opts ...Option) (*Registry, error) {
	r := &Registry{
		root:        root,
		vars:        map[string]string{},
		concurrency: DefaultConcurrency,
		descriptors: map[string]*descriptor.Descriptor{},
		cache:       map[string]*frame.Dataset{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.adapter == nil {
		a, err := reader.NewAdapter(nil, 0)
		if err != nil {
			return nil, err
		}
		r.adapter = a
	}
	return r, nil
}

// Root returns the run folder.
func (r *Registry) Root() string {
	return r.root
}

// Vars returns a copy of the placeholder values.
func (r *Registry) Vars() map[string]string {
	out := make(map[string]string, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

// Register adds d. The name must be unique and the processing spec must be
// valid for the kind of data the reader produces.
func (r *Registry) Register(d *descriptor.Descriptor) error {
	if d == nil || d.Name == "" {
		return oerrors.NewSchemaMismatch("", "name", "descriptor has no name")
	}
	kind, err := r.adapter.Kind(d.Function())
	if err != nil {
		return withName(err, d.Name)
	}
	if err := d.Validate(kind); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.descriptors[d.Name]; ok {
		return fmt.Errorf("%w: %q", oerrors.ErrDuplicateName, d.Name)
	}
	r.descriptors[d.Name] = d.Clone()
	r.order = append(r.order, d.Name)
	return nil
}

// RegisterAll registers every descriptor and stops at the first error.
func (r *Registry) RegisterAll(list []*descriptor.Descriptor) error {
	for _, d := range list {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[name]
	return ok
}

// Descriptor returns a copy of the named descriptor.
func (r *Registry) Descriptor(name string) (*descriptor.Descriptor, error) {
	r.mu.RLock()
	d, ok := r.descriptors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, notRegistered(name)
	}
	return d.Clone(), nil
}

type readOptions struct {
	noCache bool
}

// ReadOption configures a single Read.
type ReadOption func(*readOptions)

// WithoutCache reads from disk even when a cached result exists. The fresh
// result is not stored.
func WithoutCache() ReadOption {
	return func(o *readOptions) { o.noCache = true }
}

// Read returns the processed dataset for name.
//
// An unregistered name fails with errors.ErrNotRegistered. A missing file
// yields an absent dataset when the descriptor is optional and
// errors.ErrMissingRequiredFile otherwise.
func (r *Registry) Read(name string, opts ...ReadOption) (*frame.Dataset, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.RLock()
	d, ok := r.descriptors[name]
	cached, hit := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return nil, notRegistered(name)
	}
	if hit && !o.noCache {
		return cached.Clone(), nil
	}

	ds, err := r.load(d)
	if err != nil {
		return nil, err
	}
	if !o.noCache {
		r.mu.Lock()
		r.cache[name] = ds
		r.mu.Unlock()
	}
	return ds.Clone(), nil
}

func (r *Registry) load(d *descriptor.Descriptor) (*frame.Dataset, error) {
	log := output.FileLogger(d.Name)

	path, err := reader.Resolve(r.root, d.Location, r.vars)
	if err != nil {
		if !errors.Is(err, oerrors.ErrNotFound) {
			return nil, fmt.Errorf("resolving %q: %w", d.Name, err)
		}
		if d.Optional() {
			log.Debug("optional file not present", "location", d.Location)
			return frame.Absent(d.Name), nil
		}
		return nil, fmt.Errorf("%w: %q at %s", oerrors.ErrMissingRequiredFile, d.Name, d.Location)
	}

	raw, err := r.adapter.Read(path, d.Function(), d.Reader.Kwargs)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", d.Name, err)
	}
	raw.Name = d.Name

	spec := d.ProcSpec.Resolve(r.vars)
	ds, err := procspec.Apply(raw, spec)
	if err != nil {
		return nil, err
	}
	if ds.Table != nil {
		log.Debug("processed", "ops", spec.String(), "rows", ds.Table.Len())
	} else {
		log.Debug("processed", "ops", spec.String(), "keys", len(ds.Record))
	}
	return ds, nil
}

// Invalidate evicts the cached result for name. Unknown names are ignored.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, name)
}

// Preload reads the named files concurrently and caches the results. With no
// names it reads everything registered. The first error cancels outstanding
// reads.
func (r *Registry) Preload(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = r.Names()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := r.Read(name)
			return err
		})
	}
	return g.Wait()
}

// Cached returns the names with a cached result, sorted.
func (r *Registry) Cached() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.cache))
	for name := range r.cache {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func notRegistered(name string) error {
	return fmt.Errorf("%w: %q", oerrors.ErrNotRegistered, name)
}

func withName(err error, name string) error {
	var sm *oerrors.SchemaMismatchError
	if errors.As(err, &sm) && sm.File == "" {
		return sm.WithFile(name)
	}
	return err
}
