package reader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
)

// DefaultCacheSize is the number of raw reads kept by an Adapter.
const DefaultCacheSize = 256

// Adapter reads resolved paths through registered functions. Raw datasets
// are cached by path, function, kwargs and file modification time, so two
// descriptors over the same file share one read.
type Adapter struct {
	funcs *Functions
	cache *lru.Cache[string, *frame.Dataset]
}

// NewAdapter creates an adapter. A cacheSize of 0 uses DefaultCacheSize.
func NewAdapter(funcs *Functions, cacheSize int) (*Adapter, error) {
	if funcs == nil {
		funcs = DefaultFunctions()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *frame.Dataset](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Adapter{funcs: funcs, cache: cache}, nil
}

// Functions returns the function registry used by the adapter.
func (a *Adapter) Functions() *Functions {
	return a.funcs
}

// Kind reports the dataset kind a function id produces.
func (a *Adapter) Kind(function string) (frame.Kind, error) {
	_, kind, err := a.funcs.Lookup(function)
	return kind, err
}

// Read returns the raw dataset at path. The returned dataset is owned by the
// caller.
func (a *Adapter) Read(path, function string, kwargs map[string]any) (*frame.Dataset, error) {
	if function == "" {
		function = InferFunction(path)
	}
	fn, kind, err := a.funcs.Lookup(function)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", oerrors.ErrNotFound, path)
		}
		return nil, readError(path, err)
	}

	key, err := cacheKey(path, function, kwargs, info)
	if err != nil {
		return nil, err
	}
	if ds, ok := a.cache.Get(key); ok {
		output.Debug("raw read cache hit", "path", path)
		return ds.Clone(), nil
	}

	output.Debug("reading file", "path", path, "function", function, "size", humanize.Bytes(uint64(info.Size())))
	ds, err := fn(path, kwargs)
	if err != nil {
		return nil, err
	}
	if ds.Kind() != kind {
		return nil, readError(path, fmt.Errorf("function %q returned %s data, declared %s", function, ds.Kind(), kind))
	}
	a.cache.Add(key, ds)
	return ds.Clone(), nil
}

// Purge empties the raw read cache.
func (a *Adapter) Purge() {
	a.cache.Purge()
}

func cacheKey(path, function string, kwargs map[string]any, info os.FileInfo) (string, error) {
	kw, err := json.Marshal(kwargs)
	if err != nil {
		return "", fmt.Errorf("encoding reader kwargs: %w", err)
	}
	return fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%d", function, path, kw, info.ModTime().UnixNano(), info.Size()), nil
}
