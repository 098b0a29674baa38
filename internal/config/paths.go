package config

import (
	"os"
	"path/filepath"
)

// Paths are the per-user files r2x looks for under ~/.r2x.
type Paths struct {
	HomeDir    string
	ConfigFile string
	// CatalogueFile replaces the embedded catalogue when present and no
	// catalogue is configured.
	CatalogueFile string
	// DefaultsFile replaces the embedded defaults.json under the same rule.
	DefaultsFile string
}

// DefaultPaths returns the paths rooted at the user's home directory.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return pathsUnder(filepath.Join(homeDir, ".r2x")), nil
}

func pathsUnder(home string) *Paths {
	return &Paths{
		HomeDir:       home,
		ConfigFile:    filepath.Join(home, "config.yaml"),
		CatalogueFile: filepath.Join(home, "catalogue.yaml"),
		DefaultsFile:  filepath.Join(home, "defaults.json"),
	}
}

// ResolvePaths expands ~ in the run folder, catalogue and defaults paths.
// An empty catalogue or defaults path falls back to the matching file in
// p when that file exists; otherwise it stays empty and the embedded copy
// is used. p may be nil.
func (c *Config) ResolvePaths(p *Paths) (*Config, error) {
	out := *c
	for _, field := range []*string{&out.RunFolder, &out.Catalogue, &out.Defaults} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return nil, err
		}
		*field = expanded
	}
	if p == nil {
		return &out, nil
	}
	if out.Catalogue == "" && fileExists(p.CatalogueFile) {
		out.Catalogue = p.CatalogueFile
	}
	if out.Defaults == "" && fileExists(p.DefaultsFile) {
		out.Defaults = p.DefaultsFile
	}
	return &out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ExpandPath expands a leading ~ or ~/ to the user's home directory.
// ~user forms are returned unchanged.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if len(path) > 1 && path[1] != '/' && path[1] != filepath.Separator {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, path[1:]), nil
}
