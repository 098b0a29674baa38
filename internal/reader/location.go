package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand substitutes {name} placeholders from vars. Brace groups containing
// commas are left alone for glob alternation; any other unknown placeholder
// is an error.
func Expand(location string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(location, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := vars[key]; ok {
			return v
		}
		missing = append(missing, key)
		return m
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved placeholder(s) %s in %q", strings.Join(missing, ", "), location)
	}
	return out, nil
}

// Resolve expands location relative to root. Glob patterns (doublestar
// syntax) resolve to their lexically first match. A location that does not
// exist returns an error wrapping errors.ErrNotFound.
func Resolve(root, location string, vars map[string]string) (string, error) {
	expanded, err := Expand(location, vars)
	if err != nil {
		return "", err
	}
	path := filepath.FromSlash(expanded)
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	if !hasMeta(expanded) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", oerrors.ErrNotFound, path)
			}
			return "", err
		}
		return path, nil
	}

	matches, err := doublestar.FilepathGlob(path)
	if err != nil {
		return "", fmt.Errorf("glob %q: %w", expanded, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no match for %s", oerrors.ErrNotFound, path)
	}
	sort.Strings(matches)
	if len(matches) > 1 {
		output.Debug("glob matched several files, using first", "pattern", expanded, "matches", len(matches), "using", matches[0])
	}
	return matches[0], nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
