// Package version reports how the r2x binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/NatLabRockies/r2x-reeds/internal/version.Version=...".
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Modules whose versions change how catalogues are vetted or files are read.
const (
	cueModule    = "cuelang.org/go"
	sqliteModule = "modernc.org/sqlite"
)

// Info is the build summary printed by `r2x version`.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	// Deps maps selected module paths to the versions linked in.
	Deps map[string]string `json:"deps,omitempty"`
}

// Get returns the build information of the running binary. When the ldflags
// were not set, the main module version and vcs settings from the embedded
// build info are used instead.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	fromBuildInfo(&info, bi)
	return info
}

func fromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if strings.HasSuffix(info.Version, "-dev") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "unknown":
			info.GitCommit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}
	for _, dep := range bi.Deps {
		if dep.Path != cueModule && dep.Path != sqliteModule {
			continue
		}
		if info.Deps == nil {
			info.Deps = map[string]string{}
		}
		v := dep.Version
		if dep.Replace != nil {
			v = dep.Replace.Version
		}
		info.Deps[dep.Path] = v
	}
}

// String renders the multi-line form used by the version command.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "r2x %s\n", i.Version)
	fmt.Fprintf(&b, "  commit: %s\n", i.GitCommit)
	fmt.Fprintf(&b, "  built:  %s\n", i.BuildDate)
	fmt.Fprintf(&b, "  go:     %s", i.GoVersion)
	for _, path := range []string{cueModule, sqliteModule} {
		if v, ok := i.Deps[path]; ok {
			fmt.Fprintf(&b, "\n  %s %s", path, v)
		}
	}
	return b.String()
}
