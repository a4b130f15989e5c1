// Package version reports the build identity of the mipbuild binary.
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X mipbuild/pkg/version.Version=1.2.3 -X mipbuild/pkg/version.Commit=abc".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get returns the version information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Short returns the version, with the commit appended for non-release builds.
func (i Info) Short() string {
	if i.Version == "dev" && i.GitCommit != "none" {
		return fmt.Sprintf("%s+%s", i.Version, i.GitCommit)
	}
	return i.Version
}

// String renders all fields on one line, e.g.
// mipbuild version 1.2.3 (commit: abcdefg) built at 2024-04-27T15:04:05Z with go1.23.1 on linux/amd64
func (i Info) String() string {
	return fmt.Sprintf("mipbuild version %s (commit: %s) built at %s with %s on %s",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}
