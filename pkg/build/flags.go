// SPDX-License-Identifier: MIT
//
// Package build manages build information embedded into the binary at
// compile time via linker flags: the application name, build timestamp,
// Git commit hash and semantic version. The information feeds the CLI
// version output and startup logging.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values of "unknown" are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "spectra",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
)

// Initialize validates and copies build information from ldflags variables
// into the buildFlags struct. This must be called early in program startup
// to ensure all build information is properly set. Returns an error if any
// required build flag is missing.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information. Initialize()
// must be called before this function to ensure the build information
// is valid. This function is safe to call after initialization.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// Summary formats the build information as a single line suitable for
// version output and startup logging.
func (f *ldFlags) Summary() string {
	return fmt.Sprintf("%s (%s, built %s)", f.Version, f.Commit, f.Time)
}
