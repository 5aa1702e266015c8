package version

import "runtime"

// These variables are set at build time using ldflags, e.g.
// -ldflags "-X github.com/wtc-cli/wtc/internal/version.Version=1.2.0"
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "unknown"
	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Template is the cobra version template for `wtc --version`
const Template = "wtc {{.Version}}\n"

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetCommit returns the commit hash
func GetCommit() string {
	return Commit
}

// GetBuildDate returns the build date
func GetBuildDate() string {
	return BuildDate
}

// GetFullVersion returns the version with commit, build date and Go runtime
func GetFullVersion() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	s := v + " (commit: " + Commit
	if BuildDate != "unknown" && BuildDate != "" {
		s += ", built: " + BuildDate
	}
	return s + ", " + runtime.Version() + ")"
}
