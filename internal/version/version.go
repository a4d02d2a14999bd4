// Package version holds build metadata for the docchat binary,
// injected via ldflags.
package version

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
