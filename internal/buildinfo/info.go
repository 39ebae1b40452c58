package buildinfo

import "fmt"

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// UserAgent is sent on outbound website and image fetches.
func UserAgent() string {
	return fmt.Sprintf("Mozilla/5.0 (compatible; bunny-cli/%s)", Version)
}

// String is the one-line version banner.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
