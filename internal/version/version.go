package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/execfmt/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/execfmt/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/execfmt/internal/version.Date={{.Date}}
)

// String returns the version line printed by the version command.
func String() string {
	return fmt.Sprintf("execfmt %s (commit %s, built %s)", Version, Commit, Date)
}
