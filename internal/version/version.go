// Package version holds the build information of slowserve.
package version

// These variables are set at build time using ldflags:
// go build -ldflags "-X github.com/hotafrika/slowserve/internal/version.Version=1.0.0 -X github.com/hotafrika/slowserve/internal/version.Commit=abc123"
var (
	// Version is the semantic version, "dev" for untagged builds
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "slowserve version " + Info() + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
