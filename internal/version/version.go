package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Processor names the processing software in exported result metadata.
const Processor = "lidarcal"

// String formats the build information for -version output and report headers.
func String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", Processor, Version, GitSHA, BuildTime)
}
