package buildconfig

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash
func Commit() string {
	return commit
}

// ServiceName is reported on /health and as the tracing resource name.
func ServiceName() string {
	return "causalchain"
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"service": ServiceName(),
		"version": version,
		"commit":  commit,
	}
}
