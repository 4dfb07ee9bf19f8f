package version

// Version is the release of the indicator tools, set at build time with
// -ldflags "-X github.com/rxtech-lab/argo-ta/internal/version.Version=v1.2.3".
// "main" marks a development build.
var Version = "main"

// GetVersion returns the build version reported by the CLIs and /healthz.
func GetVersion() string {
	return Version
}
