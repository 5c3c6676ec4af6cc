package version

import "runtime/debug"

var version = "dev"

// Version returns the module version embedded by the build when available,
// falling back to the value set via -ldflags or "dev".
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		return info.Main.Version
	}
	return version
}
