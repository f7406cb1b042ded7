// Package version exposes the build metadata stamped into the estl binary.
//
// Release builds override the variables via:
//
//	go build -ldflags "-X github.com/snir-david/ESTL/pkg/version.Version=v1.2.3"
package version

import "runtime/debug"

var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the VCS revision the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// InitBinaryVersion fills Commit and Date from the VCS metadata the Go
// toolchain embeds, for builds where ldflags left them at their defaults.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}
