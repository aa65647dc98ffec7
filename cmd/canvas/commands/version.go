// ABOUTME: version command reporting how the canvas binary was built
// ABOUTME: Falls back to Go module build info when ldflags were not stamped
package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unstamped = "dev"

var versionInfo = VersionInfo{Version: unstamped, Commit: "none", Date: "unknown"}

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// SetVersion records the ldflags-stamped build values from main
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// resolveVersion fills unstamped fields from the module build info, which is
// what a `go install` build carries instead of ldflags.
func resolveVersion(info VersionInfo, build *debug.BuildInfo) VersionInfo {
	info.GoVersion = runtime.Version()
	if build == nil {
		return info
	}
	if build.GoVersion != "" {
		info.GoVersion = build.GoVersion
	}
	if info.Version == unstamped && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" && s.Value != "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the canvas CLI version, commit, build date and Go toolchain.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			build, _ := debug.ReadBuildInfo()
			info := resolveVersion(versionInfo, build)

			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), info)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Semantic Canvas %s\n", info.Version)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			_, _ = fmt.Fprintf(out, "Built:  %s\n", info.Date)
			_, _ = fmt.Fprintf(out, "Go:     %s\n", info.GoVersion)
			return nil
		},
	}
}
