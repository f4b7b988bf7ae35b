package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version, commit and the Go runtime the binary was built with.
Without a commit set at link time, the VCS revision recorded by the Go
toolchain is shown instead.`,
	Run: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	cmd.Printf("pkfinder version %s\n", Version)
	cmd.Printf("  Commit: %s\n", commit(debug.ReadBuildInfo))
	cmd.Printf("  Go version: %s\n", runtime.Version())
	cmd.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// commit returns the ldflags commit, or the vcs.revision build setting
// when the commit was not stamped.
func commit(readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}
