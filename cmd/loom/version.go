package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"construct-hq/loom/pkg/cli"
	"construct-hq/loom/pkg/telemetry/health"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including Git commit and build date.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if opts.format == cli.FormatJSON {
				return cli.NewFormatter(cli.FormatJSON).FormatTo(out, health.VersionInfo{
					Version:   Version,
					Commit:    GitCommit,
					BuildTime: BuildDate,
					GoVersion: runtime.Version(),
				})
			}
			fmt.Fprintf(out, "Loom %s\n", Version)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
