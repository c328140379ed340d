package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghcdesk/ghc/pkg/ghc/output"
	"github.com/ghcdesk/ghc/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show ghc version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			// Works without the root command too, e.g. when embedded.
			writer := cmd.OutOrStdout()
			format := output.FormatTable
			if rt, err := getRuntime(cmd); err == nil {
				writer = rt.Writer()
				if format, err = rt.OutputFormat(); err != nil {
					return err
				}
			}

			if format != output.FormatTable {
				return output.WriteObject(writer, format, info)
			}
			_, _ = fmt.Fprintf(writer, "ghc %s (commit: %s, built: %s, %s)\n", info.Version, info.GitCommit, info.BuildDate, info.Platform)
			return nil
		},
	}
}
