package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghcdesk/ghc/pkg/ghc/output"
	"github.com/ghcdesk/ghc/pkg/ghc/runner"
)

func NewCopilotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copilot",
		Short: "Inspect the copilot CLI",
	}
	cmd.AddCommand(
		newCopilotVersionCommand(),
		newCopilotStatusCommand(),
		newCopilotCleanupCommand(),
	)
	return cmd
}

func newCopilotVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the copilot CLI version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			v, err := rt.runner().Version(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), v)
			return nil
		},
	}
}

func newCopilotStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the copilot CLI is installed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			st := rt.runner().Status(cmd.Context())
			if format != output.FormatTable {
				return output.WriteObject(rt.Writer(), format, st)
			}
			if !st.Installed {
				_, _ = fmt.Fprintf(rt.Writer(), "%s not found on PATH\n", rt.cfg.Copilot.Binary)
				return nil
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%s (%s)\n", st.Version, st.Path)
			return nil
		},
	}
}

func newCopilotCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove staged context files left in the temp directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			dir := runner.DefaultContextDir()
			n, err := runner.CleanupContextFiles(dir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Removed %d context file(s) from %s\n", n, dir)
			return nil
		},
	}
}
