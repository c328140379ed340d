package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghcdesk/ghc/pkg/ghc/output"
	"github.com/ghcdesk/ghc/pkg/ghc/runner"
)

func NewRunCommand() *cobra.Command {
	var (
		model       string
		contextPath string
	)
	cmd := &cobra.Command{
		Use:   "run PROMPT...",
		Short: "Run a copilot prompt with the stored GitHub token",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			accessor, _, err := rt.accessor()
			if err != nil {
				return err
			}
			override, _ := rt.resolveTokenOverride()
			tok, ok, err := accessor.Resolve(override)
			if err != nil {
				return err
			}
			if !ok {
				rt.Logger().Warn("No GitHub token found, running copilot without one. Use `ghc auth login` to store a token.")
			}
			if model == "" {
				model = rt.cfg.Copilot.Model
			}

			res, err := rt.runner().Run(cmd.Context(), runner.Request{
				Prompt:      strings.Join(args, " "),
				Model:       model,
				ContextPath: contextPath,
			}, tok)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteObject(rt.Writer(), format, res)
			}
			_, _ = fmt.Fprintln(rt.Writer(), res.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model passed to copilot (defaults to copilot.model from config)")
	cmd.Flags().StringVar(&contextPath, "context", "", "File to attach to the prompt")
	return cmd
}

func (rt *runtimeState) runner() *runner.Runner {
	r := &runner.Runner{Key: rt.credentialKey(), Log: rt.Logger()}
	if rt.cfg != nil {
		r.Binary = rt.cfg.Copilot.Binary
	}
	return r
}
