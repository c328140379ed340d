package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghcdesk/ghc/pkg/ghc/auth"
	"github.com/ghcdesk/ghc/pkg/ghc/output"
)

// Replaced in tests.
var (
	openBrowser = auth.OpenBrowser
	pollSleep   func(ctx context.Context, d time.Duration) error
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with GitHub",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login with the GitHub device flow and store the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			store, err := rt.credentialStore()
			if err != nil {
				return err
			}
			log := rt.Logger()

			client := auth.NewDeviceClient(rt.cfg.GitHub.Endpoint(), rt.cfg.GitHub.Scopes, log)
			if pollSleep != nil {
				client.Sleep = pollSleep
			}
			notifier := auth.NewChannelNotifier(auth.LoginCompleteEvent, 1)
			manager := &auth.LoginManager{
				Client:   client,
				ClientID: rt.cfg.GitHub.ClientID,
				Store:    store,
				Notifier: notifier,
				Log:      log,
			}

			start, err := manager.StartLogin(cmd.Context())
			if err != nil {
				rt.finish()
				return err
			}
			if format == output.FormatTable {
				output.WriteLoginStart(rt.Writer(), start)
			} else if err := output.WriteObject(rt.Writer(), format, start); err != nil {
				return err
			}
			if !rt.NoBrowser() {
				if err := openBrowser(start.AuthURL); err != nil {
					log.Debugw("Could not open browser", "url", start.AuthURL, "error", err)
				}
			}

			event := <-notifier.Events()
			manager.Wait()

			if format == output.FormatTable {
				if event.Status == auth.StatusOK {
					_, _ = fmt.Fprintln(rt.Writer(), event.Message)
				}
			} else if err := output.WriteObject(rt.Writer(), format, event); err != nil {
				return err
			}
			if event.Status != auth.StatusOK {
				rt.finish()
				return errors.New(event.Message)
			}
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a GitHub token is available",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			accessor, store, err := rt.accessor()
			if err != nil {
				return err
			}
			override, source := rt.resolveTokenOverride()
			st, err := accessor.Status(override)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteObject(rt.Writer(), format, st)
			}
			if source == "" {
				source = store.Location()
			}
			output.WriteStatusTable(rt.Writer(), st, source)
			return nil
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			store, err := rt.credentialStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged out, token removed from %s\n", store.Location())
			return nil
		},
	}
}
