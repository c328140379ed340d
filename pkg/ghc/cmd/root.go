package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghcdesk/ghc/pkg/ghc/config"
	"github.com/ghcdesk/ghc/pkg/ghc/credstore"
	"github.com/ghcdesk/ghc/pkg/ghc/output"
	"github.com/ghcdesk/ghc/pkg/ghc/token"
	"github.com/ghcdesk/ghc/pkg/metrics"
	"github.com/ghcdesk/ghc/pkg/system"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	// LookupEnv reads process variables; os.LookupEnv when nil.
	LookupEnv func(string) (string, bool)
}

type runtimeState struct {
	configPath           string
	cfg                  *config.Config
	outputFormat         string
	tokenOverride        string
	tokenStorageOverride string
	verbose              bool
	noBrowser            bool
	writer               io.Writer
	lookupEnv            func(string) (string, bool)
	log                  *zap.SugaredLogger
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		LookupEnv:    os.LookupEnv,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter, lookupEnv: cfg.LookupEnv}

	root := &cobra.Command{
		Use:           "ghc",
		Short:         "GitHub device login and copilot CLI runner",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.lookupEnv == nil {
				rt.lookupEnv = os.LookupEnv
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.outputFormat == "" {
				rt.outputFormat = rt.getenv("GHC_OUTPUT")
			}
			if rt.tokenStorageOverride == "" {
				rt.tokenStorageOverride = rt.getenv("GHC_TOKEN_STORAGE")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(rt.getenv("GHC_VERBOSE"), "true")
			}
			if !rt.noBrowser {
				rt.noBrowser = strings.EqualFold(rt.getenv("GHC_NO_BROWSER"), "true")
			}

			// Commands that must work without a readable config.
			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "path" {
				return nil
			}
			return rt.EnsureConfigLoaded()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			rt.finish()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&rt.tokenOverride, "token", "", "GitHub token override (defaults to $GITHUB_TOKEN)")
	root.PersistentFlags().StringVar(&rt.tokenStorageOverride, "token-storage", "", "Token storage backend: file or keychain")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&rt.noBrowser, "no-browser", false, "Do not open the verification page automatically")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewAuthCommand(),
		NewRunCommand(),
		NewCopilotCommand(),
		NewConfigCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) getenv(name string) string {
	lookup := rt.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, _ := lookup(name)
	return v
}

func (rt *runtimeState) OutputFormat() (output.Format, error) {
	if rt.outputFormat != "" {
		return output.ParseFormat(rt.outputFormat)
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return output.ParseFormat(rt.cfg.Settings.OutputFormat)
	}
	return output.FormatTable, nil
}

func (rt *runtimeState) TokenStorage() string {
	if rt.tokenStorageOverride != "" {
		return strings.ToLower(rt.tokenStorageOverride)
	}
	if rt.cfg != nil && rt.cfg.Credentials.Storage != "" {
		return rt.cfg.Credentials.Storage
	}
	return config.StorageFile
}

func (rt *runtimeState) NoBrowser() bool {
	if rt.noBrowser {
		return true
	}
	return rt.cfg != nil && rt.cfg.Settings.NoBrowser
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

// Logger builds the CLI logger on first use, once the config (and with it
// the optional log file) is known.
func (rt *runtimeState) Logger() *zap.SugaredLogger {
	if rt.log != nil {
		return rt.log
	}
	opts := system.LogOptions{Verbose: rt.verbose}
	if rt.cfg != nil {
		opts.File = rt.cfg.Settings.LogFile
	}
	log, err := system.NewLogger(opts)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		log = system.NewNopLogger()
	}
	rt.log = log
	return log
}

// finish exports metrics when a textfile is configured and flushes the
// logger. Commands that fail call it themselves since cobra skips the
// post-run hooks on error.
func (rt *runtimeState) finish() {
	if rt.cfg != nil && rt.cfg.Settings.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(rt.cfg.Settings.MetricsTextfile); err != nil {
			rt.Logger().Warnw("Failed to write metrics textfile", "path", rt.cfg.Settings.MetricsTextfile, "error", err)
		}
	}
	if rt.log != nil {
		_ = rt.log.Sync()
	}
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPathValue())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", rt.configPathValue(), err)
	}
	rt.cfg = cfg
	return nil
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}

func (rt *runtimeState) credentialKey() string {
	if rt.cfg != nil && rt.cfg.Credentials.Key != "" {
		return rt.cfg.Credentials.Key
	}
	return credstore.DefaultKey
}

// credentialStore returns the backend selected by --token-storage or the
// config file.
func (rt *runtimeState) credentialStore() (credstore.Store, error) {
	key := rt.credentialKey()
	switch storage := rt.TokenStorage(); storage {
	case config.StorageKeychain:
		return credstore.NewKeychainStore(key), nil
	case config.StorageFile:
		if rt.cfg != nil && rt.cfg.Credentials.File != "" {
			return credstore.NewFileStore(rt.cfg.Credentials.File, key), nil
		}
		store, err := credstore.DefaultFileStore(key)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported token storage: %s", storage)
	}
}

// resolveTokenOverride returns --token, else the credential variable from
// the process environment, and a label naming where it came from.
func (rt *runtimeState) resolveTokenOverride() (string, string) {
	if strings.TrimSpace(rt.tokenOverride) != "" {
		return rt.tokenOverride, "--token"
	}
	key := rt.credentialKey()
	if v := rt.getenv(key); strings.TrimSpace(v) != "" {
		return v, "$" + key
	}
	return "", ""
}

func (rt *runtimeState) accessor() (token.Accessor, credstore.Store, error) {
	store, err := rt.credentialStore()
	if err != nil {
		return token.Accessor{}, nil, err
	}
	return token.Accessor{Store: store}, store, nil
}
