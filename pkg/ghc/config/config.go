package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	// DefaultClientID is the GitHub OAuth app used for device logins.
	DefaultClientID = "Ov23liTEmQZzOQ2bdFcm"

	StorageFile     = "file"
	StorageKeychain = "keychain"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	Version     string      `yaml:"version"`
	GitHub      GitHub      `yaml:"github"`
	Credentials Credentials `yaml:"credentials"`
	Copilot     Copilot     `yaml:"copilot"`
	Settings    Settings    `yaml:"settings,omitempty"`
}

type GitHub struct {
	ClientID      string   `yaml:"client-id"`
	Scopes        []string `yaml:"scopes,omitempty"`
	DeviceCodeURL string   `yaml:"device-code-url,omitempty"`
	TokenURL      string   `yaml:"token-url,omitempty"`
}

// Endpoint returns the configured OAuth endpoints.
func (g GitHub) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		DeviceAuthURL: g.DeviceCodeURL,
		TokenURL:      g.TokenURL,
	}
}

type Credentials struct {
	// Storage is "file" (KEY=value line in File) or "keychain".
	Storage string `yaml:"storage,omitempty"`
	// File overrides ~/.env.
	File string `yaml:"file,omitempty"`
	Key  string `yaml:"key,omitempty"`
}

type Copilot struct {
	Binary string `yaml:"binary,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

type Settings struct {
	OutputFormat    string `yaml:"output-format,omitempty"`
	NoBrowser       bool   `yaml:"no-browser,omitempty"`
	LogFile         string `yaml:"log-file,omitempty"`
	MetricsTextfile string `yaml:"metrics-textfile,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		GitHub: GitHub{
			ClientID:      DefaultClientID,
			Scopes:        []string{"read:user"},
			DeviceCodeURL: github.Endpoint.DeviceAuthURL,
			TokenURL:      github.Endpoint.TokenURL,
		},
		Credentials: Credentials{
			Storage: StorageFile,
			Key:     "GITHUB_TOKEN",
		},
		Copilot: Copilot{
			Binary: "copilot",
		},
		Settings: Settings{
			OutputFormat: "table",
		},
	}
}

// Load reads path on top of DefaultConfig. A missing file is not an error,
// the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	cfg := DefaultConfig()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.applyDefaults()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// applyDefaults restores values a partial file blanked out.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.GitHub.ClientID == "" {
		c.GitHub.ClientID = def.GitHub.ClientID
	}
	if len(c.GitHub.Scopes) == 0 {
		c.GitHub.Scopes = def.GitHub.Scopes
	}
	if c.GitHub.DeviceCodeURL == "" {
		c.GitHub.DeviceCodeURL = def.GitHub.DeviceCodeURL
	}
	if c.GitHub.TokenURL == "" {
		c.GitHub.TokenURL = def.GitHub.TokenURL
	}
	if c.Credentials.Storage == "" {
		c.Credentials.Storage = def.Credentials.Storage
	}
	if c.Credentials.Key == "" {
		c.Credentials.Key = def.Credentials.Key
	}
	if c.Copilot.Binary == "" {
		c.Copilot.Binary = def.Copilot.Binary
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = def.Settings.OutputFormat
	}
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	if c.Version != VersionV1 {
		return fmt.Errorf("unsupported config version %q", c.Version)
	}
	if strings.TrimSpace(c.GitHub.ClientID) == "" {
		return errors.New("github client-id is required")
	}
	switch c.Credentials.Storage {
	case StorageFile, StorageKeychain:
	default:
		return fmt.Errorf("credentials storage must be %q or %q, got %q", StorageFile, StorageKeychain, c.Credentials.Storage)
	}
	if !keyPattern.MatchString(c.Credentials.Key) {
		return fmt.Errorf("credentials key %q is not a valid environment variable name", c.Credentials.Key)
	}
	switch strings.ToLower(c.Settings.OutputFormat) {
	case "table", "json", "yaml", "":
	default:
		return fmt.Errorf("unsupported output format %q", c.Settings.OutputFormat)
	}
	return nil
}
