package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghcdesk/ghc/pkg/ghc/config"
	"github.com/ghcdesk/ghc/pkg/ghc/output"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand(DefaultConfig())
	assert.Equal(t, "ghc", root.Use)
	for _, name := range []string{"auth", "run", "copilot", "config", "completion", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "output", "token", "token-storage", "verbose", "no-browser"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRuntimeStateOutputFormat(t *testing.T) {
	rt := &runtimeState{outputFormat: "json"}
	f, err := rt.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSON, f)

	rt = &runtimeState{cfg: &config.Config{Settings: config.Settings{OutputFormat: "yaml"}}}
	f, err = rt.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, output.FormatYAML, f)

	rt = &runtimeState{}
	f, err = rt.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, output.FormatTable, f)

	_, err = (&runtimeState{outputFormat: "xml"}).OutputFormat()
	require.Error(t, err)
}

func TestRuntimeStateTokenStorage(t *testing.T) {
	assert.Equal(t, config.StorageFile, (&runtimeState{}).TokenStorage())
	assert.Equal(t, config.StorageKeychain, (&runtimeState{tokenStorageOverride: "Keychain"}).TokenStorage())
	cfg := config.DefaultConfig()
	cfg.Credentials.Storage = config.StorageKeychain
	assert.Equal(t, config.StorageKeychain, (&runtimeState{cfg: &cfg}).TokenStorage())
}

func TestEnvironmentOverrides(t *testing.T) {
	env := newTestEnv(t, nil)
	env.vars["GHC_OUTPUT"] = "json"

	out, err := env.run("auth", "status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"has_token":false,"tail":null}`, out)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Credentials.Key = "NOT-VALID" })
	_, err := env.run("auth", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestMetricsTextfileWritten(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "ghc.prom")
	env := newTestEnv(t, func(c *config.Config) { c.Settings.MetricsTextfile = textfile })

	_, err := env.run("auth", "status")
	require.NoError(t, err)
	content, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ghc_login_attempts_total")
}

func TestLogFileReceivesLogs(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "ghc.log")
	srv := fakeGitHub(t, map[string]any{"access_token": "tok_abc123"})
	env := newTestEnv(t, func(c *config.Config) {
		withServer(srv)(c)
		c.Settings.LogFile = logFile
	})

	_, err := env.run("auth", "login")
	require.NoError(t, err)
	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Device login completed")
	assert.NotContains(t, string(content), "tok_abc123")
	assert.NotContains(t, string(content), "dev_secret")
}

func TestVersionCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: "/nonexistent/config.yaml", OutputWriter: buf})
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(buf.String(), "ghc "))

	buf.Reset()
	root = NewRootCommand(Config{ConfigPath: "/nonexistent/config.yaml", OutputWriter: buf})
	root.SetArgs([]string{"version", "-o", "json"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), `"version"`)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		buf := &bytes.Buffer{}
		root := NewRootCommand(Config{ConfigPath: "/nonexistent/config.yaml", OutputWriter: buf})
		root.SetArgs([]string{"completion", shell})
		require.NoError(t, root.Execute(), shell)
		assert.NotEmpty(t, buf.String(), shell)
	}

	root := NewRootCommand(Config{ConfigPath: "/nonexistent/config.yaml", OutputWriter: &bytes.Buffer{}})
	root.SetArgs([]string{"completion", "tcsh"})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shell")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghc", "config.yaml")
	run := func(args ...string) (string, error) {
		buf := &bytes.Buffer{}
		root := NewRootCommand(Config{ConfigPath: path, OutputWriter: buf})
		root.SetArgs(args)
		root.SetErr(&bytes.Buffer{})
		err := root.Execute()
		return buf.String(), err
	}

	out, err := run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = run("config", "init", "--model", "gpt-5", "--token-storage", "keychain")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized config at "+path)

	_, err = run("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config already exists")

	_, err = run("config", "init", "--force", "--token-storage", "vault")
	require.Error(t, err)

	out, err = run("config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "model: gpt-5")
	assert.Contains(t, out, "storage: keychain")
	assert.Contains(t, out, "client-id: "+config.DefaultClientID)
}

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "copilot")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho \"$* token=${GITHUB_TOKEN:-none}\"\n"), 0o755))
	env := newTestEnv(t, func(c *config.Config) {
		c.Copilot.Binary = bin
		c.Copilot.Model = "default-model"
	})
	require.NoError(t, os.WriteFile(env.envFile, []byte("GITHUB_TOKEN=tok_file\n"), 0o600))

	out, err := env.run("run", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "-s -p hello world --model default-model token=tok_file\n", out)

	out, err = env.run("run", "hi", "-m", "other", "--token", "tok_flag")
	require.NoError(t, err)
	assert.Equal(t, "-s -p hi --model other token=tok_flag\n", out)

	out, err = env.run("run", "hi", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"output":"-s -p hi --model default-model token=tok_file"}`, out)

	_, err = env.run("run")
	require.Error(t, err)
}

func TestCopilotCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "copilot")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho \"copilot 1.2.3\"\n"), 0o755))
	env := newTestEnv(t, func(c *config.Config) { c.Copilot.Binary = bin })

	out, err := env.run("copilot", "version")
	require.NoError(t, err)
	assert.Equal(t, "copilot 1.2.3\n", out)

	out, err = env.run("copilot", "status", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"installed":true,"version":"copilot 1.2.3","path":"`+bin+`"}`, out)
}
