package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghcdesk/ghc/pkg/ghc/config"
)

type testEnv struct {
	configPath string
	envFile    string
	vars       map[string]string
}

// newTestEnv writes a config that keeps the credential in a temp file and
// stubs browser and poll sleeps.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		configPath: filepath.Join(dir, "config.yaml"),
		envFile:    filepath.Join(dir, ".env"),
		vars:       map[string]string{},
	}
	cfg := config.DefaultConfig()
	cfg.Credentials.File = env.envFile
	cfg.Settings.NoBrowser = true
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, config.Save(env.configPath, &cfg))

	prevSleep, prevBrowser := pollSleep, openBrowser
	pollSleep = func(context.Context, time.Duration) error { return nil }
	openBrowser = func(string) error { return nil }
	t.Cleanup(func() {
		pollSleep, openBrowser = prevSleep, prevBrowser
	})
	return env
}

func (e *testEnv) lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *testEnv) run(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: e.configPath, OutputWriter: buf, LookupEnv: e.lookup})
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return buf.String(), err
}

// fakeGitHub answers the device flow; tokens are served in order, the last
// one repeating.
func fakeGitHub(t *testing.T, tokens ...map[string]any) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/login/device/code", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dev_secret",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://example.com/device",
			"expires_in":       900,
			"interval":         5,
		})
	})
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		answer := tokens[0]
		if len(tokens) > 1 {
			tokens = tokens[1:]
		}
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(answer)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func withServer(srv *httptest.Server) func(*config.Config) {
	return func(c *config.Config) {
		c.GitHub.DeviceCodeURL = srv.URL + "/login/device/code"
		c.GitHub.TokenURL = srv.URL + "/login/oauth/access_token"
	}
}
