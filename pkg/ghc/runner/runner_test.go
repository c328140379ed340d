package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCopilot writes a shell script that prints its arguments and the
// token variable, or fails when the prompt contains "fail".
func fakeCopilot(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "copilot")
	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "  copilot 0.0.339  "
  exit 0
fi
case "$3" in
  *fail*) echo "  model not available " >&2; exit 3 ;;
esac
echo "args=$*"
echo "token=${GITHUB_TOKEN:-none}"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestEnviron(t *testing.T) {
	base := []string{"PATH=/bin", "GITHUB_TOKEN=stale", "GITHUB_TOKENX=keep"}
	assert.Equal(t, []string{"PATH=/bin", "GITHUB_TOKENX=keep", "GITHUB_TOKEN=tok"}, Environ(base, "GITHUB_TOKEN", "tok"))
	assert.Equal(t, []string{"PATH=/bin", "GITHUB_TOKENX=keep"}, Environ(base, "GITHUB_TOKEN", ""))
}

func TestRunPassesTokenAndArgs(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	r := &Runner{Binary: fakeCopilot(t), ContextDir: t.TempDir()}

	res, err := r.Run(context.Background(), Request{Prompt: "explain this", Model: "gpt-5"}, "tok_abc123")
	require.NoError(t, err)
	assert.Equal(t, "args=-s -p explain this --model gpt-5\ntoken=tok_abc123", res.Output)
	assert.Empty(t, res.TempPath)
}

func TestRunWithoutToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from_parent")
	r := &Runner{Binary: fakeCopilot(t), ContextDir: t.TempDir()}

	res, err := r.Run(context.Background(), Request{Prompt: "hi"}, "")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "token=none")
}

func TestRunAttachesAndRemovesContext(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(src, []byte("# notes"), 0o600))
	dir := t.TempDir()
	r := &Runner{Binary: fakeCopilot(t), ContextDir: dir}

	res, err := r.Run(context.Background(), Request{Prompt: "summarize", Model: "m", ContextPath: src}, "tok")
	require.NoError(t, err)
	assert.Equal(t, src, res.ContextPath)
	assert.Equal(t, dir, filepath.Dir(res.TempPath))
	assert.True(t, strings.HasPrefix(filepath.Base(res.TempPath), ContextFilePrefix))
	assert.True(t, strings.HasSuffix(res.TempPath, "-notes.md"))
	assert.Contains(t, res.Output, "-p summarize "+res.TempPath+" --model m")

	_, err = os.Stat(res.TempPath)
	assert.True(t, os.IsNotExist(err), "staged copy is removed after the run")
}

func TestRunFailureReturnsStderr(t *testing.T) {
	r := &Runner{Binary: fakeCopilot(t), ContextDir: t.TempDir()}

	_, err := r.Run(context.Background(), Request{Prompt: "please fail", Model: "x"}, "tok")
	require.Error(t, err)
	assert.EqualError(t, err, "model not available")
}

func TestRunMissingBinary(t *testing.T) {
	r := &Runner{Binary: filepath.Join(t.TempDir(), "missing"), ContextDir: t.TempDir()}
	_, err := r.Run(context.Background(), Request{Prompt: "hi"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to run copilot")
}

func TestRunRequiresPrompt(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), Request{Prompt: "  "}, "")
	require.Error(t, err)
}

func TestVersionAndStatus(t *testing.T) {
	bin := fakeCopilot(t)
	r := &Runner{Binary: bin}

	v, err := r.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "copilot 0.0.339", v)

	st := r.Status(context.Background())
	assert.True(t, st.Installed)
	assert.Equal(t, bin, st.Path)
	assert.Equal(t, "copilot 0.0.339", st.Version)

	missing := (&Runner{Binary: filepath.Join(t.TempDir(), "nope")}).Status(context.Background())
	assert.Equal(t, Status{}, missing)
}

func TestAttachContextMissingSource(t *testing.T) {
	_, err := AttachContext(t.TempDir(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to copy context file")
}

func TestCleanupContextFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{ContextFilePrefix + "1-a.txt", ContextFilePrefix + "2-b.txt", "keep.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	n, err := CleanupContextFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())

	n, err = CleanupContextFiles(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
