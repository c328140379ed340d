// Package runner executes the copilot CLI with the resolved GitHub token
// in its environment.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/ghcdesk/ghc/pkg/system"
)

const DefaultBinary = "copilot"

// Request is one prompt run.
type Request struct {
	Prompt string
	Model  string
	// ContextPath is an optional file whose staged copy is appended to the
	// prompt.
	ContextPath string
}

// Result of a successful run.
type Result struct {
	Output      string `json:"output" yaml:"output"`
	TempPath    string `json:"temp_path,omitempty" yaml:"temp_path,omitempty"`
	ContextPath string `json:"context_path,omitempty" yaml:"context_path,omitempty"`
}

// Status describes the copilot installation.
type Status struct {
	Installed bool   `json:"installed" yaml:"installed"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

type Runner struct {
	Binary string
	// Key is the environment variable the token is passed in.
	Key string
	// ContextDir receives staged context files.
	ContextDir string
	Log        *zap.SugaredLogger
}

// Environ returns base with every key= entry replaced by key=token. With
// an empty token the variable is removed so a stale value cannot leak in.
func Environ(base []string, key, token string) []string {
	env := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if strings.HasPrefix(kv, key+"=") {
			continue
		}
		env = append(env, kv)
	}
	if token != "" {
		env = append(env, key+"="+token)
	}
	return env
}

// Run executes `<binary> -s -p <prompt> --model <model>`. The prompt gets
// the staged context path appended when req.ContextPath is set; the staged
// copy is removed once the process exits.
func (r *Runner) Run(ctx context.Context, req Request, token string) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	prompt := req.Prompt
	var staged string
	if strings.TrimSpace(req.ContextPath) != "" {
		p, err := AttachContext(r.contextDir(), req.ContextPath)
		if err != nil {
			return nil, err
		}
		staged = p
		defer func() { _ = os.Remove(staged) }()
		prompt = prompt + " " + staged
	}

	args := []string{"-s", "-p", prompt}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}
	r.logger().Debugw("Running copilot", "binary", r.binary(), "model", req.Model,
		"context", staged, "token", system.Redact(token))

	out, err := r.exec(ctx, token, args...)
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, TempPath: staged, ContextPath: req.ContextPath}, nil
}

// Version returns the trimmed output of `<binary> --version`.
func (r *Runner) Version(ctx context.Context) (string, error) {
	return r.exec(ctx, "", "--version")
}

// Status reports whether the binary can be found on PATH and its version.
func (r *Runner) Status(ctx context.Context) Status {
	path, err := exec.LookPath(r.binary())
	if err != nil {
		return Status{}
	}
	st := Status{Installed: true, Path: path}
	if v, err := r.Version(ctx); err == nil {
		st.Version = v
	}
	return st
}

func (r *Runner) exec(ctx context.Context, token string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Env = Environ(os.Environ(), r.key(), token)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = fmt.Sprintf("copilot exited with status %d", exitErr.ExitCode())
			}
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("Failed to run copilot: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Runner) key() string {
	if r.Key == "" {
		return "GITHUB_TOKEN"
	}
	return r.Key
}

func (r *Runner) contextDir() string {
	if r.ContextDir == "" {
		return DefaultContextDir()
	}
	return r.ContextDir
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Log == nil {
		return system.NewNopLogger()
	}
	return r.Log
}
