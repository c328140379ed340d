package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultFileName = ".env"

var errMissingHome = errors.New("Missing HOME or USERPROFILE environment variable")

// DefaultFilePath returns $HOME/.env, falling back to %USERPROFILE%\.env.
func DefaultFilePath(lookup func(string) (string, bool)) (string, error) {
	for _, name := range []string{"HOME", "USERPROFILE"} {
		if home, ok := lookup(name); ok && strings.TrimSpace(home) != "" {
			return filepath.Join(home, defaultFileName), nil
		}
	}
	return "", &Error{Op: "locate", Err: errMissingHome}
}

// EnvFile is a text file holding one KEY=value assignment per line. It is
// handled as a whole: read all lines, filter or append, write all lines.
type EnvFile struct {
	Path string
}

// ReadLines returns the file's lines without their trailing newline. A
// missing file reads as empty.
func (f EnvFile) ReadLines() ([]string, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// WriteLines replaces the file content with lines, each newline-terminated.
// The new content is written to a temporary file in the same directory and
// renamed over the target, so a failed write leaves the old file intact.
// Symlinks are followed and the existing permission bits are kept.
func (f EnvFile) WriteLines(lines []string) error {
	target := f.Path
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	mode := os.FileMode(0o600)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

// assigns reports whether line assigns key. Leading whitespace is ignored.
func assigns(line, key string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), key+"=")
}

// WithoutKey returns lines minus every assignment of key, and how many were
// dropped. Other lines keep their content and order.
func WithoutKey(lines []string, key string) ([]string, int) {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if assigns(line, key) {
			continue
		}
		kept = append(kept, line)
	}
	return kept, len(lines) - len(kept)
}

// Lookup returns the first non-blank value assigned to key.
func Lookup(lines []string, key string) (string, bool) {
	for _, line := range lines {
		value, ok := strings.CutPrefix(strings.TrimSpace(line), key+"=")
		if !ok {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value, true
		}
	}
	return "", false
}
