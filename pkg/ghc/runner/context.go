package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ContextFilePrefix marks staged copies in the context directory.
const ContextFilePrefix = ".copilot-context-"

// DefaultContextDir is <tmp>/ghc.
func DefaultContextDir() string {
	return filepath.Join(os.TempDir(), "ghc")
}

// AttachContext copies path into dir as
// .copilot-context-<unix millis>-<basename> and returns the copy's path.
func AttachContext(dir, path string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("Failed to create temp dir: %w", err)
	}
	name := fmt.Sprintf("%s%d-%s", ContextFilePrefix, time.Now().UnixMilli(), filepath.Base(path))
	target := filepath.Join(dir, name)
	if err := copyFile(path, target); err != nil {
		return "", fmt.Errorf("Failed to copy context file: %w", err)
	}
	return target, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// CleanupContextFiles removes staged copies left in dir and returns how
// many were deleted. A missing dir is not an error.
func CleanupContextFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), ContextFilePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
