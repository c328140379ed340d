package credstore

import (
	"errors"
	"os"
	"strings"

	"github.com/ghcdesk/ghc/pkg/metrics"
)

// DefaultKey is the variable name the token is stored under and handed to
// the copilot CLI with.
const DefaultKey = "GITHUB_TOKEN"

// Store holds at most one credential. Persist overwrites, Clear is
// idempotent, Load reports whether a non-blank value exists.
type Store interface {
	Persist(token string) error
	Clear() error
	Load() (string, bool, error)
	// Location is a human readable name of the medium, safe to show users.
	Location() string
}

// FileStore keeps the credential as a KEY=value line of an EnvFile.
type FileStore struct {
	File    EnvFile
	Key     string
	display string

	unsetenv func(string) error
}

var _ Store = (*FileStore)(nil)

// NewFileStore stores key in the file at path.
func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{File: EnvFile{Path: path}, Key: key, display: path, unsetenv: os.Unsetenv}
}

// DefaultFileStore stores key in ~/.env.
func DefaultFileStore(key string) (*FileStore, error) {
	path, err := DefaultFilePath(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	s := NewFileStore(path, key)
	s.display = "~/" + defaultFileName
	return s, nil
}

func (s *FileStore) Location() string {
	return s.display
}

func (s *FileStore) Persist(token string) error {
	if err := validateToken(token); err != nil {
		return err
	}
	lines, err := s.File.ReadLines()
	if err != nil {
		return s.fail("read", err)
	}
	lines, _ = WithoutKey(lines, s.Key)
	lines = append(lines, s.Key+"="+token)
	if err := s.File.WriteLines(lines); err != nil {
		metrics.CredentialWrites.WithLabelValues("persist", "error").Inc()
		return s.fail("write", err)
	}
	metrics.CredentialWrites.WithLabelValues("persist", "ok").Inc()
	return nil
}

// Clear drops the key from the file and from the process environment. The
// file is only rewritten when it actually held the key.
func (s *FileStore) Clear() error {
	if s.unsetenv != nil {
		_ = s.unsetenv(s.Key)
	}
	lines, err := s.File.ReadLines()
	if err != nil {
		return s.fail("read", err)
	}
	kept, dropped := WithoutKey(lines, s.Key)
	if dropped == 0 {
		return nil
	}
	if err := s.File.WriteLines(kept); err != nil {
		metrics.CredentialWrites.WithLabelValues("clear", "error").Inc()
		return s.fail("write", err)
	}
	metrics.CredentialWrites.WithLabelValues("clear", "ok").Inc()
	return nil
}

func (s *FileStore) Load() (string, bool, error) {
	lines, err := s.File.ReadLines()
	if err != nil {
		return "", false, s.fail("read", err)
	}
	token, ok := Lookup(lines, s.Key)
	return token, ok, nil
}

func (s *FileStore) fail(op string, err error) error {
	return &Error{Op: op, Location: s.display, Err: err}
}

func validateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("refusing to store an empty token")
	}
	if strings.ContainsAny(token, "\r\n") {
		return errors.New("token contains a line break")
	}
	return nil
}
