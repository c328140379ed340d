package credstore

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/ghcdesk/ghc/pkg/metrics"
)

const (
	// KeychainService is the service name entries are filed under.
	KeychainService  = "ghc"
	keychainLocation = "the system keychain"
)

// KeychainStore keeps the credential in the OS keychain (macOS Keychain,
// Windows Credential Manager, Secret Service on Linux).
type KeychainStore struct {
	Service string
	Key     string

	unsetenv func(string) error
}

var _ Store = (*KeychainStore)(nil)

func NewKeychainStore(key string) *KeychainStore {
	if key == "" {
		key = DefaultKey
	}
	return &KeychainStore{Service: KeychainService, Key: key, unsetenv: os.Unsetenv}
}

func (s *KeychainStore) Location() string {
	return keychainLocation
}

func (s *KeychainStore) Persist(token string) error {
	if err := validateToken(token); err != nil {
		return err
	}
	if err := keyring.Set(s.Service, s.Key, token); err != nil {
		metrics.CredentialWrites.WithLabelValues("persist", "error").Inc()
		return &Error{Op: "write", Location: keychainLocation, Err: err}
	}
	metrics.CredentialWrites.WithLabelValues("persist", "ok").Inc()
	return nil
}

func (s *KeychainStore) Clear() error {
	if s.unsetenv != nil {
		_ = s.unsetenv(s.Key)
	}
	err := keyring.Delete(s.Service, s.Key)
	if err == nil {
		metrics.CredentialWrites.WithLabelValues("clear", "ok").Inc()
		return nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	metrics.CredentialWrites.WithLabelValues("clear", "error").Inc()
	return &Error{Op: "write", Location: keychainLocation, Err: err}
}

func (s *KeychainStore) Load() (string, bool, error) {
	token, err := keyring.Get(s.Service, s.Key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, &Error{Op: "read", Location: keychainLocation, Err: err}
	}
	token = strings.TrimSpace(token)
	return token, token != "", nil
}
