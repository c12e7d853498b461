// internal/secrets/store.go
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "dealwatch"
	// FallbackDir is the directory for file-based storage (when keyring fails)
	FallbackDir = ".dealwatch/secrets"
	// WebhookKey names the stored webhook URL
	WebhookKey = "webhook-url"
)

// ErrNotFound is returned when no secret is stored under a name
var ErrNotFound = errors.New("secret not found")

// Store keeps small secrets in the OS keyring, or in 0600 files under Dir
// where no keyring is reachable (Codespaces, CI, containers)
type Store struct {
	Dir      string
	fileOnly bool
}

// NewStore probes the keyring once and picks the backend
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locate home directory: %w", err)
	}
	return &Store{
		Dir:      filepath.Join(home, FallbackDir),
		fileOnly: useFileBasedStorage(),
	}, nil
}

// NewFileStore always stores secrets as files under dir
func NewFileStore(dir string) *Store {
	return &Store{Dir: dir, fileOnly: true}
}

// Backend names the storage in use
func (s *Store) Backend() string {
	if s.fileOnly {
		return "file"
	}
	return "keyring"
}

func useFileBasedStorage() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return true
	}

	testKey := "_test_keyring_access_"
	if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
		return true
	}
	_ = keyring.Delete(KeyringService, testKey)
	return false
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return "", fmt.Errorf("create secrets dir: %w", err)
	}
	return filepath.Join(s.Dir, name), nil
}

// Set stores value under name
func (s *Store) Set(name, value string) error {
	if s.fileOnly {
		path, err := s.path(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(value), 0600); err != nil {
			return fmt.Errorf("failed to save secret file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, name, value); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Get returns the value stored under name, or ErrNotFound
func (s *Store) Get(name string) (string, error) {
	if s.fileOnly {
		path, err := s.path(name)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	value, err := keyring.Get(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return value, nil
}

// Delete removes name. Deleting a missing secret is not an error.
func (s *Store) Delete(name string) error {
	if s.fileOnly {
		path, err := s.path(name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete secret file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
