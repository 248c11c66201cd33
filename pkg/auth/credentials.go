package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// APIKey is one stored YouTube Data API key. Keys are addressed by a
// user-chosen label so a pool of keys can be managed individually.
type APIKey struct {
	Label        string    `json:"label"`
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
}

// KeyStore is the interface for storing and retrieving API keys
type KeyStore interface {
	// Store saves an API key under its label
	Store(key *APIKey) error

	// Retrieve gets the API key stored under a label
	Retrieve(label string) (*APIKey, error)

	// List returns all stored keys
	List() ([]*APIKey, error)

	// Delete removes the key stored under a label
	Delete(label string) error

	// Exists checks if a key is stored under a label
	Exists(label string) bool
}

// Manager handles API key storage with fallback mechanisms
type Manager struct {
	stores []KeyStore
}

// NewManager creates a key manager with the available storage backends:
// system keychain first, encrypted file as fallback, environment variables
// as a read-only last resort.
func NewManager() (*Manager, error) {
	var stores []KeyStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "keys.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves a key using the first store that accepts it
func (m *Manager) Store(key *APIKey) error {
	if key.Label == "" {
		return errors.New("key label is required")
	}
	if key.Key == "" {
		return errors.New("API key is required")
	}

	key.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(key); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store API key: %w", lastErr)
	}
	return errors.New("no available key stores")
}

// Retrieve gets the key from the first store that has it
func (m *Manager) Retrieve(label string) (*APIKey, error) {
	for _, store := range m.stores {
		if key, err := store.Retrieve(label); err == nil && key != nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("no API key stored under label: %s", label)
}

// List returns all stored keys from all stores, label-sorted. When the
// same label appears in several stores the most recently modified copy
// wins.
func (m *Manager) List() ([]*APIKey, error) {
	keyMap := make(map[string]*APIKey)

	for _, store := range m.stores {
		keys, err := store.List()
		if err != nil {
			continue
		}
		for _, key := range keys {
			if existing, ok := keyMap[key.Label]; !ok || key.LastModified.After(existing.LastModified) {
				keyMap[key.Label] = key
			}
		}
	}

	result := make([]*APIKey, 0, len(keyMap))
	for _, key := range keyMap {
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Label < result[j].Label
	})

	return result, nil
}

// Keys returns the raw key strings of every stored key, in label order.
// This is the pool handed to the rotator.
func (m *Manager) Keys() ([]string, error) {
	stored, err := m.List()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(stored))
	for _, key := range stored {
		keys = append(keys, key.Key)
	}
	return keys, nil
}

// Delete removes the key from all stores
func (m *Manager) Delete(label string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(label); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete API key: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("no API key stored under label: %s", label)
	}

	return nil
}

// DeleteAll removes every stored key
func (m *Manager) DeleteAll() error {
	keys, err := m.List()
	if err != nil {
		return err
	}

	for _, key := range keys {
		_ = m.Delete(key.Label)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "ytmarket")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "ytmarket")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "ytmarket")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "ytmarket")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Masked returns a copy of the key safe for display
func (k *APIKey) Masked() *APIKey {
	if k == nil {
		return nil
	}
	return &APIKey{
		Label:        k.Label,
		Key:          maskString(k.Key),
		LastModified: k.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrKeyNotFound      = errors.New("API key not found")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrStoreUnavailable = errors.New("key store unavailable")
)
