package auth

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// EnvironmentStore implements KeyStore over the YTMARKET_API_KEYS
// environment variable. It is read-only: keys set in the environment can be
// listed and used but not modified.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based key store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// envKeys reads the raw key pool from the environment; keys are separated
// by commas or newlines
func envKeys() []string {
	raw := os.Getenv("YTMARKET_API_KEYS")
	if raw == "" {
		raw = os.Getenv("YTMARKET_API_KEY")
	}
	if raw == "" {
		return nil
	}

	var keys []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(key *APIKey) error {
	return ErrStoreUnavailable
}

// Retrieve gets a key by its positional label ("env1", "env2", ...)
func (e *EnvironmentStore) Retrieve(label string) (*APIKey, error) {
	for _, key := range e.list() {
		if key.Label == label {
			return key, nil
		}
	}
	return nil, ErrKeyNotFound
}

// List returns the keys currently present in the environment
func (e *EnvironmentStore) List() ([]*APIKey, error) {
	return e.list(), nil
}

func (e *EnvironmentStore) list() []*APIKey {
	var keys []*APIKey
	for i, raw := range envKeys() {
		keys = append(keys, &APIKey{
			Label:        fmt.Sprintf("env%d", i+1),
			Key:          raw,
			LastModified: time.Now(),
		})
	}
	return keys
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if a key with the label is present in the environment
func (e *EnvironmentStore) Exists(label string) bool {
	_, err := e.Retrieve(label)
	return err == nil
}
