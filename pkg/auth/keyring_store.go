package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "ytmarket"
	keyringPrefix  = "apikey_"
)

// KeyringStore implements KeyStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-based key store. Construction probes
// the keychain once so an unusable backend is rejected up front.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves an API key to the system keychain
func (k *KeyringStore) Store(key *APIKey) error {
	if key == nil || key.Label == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal API key: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+key.Label, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets an API key from the system keychain
func (k *KeyringStore) Retrieve(label string) (*APIKey, error) {
	if label == "" {
		return nil, ErrInvalidKey
	}

	data, err := keyring.Get(keyringService, keyringPrefix+label)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var key APIKey
	if err := json.Unmarshal([]byte(data), &key); err != nil {
		return nil, fmt.Errorf("failed to unmarshal API key: %w", err)
	}

	return &key, nil
}

// List returns all stored keys from the keychain. go-keyring cannot
// enumerate entries, so the keychain contributes nothing to listings; the
// encrypted file store carries the listable copy.
func (k *KeyringStore) List() ([]*APIKey, error) {
	return []*APIKey{}, nil
}

// Delete removes an API key from the system keychain
func (k *KeyringStore) Delete(label string) error {
	if label == "" {
		return ErrInvalidKey
	}

	err := keyring.Delete(keyringService, keyringPrefix+label)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if a key is stored in the keychain
func (k *KeyringStore) Exists(label string) bool {
	if label == "" {
		return false
	}

	_, err := keyring.Get(keyringService, keyringPrefix+label)
	return err == nil
}
