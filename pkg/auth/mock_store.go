package auth

import (
	"sync"
)

// MockStore implements KeyStore for testing purposes
type MockStore struct {
	keys map[string]*APIKey
	mu   sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock key store
func NewMockStore() *MockStore {
	return &MockStore{
		keys: make(map[string]*APIKey),
	}
}

// Store saves a key to the mock store
func (m *MockStore) Store(key *APIKey) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if key == nil || key.Label == "" {
		return ErrInvalidKey
	}

	keyCopy := *key
	m.keys[key.Label] = &keyCopy

	return nil
}

// Retrieve gets a key from the mock store
func (m *MockStore) Retrieve(label string) (*APIKey, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if label == "" {
		return nil, ErrInvalidKey
	}

	key, exists := m.keys[label]
	if !exists {
		return nil, ErrKeyNotFound
	}

	keyCopy := *key
	return &keyCopy, nil
}

// List returns all stored keys from the mock store
func (m *MockStore) List() ([]*APIKey, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []*APIKey
	for _, key := range m.keys {
		keyCopy := *key
		keys = append(keys, &keyCopy)
	}

	return keys, nil
}

// Delete removes a key from the mock store
func (m *MockStore) Delete(label string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if label == "" {
		return ErrInvalidKey
	}

	if _, exists := m.keys[label]; !exists {
		return ErrKeyNotFound
	}

	delete(m.keys, label)
	return nil
}

// Exists checks if a key exists in the mock store
func (m *MockStore) Exists(label string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.keys[label]
	return exists
}

// Clear removes all keys from the mock store
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = make(map[string]*APIKey)
}

// Count returns the number of keys in the mock store
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.keys)
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	manager := &Manager{
		stores: []KeyStore{mockStore},
	}
	return manager, mockStore
}

// NewMockManagerWithStores creates a Manager with multiple stores for testing
func NewMockManagerWithStores(stores ...KeyStore) *Manager {
	return &Manager{
		stores: stores,
	}
}
