package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, _ := NewMockManager()

	key := &APIKey{Label: "primary", Key: "AIzaSyTestKey1234567890"}
	require.NoError(t, manager.Store(key))

	retrieved, err := manager.Retrieve("primary")
	require.NoError(t, err)
	assert.Equal(t, "primary", retrieved.Label)
	assert.Equal(t, "AIzaSyTestKey1234567890", retrieved.Key)
	assert.False(t, retrieved.LastModified.IsZero(), "store must stamp the key")
}

func TestManagerRejectsIncompleteKeys(t *testing.T) {
	manager, _ := NewMockManager()

	assert.Error(t, manager.Store(&APIKey{Key: "no-label"}))
	assert.Error(t, manager.Store(&APIKey{Label: "no-key"}))
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("backend down")
	working := NewMockStore()

	manager := NewMockManagerWithStores(broken, working)

	require.NoError(t, manager.Store(&APIKey{Label: "primary", Key: "k"}))
	assert.Equal(t, 0, broken.Count())
	assert.Equal(t, 1, working.Count())
}

func TestManagerListMergesStoresNewestWins(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()
	older.keys["primary"] = &APIKey{Label: "primary", Key: "stale", LastModified: time.Now().Add(-time.Hour)}
	newer.keys["primary"] = &APIKey{Label: "primary", Key: "fresh", LastModified: time.Now()}
	older.keys["backup"] = &APIKey{Label: "backup", Key: "b", LastModified: time.Now()}

	manager := NewMockManagerWithStores(older, newer)

	keys, err := manager.List()
	require.NoError(t, err)
	require.Len(t, keys, 2)

	// label-sorted: backup, primary
	assert.Equal(t, "backup", keys[0].Label)
	assert.Equal(t, "fresh", keys[1].Key)
}

func TestManagerKeysReturnsPoolInLabelOrder(t *testing.T) {
	manager, _ := NewMockManager()
	require.NoError(t, manager.Store(&APIKey{Label: "b-key", Key: "second"}))
	require.NoError(t, manager.Store(&APIKey{Label: "a-key", Key: "first"}))

	keys, err := manager.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, keys)
}

func TestManagerDelete(t *testing.T) {
	manager, store := NewMockManager()
	require.NoError(t, manager.Store(&APIKey{Label: "primary", Key: "k"}))

	require.NoError(t, manager.Delete("primary"))
	assert.Equal(t, 0, store.Count())

	assert.Error(t, manager.Delete("primary"))
}

func TestManagerDeleteAll(t *testing.T) {
	manager, store := NewMockManager()
	require.NoError(t, manager.Store(&APIKey{Label: "a", Key: "1"}))
	require.NoError(t, manager.Store(&APIKey{Label: "b", Key: "2"}))

	require.NoError(t, manager.DeleteAll())
	assert.Equal(t, 0, store.Count())
}

func TestMasked(t *testing.T) {
	key := &APIKey{Label: "primary", Key: "AIzaSyTestKey1234567890"}
	masked := key.Masked()

	assert.Equal(t, "primary", masked.Label)
	assert.Equal(t, "AIza...7890", masked.Key)
	assert.NotEqual(t, key.Key, masked.Key)
}

func TestMaskedShortKey(t *testing.T) {
	key := &APIKey{Label: "tiny", Key: "short"}
	assert.Equal(t, "********", key.Masked().Key)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("YTMARKET_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "keys.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	key := &APIKey{Label: "primary", Key: "AIzaSyEncrypted123", LastModified: time.Now()}
	require.NoError(t, store.Store(key))

	// fresh store instance must decrypt what the first one wrote
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	retrieved, err := reopened.Retrieve("primary")
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyEncrypted123", retrieved.Key)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.enc")

	t.Setenv("YTMARKET_PASSPHRASE", "correct")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&APIKey{Label: "primary", Key: "secret"}))

	t.Setenv("YTMARKET_PASSPHRASE", "wrong")
	intruder, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = intruder.Retrieve("primary")
	assert.Error(t, err)
}

func TestEncryptedFileStoreDeleteLastKeyRemovesFile(t *testing.T) {
	t.Setenv("YTMARKET_PASSPHRASE", "test")
	path := filepath.Join(t.TempDir(), "keys.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&APIKey{Label: "only", Key: "k"}))
	require.NoError(t, store.Delete("only"))

	_, err = store.Retrieve("only")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestEnvironmentStoreSplitsKeyPool(t *testing.T) {
	t.Setenv("YTMARKET_API_KEYS", "key-one, key-two\nkey-three")

	store := NewEnvironmentStore()
	keys, err := store.List()
	require.NoError(t, err)
	require.Len(t, keys, 3)

	assert.Equal(t, "env1", keys[0].Label)
	assert.Equal(t, "key-one", keys[0].Key)
	assert.Equal(t, "key-three", keys[2].Key)
}

func TestEnvironmentStoreSingleKeyFallback(t *testing.T) {
	t.Setenv("YTMARKET_API_KEYS", "")
	t.Setenv("YTMARKET_API_KEY", "solo-key")

	store := NewEnvironmentStore()
	keys, err := store.List()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "solo-key", keys[0].Key)
}

func TestEnvironmentStoreIsReadOnly(t *testing.T) {
	store := NewEnvironmentStore()

	assert.ErrorIs(t, store.Store(&APIKey{Label: "x", Key: "y"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)
}
