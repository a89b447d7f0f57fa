package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltBackend_PutGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.db")
	backend, err := NewBoltBackend(path)
	require.NoError(t, err)
	defer backend.Close()

	key := [32]byte{1, 2, 3}
	_, err = backend.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Put(key, []byte("share-bytes")))
	v, err := backend.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("share-bytes"), v)

	require.NoError(t, backend.Delete(key))
	_, err = backend.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, backend.Delete(key), ErrNotFound)
}

func TestBoltBackend_FlushAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.db")
	backend, err := NewBoltBackend(path)
	require.NoError(t, err)

	key := [32]byte{9}
	require.NoError(t, backend.Put(key, []byte("persisted")))
	require.NoError(t, backend.Flush())
	require.NoError(t, backend.Close())

	reopened, err := NewBoltBackend(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), v)
}
