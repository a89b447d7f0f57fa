package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_WriteReadDeleteFlush(t *testing.T) {
	backend := NewMemoryBackend()
	engine := NewEngine(backend, nil)
	defer engine.Shutdown()

	key := [32]byte{1}
	_, err := engine.Read(key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, engine.Write(key, []byte("v1")))
	v, err := engine.Read(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, engine.Flush())

	require.NoError(t, engine.Delete(key))
	_, err = engine.Read(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestEngine_ShutdownThenReopen exercises the S5 scenario from the spec:
// a write durably lands before shutdown acknowledges, and a freshly opened
// engine over the same backend file observes it.
func TestEngine_ShutdownThenReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.db")
	backend, err := NewBoltBackend(path)
	require.NoError(t, err)

	engine := NewEngine(backend, nil)
	key := [32]byte{7}
	require.NoError(t, engine.Write(key, []byte("durable")))
	require.NoError(t, engine.Shutdown())

	reopenedBackend, err := NewBoltBackend(path)
	require.NoError(t, err)
	reopenedEngine := NewEngine(reopenedBackend, nil)
	defer reopenedEngine.Shutdown()

	v, err := reopenedEngine.Read(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), v)
}

func TestEngine_OperationsAfterShutdownFail(t *testing.T) {
	backend := NewMemoryBackend()
	engine := NewEngine(backend, nil)
	require.NoError(t, engine.Shutdown())

	_, err := engine.Read([32]byte{1})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, engine.Write([32]byte{1}, []byte("x")), ErrClosed)
	assert.ErrorIs(t, engine.Delete([32]byte{1}), ErrClosed)
}

func TestEngine_DoubleShutdownDoesNotPanic(t *testing.T) {
	backend := NewMemoryBackend()
	engine := NewEngine(backend, nil)
	require.NoError(t, engine.Shutdown())
	assert.ErrorIs(t, engine.Shutdown(), ErrClosed)
}
