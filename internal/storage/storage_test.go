package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendMissingKey(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	value, found, err := backend.Get(context.Background(), ContactsKey)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestFileBackendPutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, ContactsKey, []byte(`[]`)))
	require.NoError(t, backend.Put(ctx, ContactsKey, []byte(`[{"id":"1"}]`)))

	value, found, err := backend.Get(ctx, ContactsKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, string(value))

	info, err := os.Stat(backend.Path(ContactsKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileBackendRejectsBadKeys(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		assert.Error(t, backend.Put(ctx, key, []byte("x")), "key %q", key)
		_, _, err := backend.Get(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestFileBackendHonoursCancelledContext(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, backend.Put(ctx, ContactsKey, []byte("[]")), context.Canceled)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	backend, err := Open(BackendFile, dir)
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, backend)
	require.NoError(t, backend.Close())

	backend, err = Open(BackendSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, backend)
	require.NoError(t, backend.Close())

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
