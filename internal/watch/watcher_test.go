package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startWatcher(t *testing.T, path string) (*Watcher, <-chan error) {
	t.Helper()
	w, err := New(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	return w, done
}

func waitEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case _, ok := <-w.Events():
		require.True(t, ok, "events channel closed early")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcherSignalsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.json")
	w, done := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))
	waitEvent(t, w)

	require.NoError(t, w.Close())
	assert.NoError(t, <-done)
}

func TestWatcherSignalsOnRenameOver(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.json")
	w, done := startWatcher(t, path)

	tmp := filepath.Join(dir, ".contacts-123.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`[{"id":"1"}]`), 0600))
	require.NoError(t, os.Rename(tmp, path))
	waitEvent(t, w)

	require.NoError(t, w.Close())
	assert.NoError(t, <-done)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, done := startWatcher(t, filepath.Join(dir, "contacts.json"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.jsonl"), []byte("{}\n"), 0600))

	select {
	case <-w.Events():
		t.Fatal("unexpected event for unrelated file")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, w.Close())
	assert.NoError(t, <-done)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.json")
	w, err := New(path, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))
	}
	waitEvent(t, w)

	select {
	case <-w.Events():
		t.Fatal("burst should collapse into a single event")
	case <-time.After(250 * time.Millisecond):
	}

	require.NoError(t, w.Close())
	assert.NoError(t, <-done)
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(filepath.Join(t.TempDir(), "contacts.json"))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)

	_, ok := <-w.Events()
	assert.False(t, ok, "events should be closed after Run returns")
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "contacts.json"))
	assert.Error(t, err)
}
