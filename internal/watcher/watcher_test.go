package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loupe/internal/pubsub"
	"loupe/internal/watcher"
)

func startWatcher(t *testing.T, root string, debounce time.Duration) (*watcher.Watcher, <-chan pubsub.Event[watcher.Signal]) {
	t.Helper()
	w, err := watcher.New(watcher.Config{Root: root, Debounce: debounce})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ch := w.Broker().Subscribe(context.Background())
	require.NoError(t, w.Start())
	return w, ch
}

func TestWatcher_CoalescesBurstIntoOneSignal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("seed"), 0o644))

	_, ch := startWatcher(t, dir, 50*time.Millisecond)

	// Writes spaced under the window must collapse into a single signal.
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("v%d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-ch:
		assert.Equal(t, pubsub.ChangedEvent, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected coalesced signal")
	}

	select {
	case <-ch:
		t.Fatal("burst must produce exactly one signal")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_SeparatedEventsProduceSeparateSignals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("seed"), 0o644))

	_, ch := startWatcher(t, dir, 40*time.Millisecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("v%d", i)), 0o644))
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("expected signal %d", i+1)
		}
	}
}

func TestWatcher_IgnoresGitMetadata(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))

	_, ch := startWatcher(t, dir, 40*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "index"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "held.lock"), []byte("x"), 0o644))

	select {
	case <-ch:
		t.Fatal("metadata writes must not signal")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_PicksUpNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	_, ch := startWatcher(t, dir, 40*time.Millisecond)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	// Creating the directory itself signals; drain it.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected signal for created directory")
	}

	require.NoError(t, os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("x"), 0o644))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected signal for file in new directory")
	}
}

func TestWatcher_StartFailsOnMissingRoot(t *testing.T) {
	w, err := watcher.New(watcher.Config{Root: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	err = w.Start()
	assert.ErrorIs(t, err, watcher.ErrWatchUnavailable)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, _ := startWatcher(t, t.TempDir(), 40*time.Millisecond)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
