package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyWatcherEmitsCreate(t *testing.T) {
	root := t.TempDir()

	w, err := NewNotifyWatcher(root, DefaultIgnorePolicy())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	path := filepath.Join(root, "hello.go")
	require.NoError(t, os.WriteFile(path, []byte("package hello"), 0644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path == path {
				assert.Equal(t, OpCreated, ev.Op)
				return
			}
		case <-deadline:
			t.Fatal("no create event received")
		}
	}
}

func TestNotifyWatcherFiltersIgnoredPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))

	w, err := NewNotifyWatcher(root, DefaultIgnorePolicy())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "edit.swp"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "ok.go"), []byte("package src"), 0644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			assert.NotContains(t, ev.Path, ".swp", "ignored paths must never be emitted")
			if filepath.Base(ev.Path) == "ok.go" {
				return
			}
		case <-deadline:
			t.Fatal("no event for the non-ignored file")
		}
	}
}

func TestNotifyWatcherActive(t *testing.T) {
	w, err := NewNotifyWatcher(t.TempDir(), DefaultIgnorePolicy())
	require.NoError(t, err)
	assert.True(t, w.Active())
	w.Stop()
}
