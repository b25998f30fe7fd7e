package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatchUnavailable means the native watch facility could not be set up.
// It is non-fatal: callers degrade to the polling watcher.
var ErrWatchUnavailable = errors.New("native filesystem watch unavailable")

// Watcher delivers normalized change events for a working tree.
type Watcher interface {
	Start(ctx context.Context) error
	Stop()
	Events() <-chan Event
	// Active reports whether a native watch is live. The polling fallback
	// always reports false so the operator surface can show degraded mode.
	Active() bool
}

// New returns a native watcher for root, or the polling fallback when the
// native facility cannot be created.
func New(root string, ignore IgnorePolicy, pollInterval time.Duration) Watcher {
	w, err := NewNotifyWatcher(root, ignore)
	if err != nil {
		slog.Warn("native watch unavailable, falling back to polling", "root", root, "error", err)
		return NewPollWatcher(root, ignore, pollInterval)
	}
	return w
}

// NotifyWatcher watches a tree recursively through fsnotify, adding new
// directories to the watch set as they appear.
type NotifyWatcher struct {
	root   string
	ignore IgnorePolicy
	fsw    *fsnotify.Watcher
	out    chan Event
	done   chan struct{}
}

func NewNotifyWatcher(root string, ignore IgnorePolicy) (*NotifyWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Join(ErrWatchUnavailable, err)
	}
	return &NotifyWatcher{
		root:   root,
		ignore: ignore,
		fsw:    fsw,
		out:    make(chan Event, 64),
		done:   make(chan struct{}),
	}, nil
}

func (w *NotifyWatcher) Events() <-chan Event { return w.out }

func (w *NotifyWatcher) Active() bool { return true }

func (w *NotifyWatcher) Start(ctx context.Context) error {
	err := filepath.Walk(w.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w.ignore.IgnoredDir(path) {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		w.fsw.Close()
		return errors.Join(ErrWatchUnavailable, err)
	}

	go w.loop(ctx)
	return nil
}

func (w *NotifyWatcher) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *NotifyWatcher) loop(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.out)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, fe)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func (w *NotifyWatcher) handle(ctx context.Context, fe fsnotify.Event) {
	if w.ignore.Ignored(fe.Name) {
		return
	}

	ev := Event{Path: fe.Name, At: time.Now()}
	switch {
	case fe.Has(fsnotify.Create):
		ev.Op = OpCreated
		if info, err := os.Stat(fe.Name); err == nil && info.IsDir() {
			ev.IsDir = true
			if !w.ignore.IgnoredDir(fe.Name) {
				_ = w.fsw.Add(fe.Name)
			}
		}
	case fe.Has(fsnotify.Write):
		ev.Op = OpModified
	case fe.Has(fsnotify.Remove):
		ev.Op = OpDeleted
	case fe.Has(fsnotify.Rename):
		ev.Op = OpMoved
	default:
		return
	}

	select {
	case w.out <- ev:
	case <-ctx.Done():
	case <-w.done:
	default:
		// Channel full. Drop rather than block: the poller resyncs.
	}
}
