package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"
)

// PollWatcher is the fallback for platforms where the native facility is
// unavailable. It walks the tree on a fixed interval and synthesizes events
// from the (path -> mtime) delta against the previous scan. The first scan
// only establishes the baseline and emits nothing.
type PollWatcher struct {
	root     string
	ignore   IgnorePolicy
	interval time.Duration
	out      chan Event
	done     chan struct{}
	mtimes   map[string]time.Time
}

func NewPollWatcher(root string, ignore IgnorePolicy, interval time.Duration) *PollWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &PollWatcher{
		root:     root,
		ignore:   ignore,
		interval: interval,
		out:      make(chan Event, 64),
		done:     make(chan struct{}),
	}
}

func (w *PollWatcher) Events() <-chan Event { return w.out }

func (w *PollWatcher) Active() bool { return false }

func (w *PollWatcher) Start(ctx context.Context) error {
	w.mtimes = w.scan()
	go w.loop(ctx)
	return nil
}

func (w *PollWatcher) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *PollWatcher) loop(ctx context.Context) {
	defer close(w.out)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-ticker.C:
			w.emitDelta(ctx)
		}
	}
}

func (w *PollWatcher) scan() map[string]time.Time {
	seen := make(map[string]time.Time)
	_ = filepath.Walk(w.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w.ignore.IgnoredDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignore.Ignored(path) {
			return nil
		}
		seen[path] = info.ModTime()
		return nil
	})
	return seen
}

func (w *PollWatcher) emitDelta(ctx context.Context) {
	current := w.scan()
	now := time.Now()

	for path, mtime := range current {
		prev, known := w.mtimes[path]
		switch {
		case !known:
			w.emit(ctx, Event{Op: OpCreated, Path: path, At: now})
		case mtime.After(prev):
			w.emit(ctx, Event{Op: OpModified, Path: path, At: now})
		}
	}
	for path := range w.mtimes {
		if _, still := current[path]; !still {
			w.emit(ctx, Event{Op: OpDeleted, Path: path, At: now})
		}
	}

	w.mtimes = current
}

func (w *PollWatcher) emit(ctx context.Context, ev Event) {
	select {
	case w.out <- ev:
	case <-ctx.Done():
	case <-w.done:
	default:
	}
}
