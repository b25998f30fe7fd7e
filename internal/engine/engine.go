// Package engine reconciles filesystem events and repository polls into
// atomically published view snapshots. It is the single writer of both the
// snapshot pointer and the animation state; the render surface only reads.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yubzen/repowatch/internal/animation"
	"github.com/yubzen/repowatch/internal/cluster"
	"github.com/yubzen/repowatch/internal/config"
	"github.com/yubzen/repowatch/internal/vcs"
	"github.com/yubzen/repowatch/internal/watch"
)

const animationTickRate = 100 * time.Millisecond // 10 Hz frame clock

type Engine struct {
	cfg       *config.Config
	backend   vcs.Backend
	watcher   watch.Watcher
	limiter   *watch.Limiter
	scheduler *animation.Scheduler
	clusterer *cluster.Clusterer

	sessionStart time.Time
	snapshot     atomic.Pointer[Snapshot]
	watching     atomic.Bool

	// Single-slot refresh queue: any burst of admitted events collapses
	// into at most one pending refresh, and refreshes never run
	// concurrently.
	refreshPending chan struct{}

	// Owned by the refresh worker goroutine. -1 until the first poll.
	lastCommitCount int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the engine from its collaborators. The backend must already be
// open; Open is the caller's fatal gate for a missing or non-repository
// path.
func New(cfg *config.Config, backend vcs.Backend) *Engine {
	ignore := watch.DefaultIgnorePolicy().Merge(cfg.IgnoreDirectories, cfg.IgnoreFileSuffixes)
	e := &Engine{
		cfg:             cfg,
		backend:         backend,
		watcher:         watch.New(backend.Root(), ignore, cfg.RefreshInterval()),
		limiter:         watch.NewLimiter(cfg.Debounce(), cfg.MaxEventsPerSecond),
		scheduler:       animation.NewScheduler(),
		clusterer:       cluster.New(cfg.MaxDepth, cfg.MaxFilesPerCluster),
		sessionStart:    time.Now(),
		refreshPending:  make(chan struct{}, 1),
		lastCommitCount: -1,
	}
	e.snapshot.Store(&Snapshot{GeneratedAt: e.sessionStart})
	return e
}

// Start launches the four background tasks: the event loop, the periodic
// poll loop, the animation clock and the serialized refresh worker. A
// native-watch setup failure degrades to polling instead of failing.
func (e *Engine) Start(ctx context.Context) error {
	ctx, e.cancel = context.WithCancel(ctx)

	if err := e.watcher.Start(ctx); err != nil {
		slog.Warn("watch setup failed, degrading to polling", "error", err)
		ignore := watch.DefaultIgnorePolicy().Merge(e.cfg.IgnoreDirectories, e.cfg.IgnoreFileSuffixes)
		e.watcher = watch.NewPollWatcher(e.backend.Root(), ignore, e.cfg.RefreshInterval())
		if err := e.watcher.Start(ctx); err != nil {
			return err
		}
	}
	e.watching.Store(e.watcher.Active())

	e.wg.Add(4)
	go e.eventLoop(ctx)
	go e.pollLoop(ctx)
	go e.animationLoop(ctx)
	go e.refreshLoop(ctx)

	e.queueRefresh()
	return nil
}

// Stop cancels all background tasks and releases the watch handle. In-flight
// VCS calls finish within their own timeouts, so Stop blocks at most one
// timeout period.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.watcher.Stop()
	e.wg.Wait()
	e.backend.Close()
}

// Snapshot returns the latest published view. Readers must not mutate it.
func (e *Engine) Snapshot() *Snapshot { return e.snapshot.Load() }

// Frame returns the current animation frame text.
func (e *Engine) Frame() string { return e.scheduler.Frame() }

// Watching reports whether a native filesystem watch is live, as opposed to
// the polling fallback.
func (e *Engine) Watching() bool { return e.watching.Load() }

func (e *Engine) SessionStart() time.Time { return e.sessionStart }

// Root returns the absolute repository root being watched.
func (e *Engine) Root() string { return e.backend.Root() }

func (e *Engine) eventLoop(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.watcher.Events():
			if !ok {
				return
			}
			if !e.limiter.Admit(ev) {
				continue
			}
			e.scheduler.Trigger(ev.Op.String())
			e.queueRefresh()
		}
	}
}

func (e *Engine) pollLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.RefreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.queueRefresh()
		}
	}
}

func (e *Engine) animationLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(animationTickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.scheduler.Tick(now)
		}
	}
}

func (e *Engine) refreshLoop(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.refreshPending:
			e.refresh(ctx)
		}
	}
}

// queueRefresh requests one refresh. Requests arriving while one is already
// pending are absorbed, never queued.
func (e *Engine) queueRefresh() {
	select {
	case e.refreshPending <- struct{}{}:
	default:
	}
}

// refresh performs one full poll cycle and publishes the result. It runs
// only on the refresh worker goroutine.
func (e *Engine) refresh(ctx context.Context) {
	statuses, err := e.backend.Status(ctx)
	if err != nil {
		slog.Warn("status poll failed", "error", err)
		statuses = nil
	}
	commits, commitErr := e.backend.CommitsSince(ctx, e.sessionStart, e.cfg.CommitLimit)
	if commitErr != nil {
		slog.Warn("commit poll failed", "error", commitErr)
		commits = nil
	}
	branch := e.backend.BranchName(ctx)

	// Celebrate commits landing during the session, but not the baseline
	// the first refresh observes. A failed poll keeps the previous
	// baseline; an empty result from an error must not make the next
	// successful poll re-celebrate commits already seen.
	if commitErr == nil {
		if e.lastCommitCount >= 0 && len(commits) > e.lastCommitCount {
			e.scheduler.Trigger("commit")
		}
		e.lastCommitCount = len(commits)
	}

	uncommitted := make([]vcs.FileStatus, 0, len(statuses))
	uncommittedPaths := make([]string, 0, len(statuses))
	for _, st := range statuses {
		rel, ok := e.relativize(st.Path)
		if !ok {
			continue
		}
		st.Path = rel
		uncommitted = append(uncommitted, st)
		uncommittedPaths = append(uncommittedPaths, rel)
	}

	seen := make(map[string]struct{})
	var committed []string
	for _, c := range commits {
		for _, f := range c.Files {
			rel, ok := e.relativize(f)
			if !ok {
				continue
			}
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			committed = append(committed, rel)
		}
	}
	sort.Strings(committed)

	e.snapshot.Store(&Snapshot{
		Uncommitted:          uncommitted,
		ClusteredUncommitted: e.clusterer.Cluster(uncommittedPaths),
		Committed:            committed,
		ClusteredCommitted:   e.clusterer.Cluster(committed),
		Commits:              commits,
		Branch:               branch,
		GeneratedAt:          time.Now(),
	})
}

// relativize converts a backend-reported path to repository-root-relative
// form. Paths that resolve outside the root are excluded, not errors.
func (e *Engine) relativize(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(e.backend.Root(), path)
		if err != nil {
			return "", false
		}
		path = rel
	}
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." || path == ".." || strings.HasPrefix(path, "../") {
		return "", false
	}
	return path, true
}
