package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubzen/repowatch/internal/animation"
	"github.com/yubzen/repowatch/internal/config"
	"github.com/yubzen/repowatch/internal/vcs"
)

type fakeBackend struct {
	root       string
	statuses   []vcs.FileStatus
	commits    []vcs.Commit
	commitsErr error
	branch     string
}

func (f *fakeBackend) Status(context.Context) ([]vcs.FileStatus, error) { return f.statuses, nil }
func (f *fakeBackend) CommitsSince(context.Context, time.Time, int) ([]vcs.Commit, error) {
	return f.commits, f.commitsErr
}
func (f *fakeBackend) BranchName(context.Context) string { return f.branch }
func (f *fakeBackend) Root() string                      { return f.root }
func (f *fakeBackend) Close()                            {}

func newTestEngine(t *testing.T, backend *fakeBackend) *Engine {
	t.Helper()
	if backend.root == "" {
		backend.root = t.TempDir()
	}
	if backend.branch == "" {
		backend.branch = "main"
	}
	return New(config.Default(), backend)
}

func TestRefreshPublishesConsistentSnapshot(t *testing.T) {
	backend := &fakeBackend{
		statuses: []vcs.FileStatus{
			{Path: "internal/a.go", Code: vcs.StatusModified},
			{Path: "internal/b.go", Code: vcs.StatusAdded, Staged: true},
			{Path: "top.txt", Code: vcs.StatusUntracked},
		},
		commits: []vcs.Commit{
			{SHA: "abc", Message: "fix", Files: []string{"internal/a.go", "docs/readme.md"}},
		},
	}
	e := newTestEngine(t, backend)
	e.refresh(context.Background())

	snap := e.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "main", snap.Branch)
	assert.Len(t, snap.Uncommitted, 3)
	assert.ElementsMatch(t, []string{"docs/readme.md", "internal/a.go"}, snap.Committed)

	clustered := 0
	for _, g := range snap.ClusteredUncommitted {
		clustered += g.TotalFiles
	}
	assert.Equal(t, len(snap.Uncommitted), clustered,
		"cluster totals must match the uncommitted set from the same cycle")
}

func TestRefreshExcludesPathsOutsideRoot(t *testing.T) {
	backend := &fakeBackend{
		root: t.TempDir(),
		statuses: []vcs.FileStatus{
			{Path: "/outside/repo/file.txt", Code: vcs.StatusModified},
			{Path: "../escape.txt", Code: vcs.StatusModified},
			{Path: "inside.txt", Code: vcs.StatusModified},
		},
		commits: []vcs.Commit{
			{SHA: "abc", Files: []string{"/outside/repo/other.txt", "ok.go"}},
		},
	}
	e := newTestEngine(t, backend)
	e.refresh(context.Background())

	snap := e.Snapshot()
	require.Len(t, snap.Uncommitted, 1)
	assert.Equal(t, "inside.txt", snap.Uncommitted[0].Path)
	assert.Equal(t, []string{"ok.go"}, snap.Committed)
}

func TestRefreshRelativizesAbsolutePathsUnderRoot(t *testing.T) {
	root := t.TempDir()
	backend := &fakeBackend{
		root: root,
		statuses: []vcs.FileStatus{
			{Path: root + "/pkg/file.go", Code: vcs.StatusModified},
		},
	}
	e := newTestEngine(t, backend)
	e.refresh(context.Background())

	snap := e.Snapshot()
	require.Len(t, snap.Uncommitted, 1)
	assert.Equal(t, "pkg/file.go", snap.Uncommitted[0].Path)
}

func TestRefreshDeduplicatesCommittedFiles(t *testing.T) {
	backend := &fakeBackend{
		commits: []vcs.Commit{
			{SHA: "a", Files: []string{"x.go", "y.go"}},
			{SHA: "b", Files: []string{"x.go"}},
		},
	}
	e := newTestEngine(t, backend)
	e.refresh(context.Background())

	assert.Equal(t, []string{"x.go", "y.go"}, e.Snapshot().Committed)
}

func TestQueueRefreshCoalesces(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	for i := 0; i < 10; i++ {
		e.queueRefresh()
	}
	assert.Len(t, e.refreshPending, 1, "bursts collapse into a single pending refresh")
}

func TestRefreshTriggersCommitCelebration(t *testing.T) {
	backend := &fakeBackend{}
	e := newTestEngine(t, backend)

	e.refresh(context.Background())
	assert.NotEqual(t, animation.SeqCommit, e.scheduler.Playing(),
		"the baseline poll must not celebrate")

	backend.commits = []vcs.Commit{{SHA: "new", Files: []string{"a.go"}}}
	e.refresh(context.Background())
	assert.Equal(t, animation.SeqCommit, e.scheduler.Playing())
}

func TestFailedCommitPollKeepsCelebrationBaseline(t *testing.T) {
	backend := &fakeBackend{
		commits: []vcs.Commit{{SHA: "old", Files: []string{"a.go"}}},
	}
	e := newTestEngine(t, backend)
	e.refresh(context.Background())

	backend.commitsErr = errors.New("poll failed")
	e.refresh(context.Background())
	require.Empty(t, e.Snapshot().Commits, "a failed poll publishes no commits")

	// The next successful poll sees the same commits as before the
	// failure; that must not look like new activity.
	backend.commitsErr = nil
	e.refresh(context.Background())
	assert.NotEqual(t, animation.SeqCommit, e.scheduler.Playing())

	backend.commits = append(backend.commits, vcs.Commit{SHA: "new", Files: []string{"b.go"}})
	e.refresh(context.Background())
	assert.Equal(t, animation.SeqCommit, e.scheduler.Playing())
}

func TestSnapshotReplacedNotMutated(t *testing.T) {
	backend := &fakeBackend{
		statuses: []vcs.FileStatus{{Path: "a.go", Code: vcs.StatusModified}},
	}
	e := newTestEngine(t, backend)
	e.refresh(context.Background())
	first := e.Snapshot()

	backend.statuses = append(backend.statuses, vcs.FileStatus{Path: "b.go", Code: vcs.StatusAdded})
	e.refresh(context.Background())
	second := e.Snapshot()

	assert.NotSame(t, first, second)
	assert.Len(t, first.Uncommitted, 1, "published snapshots are never mutated in place")
	assert.Len(t, second.Uncommitted, 2)
}

func TestEngineStartStop(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	require.NoError(t, e.Start(context.Background()))
	assert.True(t, e.Watching())

	// Give the refresh worker a moment to drain the initial request.
	time.Sleep(50 * time.Millisecond)
	e.Stop()

	assert.NotNil(t, e.Snapshot())
}
