package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// StatusCode classifies a working-tree change.
type StatusCode int

const (
	StatusUnknown StatusCode = iota
	StatusModified
	StatusAdded
	StatusDeleted
	StatusRenamed
	StatusUntracked
	StatusCopied
)

func (c StatusCode) String() string {
	switch c {
	case StatusModified:
		return "modified"
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusUntracked:
		return "untracked"
	case StatusCopied:
		return "copied"
	}
	return "unknown"
}

// Symbol returns the single-letter marker used in file listings.
func (c StatusCode) Symbol() string {
	switch c {
	case StatusModified:
		return "M"
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	case StatusRenamed:
		return "R"
	case StatusUntracked:
		return "?"
	case StatusCopied:
		return "C"
	}
	return "U"
}

// FileStatus is one uncommitted change. Path is always relative to the
// repository root. Each poll rebuilds the full list; nothing carries over
// between polls.
type FileStatus struct {
	Path   string
	Code   StatusCode
	Staged bool
}

// Commit is immutable once fetched. When is the committer time, the same
// clock session filtering runs on. A nil Files slice means the file list
// could not be resolved against the parent, not that the commit is empty.
type Commit struct {
	SHA     string
	Message string
	Author  string
	When    time.Time
	Files   []string
}

// ShortSHA returns the abbreviated hash for display.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 8 {
		return c.SHA[:8]
	}
	return c.SHA
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// ErrBackendTimeout marks a VCS call that exceeded its budget. Callers treat
// it as "no data yet" rather than a failure.
var ErrBackendTimeout = errors.New("vcs backend call timed out")

// ErrNotARepository is the one startup-fatal condition: the configured path
// is missing or not under version control.
var ErrNotARepository = errors.New("not a git repository")

// Backend is the capability surface the engine polls. Two implementations
// exist: a libgit2 binding and a git subprocess fallback, chosen once at
// construction.
type Backend interface {
	// Status lists uncommitted changes. When a path carries both a staged
	// and an unstaged change, the unstaged one wins for display.
	Status(ctx context.Context) ([]FileStatus, error)
	// CommitsSince lists commits committed at or after since, newest first.
	// The boundary is inclusive.
	CommitsSince(ctx context.Context, since time.Time, limit int) ([]Commit, error)
	// BranchName returns the current branch, or "HEAD" when detached.
	BranchName(ctx context.Context) string
	Root() string
	Close()
}

// Open validates the repository root and picks a backend: the native
// libgit2 binding when it can open the repository, otherwise the git
// subprocess. This is the only place a vcs error is fatal.
func Open(path string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("repository path %q: %w", abs, errors.Join(ErrNotARepository, err))
	}
	if _, err := os.Stat(filepath.Join(abs, ".git")); err != nil {
		return nil, fmt.Errorf("%q: %w", abs, ErrNotARepository)
	}

	if b, err := openNative(abs); err == nil {
		return b, nil
	} else {
		slog.Warn("libgit2 backend unavailable, using git subprocess", "root", abs, "error", err)
	}
	return newCLIBackend(abs), nil
}
