package vcs

import (
	"context"
	"fmt"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// nativeBackend binds libgit2 directly. It avoids a subprocess per poll,
// which matters at a 1s refresh interval on large trees.
type nativeBackend struct {
	repo *git2go.Repository
	root string
}

func openNative(root string) (*nativeBackend, error) {
	repo, err := git2go.OpenRepository(root)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &nativeBackend{repo: repo, root: root}, nil
}

func (b *nativeBackend) Root() string { return b.root }

func (b *nativeBackend) Close() {
	if b.repo != nil {
		b.repo.Free()
		b.repo = nil
	}
}

func (b *nativeBackend) Status(ctx context.Context) ([]FileStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := git2go.StatusOptions{
		Show:  git2go.StatusShowIndexAndWorkdir,
		Flags: git2go.StatusOptIncludeUntracked | git2go.StatusOptRenamesHeadToIndex,
	}
	list, err := b.repo.StatusList(&opts)
	if err != nil {
		return nil, fmt.Errorf("status list: %w", err)
	}
	defer list.Free()

	count, err := list.EntryCount()
	if err != nil {
		return nil, fmt.Errorf("status entry count: %w", err)
	}

	statuses := make([]FileStatus, 0, count)
	for i := 0; i < count; i++ {
		entry, err := list.ByIndex(i)
		if err != nil {
			continue
		}
		if fs, ok := statusFromEntry(entry); ok {
			statuses = append(statuses, fs)
		}
	}
	return statuses, nil
}

// statusFromEntry folds the two-sided libgit2 status into one FileStatus.
// An unstaged (workdir) change takes precedence over a staged one on the
// same path.
func statusFromEntry(entry git2go.StatusEntry) (FileStatus, bool) {
	s := entry.Status

	if s&git2go.StatusWtNew != 0 {
		return FileStatus{Path: entry.IndexToWorkdir.NewFile.Path, Code: StatusUntracked}, true
	}

	// Conflicts and typechanges have no dedicated display code; surface
	// them as unknown like the porcelain parser does, rather than hiding
	// the file.
	if s&git2go.StatusConflicted != 0 || s&git2go.StatusWtTypeChange != 0 {
		return FileStatus{Path: entry.IndexToWorkdir.NewFile.Path, Code: StatusUnknown}, true
	}

	switch {
	case s&git2go.StatusWtModified != 0:
		return FileStatus{Path: entry.IndexToWorkdir.NewFile.Path, Code: StatusModified}, true
	case s&git2go.StatusWtDeleted != 0:
		return FileStatus{Path: entry.IndexToWorkdir.NewFile.Path, Code: StatusDeleted}, true
	case s&git2go.StatusWtRenamed != 0:
		return FileStatus{Path: entry.IndexToWorkdir.NewFile.Path, Code: StatusRenamed}, true
	}

	if s&git2go.StatusIndexTypeChange != 0 {
		return FileStatus{Path: entry.HeadToIndex.NewFile.Path, Code: StatusUnknown, Staged: true}, true
	}

	switch {
	case s&git2go.StatusIndexNew != 0:
		return FileStatus{Path: entry.HeadToIndex.NewFile.Path, Code: StatusAdded, Staged: true}, true
	case s&git2go.StatusIndexModified != 0:
		return FileStatus{Path: entry.HeadToIndex.NewFile.Path, Code: StatusModified, Staged: true}, true
	case s&git2go.StatusIndexDeleted != 0:
		return FileStatus{Path: entry.HeadToIndex.NewFile.Path, Code: StatusDeleted, Staged: true}, true
	case s&git2go.StatusIndexRenamed != 0:
		return FileStatus{Path: entry.HeadToIndex.NewFile.Path, Code: StatusRenamed, Staged: true}, true
	}

	return FileStatus{}, false
}

func (b *nativeBackend) CommitsSince(ctx context.Context, since time.Time, limit int) ([]Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	walk, err := b.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	if err := walk.PushHead(); err != nil {
		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}
	walk.Sorting(git2go.SortTime)

	var commits []Commit
	err = walk.Iterate(func(c *git2go.Commit) bool {
		when := c.Committer().When
		if !since.IsZero() && when.Before(since) {
			// Time-sorted walk: everything after this is older. Boundary
			// commits at exactly `since` pass the check above.
			return false
		}
		commits = append(commits, Commit{
			SHA:     c.Id().String(),
			Message: strings.TrimRight(c.Message(), "\n"),
			Author:  c.Author().Name,
			When:    when,
			Files:   b.commitFiles(c),
		})
		return len(commits) < limit
	})
	if err != nil {
		return commits, fmt.Errorf("revwalk iterate: %w", err)
	}
	return commits, nil
}

// commitFiles diffs the commit against its first parent. A nil return
// means the file list is unknown, which callers must not read as "empty".
func (b *nativeBackend) commitFiles(c *git2go.Commit) []string {
	tree, err := c.Tree()
	if err != nil {
		return nil
	}
	defer tree.Free()

	var parentTree *git2go.Tree
	if c.ParentCount() > 0 {
		parent := c.Parent(0)
		if parent == nil {
			return nil
		}
		defer parent.Free()
		parentTree, err = parent.Tree()
		if err != nil {
			return nil
		}
		defer parentTree.Free()
	}

	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil
	}
	diff, err := b.repo.DiffTreeToTree(parentTree, tree, &opts)
	if err != nil {
		return nil
	}
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil
	}

	files := make([]string, 0, numDeltas)
	for i := 0; i < numDeltas; i++ {
		delta, err := diff.Delta(i)
		if err != nil {
			continue
		}
		path := delta.NewFile.Path
		if path == "" {
			path = delta.OldFile.Path
		}
		if path != "" {
			files = append(files, path)
		}
	}
	return files
}

func (b *nativeBackend) BranchName(ctx context.Context) string {
	ref, err := b.repo.Head()
	if err != nil {
		return "unknown"
	}
	defer ref.Free()

	if !ref.IsBranch() {
		return "HEAD" // detached
	}
	return ref.Shorthand()
}
