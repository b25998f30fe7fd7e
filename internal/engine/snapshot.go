package engine

import (
	"time"

	"github.com/yubzen/repowatch/internal/cluster"
	"github.com/yubzen/repowatch/internal/vcs"
)

// Snapshot is one consistent view of the repository: the uncommitted set
// and the files committed since session start, both from the same poll
// cycle. Snapshots are immutable after publication; the engine replaces the
// whole pointer atomically and readers never see a partial update.
type Snapshot struct {
	Uncommitted          []vcs.FileStatus
	ClusteredUncommitted []cluster.Group
	Committed            []string
	ClusteredCommitted   []cluster.Group
	Commits              []vcs.Commit
	Branch               string
	GeneratedAt          time.Time
}

// CommittedCount returns the size of the deduplicated committed-file set.
func (s *Snapshot) CommittedCount() int {
	if s == nil {
		return 0
	}
	return len(s.Committed)
}

// UncommittedCount returns the number of uncommitted changes.
func (s *Snapshot) UncommittedCount() int {
	if s == nil {
		return 0
	}
	return len(s.Uncommitted)
}
