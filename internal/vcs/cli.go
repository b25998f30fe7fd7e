package vcs

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	statusTimeout = 10 * time.Second
	logTimeout    = 15 * time.Second
	branchTimeout = 5 * time.Second
)

// cliBackend shells out to git. It is the fallback when libgit2 cannot be
// loaded, and works against any git installation on PATH.
type cliBackend struct {
	root string
}

func newCLIBackend(root string) *cliBackend {
	return &cliBackend{root: root}
}

func (b *cliBackend) Root() string { return b.root }

func (b *cliBackend) Close() {}

func (b *cliBackend) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", args...)
	cmd.Dir = b.root
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", ErrBackendTimeout
		}
		return "", err
	}
	return string(out), nil
}

func (b *cliBackend) Status(ctx context.Context) ([]FileStatus, error) {
	out, err := b.run(ctx, statusTimeout, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// Log records are introduced by \x1e and carry \x1f-separated header fields
// followed by the --name-only file list, one path per line. The timestamp is
// the committer date: that is what git's --since filters on, and it keeps
// amended or cherry-picked commits visible even when their author date
// predates the session.
const logFormat = "--pretty=format:%x1e%H%x1f%an%x1f%cI%x1f%s"

func (b *cliBackend) CommitsSince(ctx context.Context, since time.Time, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = 50
	}
	args := []string{
		"log", "--name-only", logFormat,
		"--max-count=" + strconv.Itoa(limit),
	}
	if !since.IsZero() {
		// git treats --since as an open bound in places; widen by a second
		// and filter below so a commit at exactly `since` is kept.
		args = append(args, "--since="+since.Add(-time.Second).Format(time.RFC3339))
	}

	out, err := b.run(ctx, logTimeout, args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out, since), nil
}

func parseLog(out string, since time.Time) []Commit {
	var commits []Commit
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		lines := strings.SplitN(record, "\n", 2)
		fields := strings.Split(lines[0], "\x1f")
		if len(fields) < 4 {
			continue
		}

		when, err := time.Parse(time.RFC3339, fields[2])
		if err != nil {
			continue
		}
		if !since.IsZero() && when.Before(since) {
			continue
		}

		commit := Commit{
			SHA:     fields[0],
			Author:  fields[1],
			When:    when,
			Message: fields[3],
		}
		if len(lines) == 2 {
			for _, file := range strings.Split(lines[1], "\n") {
				if file = strings.TrimSpace(file); file != "" {
					commit.Files = append(commit.Files, file)
				}
			}
		}
		commits = append(commits, commit)
	}
	return commits
}

func (b *cliBackend) BranchName(ctx context.Context) string {
	out, err := b.run(ctx, branchTimeout, "branch", "--show-current")
	if err != nil {
		return "unknown"
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "HEAD" // detached
	}
	return branch
}
