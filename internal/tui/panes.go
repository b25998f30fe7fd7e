package tui

import (
	"fmt"
	"strings"

	"github.com/yubzen/repowatch/internal/cluster"
	"github.com/yubzen/repowatch/internal/engine"
	"github.com/yubzen/repowatch/internal/vcs"
)

const maxFilesShown = 5

// renderGroups formats cluster groups the way the panes display them: a
// header per cluster, a short file listing, and a "more" line when a
// cluster is larger than the listing budget. Root-level clusters carry no
// directory label.
func renderGroups(groups []cluster.Group, marks map[string]string) string {
	if len(groups) == 0 {
		return "No files"
	}

	var b strings.Builder
	for gi, group := range groups {
		if gi > 0 {
			b.WriteString("\n")
		}
		for _, cl := range group.Clusters {
			b.WriteString(clusterHeader(cl))
			b.WriteByte('\n')

			shown := cl.Files
			if len(shown) > maxFilesShown {
				shown = shown[:maxFilesShown]
			}
			for i, file := range shown {
				prefix := "├─"
				if i == len(shown)-1 && len(shown) == cl.Count {
					prefix = "└─"
				}
				if mark, ok := marks[file]; ok {
					b.WriteString(fmt.Sprintf("  %s %s %s\n", prefix, mark, file))
				} else {
					b.WriteString(fmt.Sprintf("  %s %s\n", prefix, file))
				}
			}
			if rest := cl.Count - len(shown); rest > 0 {
				b.WriteString(fmt.Sprintf("  └─ … and %d more\n", rest))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func clusterHeader(cl cluster.Cluster) string {
	label := cl.Dir
	if label == "" {
		return fmt.Sprintf("(%d files)", cl.Count)
	}
	if cl.Parts > 1 {
		return fmt.Sprintf("%s/ (%d files, %d/%d)", label, cl.Count, cl.Part, cl.Parts)
	}
	return fmt.Sprintf("%s/ (%d files)", label, cl.Count)
}

func renderUncommitted(snap *engine.Snapshot) string {
	if snap == nil || len(snap.Uncommitted) == 0 {
		return "Working tree clean"
	}
	marks := make(map[string]string, len(snap.Uncommitted))
	for _, st := range snap.Uncommitted {
		marks[st.Path] = st.Code.Symbol()
	}
	return renderGroups(snap.ClusteredUncommitted, marks)
}

func renderCommitted(snap *engine.Snapshot) string {
	if snap == nil || len(snap.Committed) == 0 {
		return "No commits this session"
	}

	var b strings.Builder
	for _, c := range latestCommits(snap.Commits, 3) {
		b.WriteString(fmt.Sprintf("%s %s\n", c.ShortSHA(), c.Summary()))
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(renderGroups(snap.ClusteredCommitted, nil))
	return b.String()
}

func latestCommits(commits []vcs.Commit, n int) []vcs.Commit {
	if len(commits) <= n {
		return commits
	}
	return commits[:n]
}
