package vcs

import "strings"

func codeFromLetter(letter byte) StatusCode {
	switch letter {
	case 'M':
		return StatusModified
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	case 'C':
		return StatusCopied
	case '?':
		return StatusUntracked
	}
	return StatusUnknown
}

// parsePorcelain parses `git status --porcelain` output. The two leading
// columns are the staged and unstaged markers; when both are set the
// unstaged change wins, since that is what the user still has to re-stage.
func parsePorcelain(out string) []FileStatus {
	var statuses []FileStatus
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		stagedCol, unstagedCol := line[0], line[1]
		path := strings.TrimSpace(line[3:])

		// Renames are reported as "old -> new"; keep the new path.
		if stagedCol == 'R' || unstagedCol == 'R' || stagedCol == 'C' || unstagedCol == 'C' {
			if idx := strings.Index(path, " -> "); idx >= 0 {
				path = path[idx+4:]
			}
		}
		if path == "" {
			continue
		}
		path = strings.Trim(path, `"`)

		switch {
		case stagedCol == '?' && unstagedCol == '?':
			statuses = append(statuses, FileStatus{Path: path, Code: StatusUntracked})
		case unstagedCol != ' ':
			statuses = append(statuses, FileStatus{Path: path, Code: codeFromLetter(unstagedCol)})
		case stagedCol != ' ':
			statuses = append(statuses, FileStatus{Path: path, Code: codeFromLetter(stagedCol), Staged: true})
		}
	}
	return statuses
}
