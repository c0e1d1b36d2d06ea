package gitfacade

import (
	"strings"
)

// IsValidRepo reports whether path is inside a git working tree.
func IsValidRepo(path string) bool {
	out, err := runGit(path, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Status returns the full status of the repository at path: current
// branch (nil on detached HEAD), short HEAD commit, and per-file status
// entries from both the index and the working tree.
func Status(path string) (*RepoStatus, error) {
	if !IsValidRepo(path) {
		return nil, &NotARepositoryError{Path: path}
	}

	status := &RepoStatus{Path: path}

	if branch, err := runGit(path, "symbolic-ref", "--short", "HEAD"); err == nil && branch != "" {
		b := branch
		status.Branch = &b
	}

	if head, err := runGit(path, "rev-parse", "--short", "HEAD"); err == nil && head != "" {
		h := head
		status.Head = &h
	}

	// --branch puts a "## ..." header first, so trimming the output never
	// strips the leading space of an entry's index code.
	out, err := runGit(path, "status", "--porcelain=v1", "--branch", "--untracked-files=all")
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "## ") || len(line) < 3 {
			continue
		}
		indexCode := line[0]
		worktreeCode := line[1]
		path := strings.TrimSpace(line[3:])

		// Renames appear as "R  old -> new"; keep the destination path.
		if idx := strings.Index(path, " -> "); idx != -1 {
			path = path[idx+4:]
		}

		entry := StatusEntry{Path: path}
		if fs := statusCodeToFileStatus(indexCode); fs != nil {
			entry.IndexStatus = fs
			status.HasStaged = true
		}
		if fs := statusCodeToFileStatus(worktreeCode); fs != nil {
			entry.WorktreeStatus = fs
			if worktreeCode == '?' {
				status.HasUntracked = true
			} else {
				status.HasUnstaged = true
			}
		}
		status.Entries = append(status.Entries, entry)
	}

	status.IsClean = len(status.Entries) == 0
	return status, nil
}

func statusCodeToFileStatus(code byte) *FileStatus {
	var fs FileStatus
	switch code {
	case ' ':
		return nil
	case 'M':
		fs = FileStatusModified
	case 'A', '?':
		fs = FileStatusNew
	case 'D':
		fs = FileStatusDeleted
	case 'R':
		fs = FileStatusRenamed
	case 'C':
		fs = FileStatusRenamed
	case 'T':
		fs = FileStatusTypeChange
	case 'U':
		fs = FileStatusConflicted
	case '!':
		fs = FileStatusIgnored
	default:
		return nil
	}
	return &fs
}
