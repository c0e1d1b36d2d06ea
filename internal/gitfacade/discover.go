package gitfacade

import (
	"os"
	"path/filepath"
	"strings"
)

// FindRepos walks root up to maxDepth levels deep and returns every git
// repository found, pruning at the first ".git" found along a branch (no
// recursion into submodules) and skipping dotted directories.
func FindRepos(root string, maxDepth int) ([]string, error) {
	var repos []string
	if err := findReposRecursive(root, maxDepth, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func findReposRecursive(current string, depth int, repos *[]string) error {
	if depth == 0 {
		return nil
	}

	if info, err := os.Stat(filepath.Join(current, ".git")); err == nil {
		_ = info
		*repos = append(*repos, current)
		return nil
	}

	entries, err := os.ReadDir(current)
	if err != nil {
		// Unreadable directories are skipped rather than failing the whole
		// walk; a single permission-denied subtree should not abort
		// discovery elsewhere.
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := findReposRecursive(filepath.Join(current, entry.Name()), depth-1, repos); err != nil {
			return err
		}
	}

	return nil
}

// GetDefaultBranch probes the common default-branch names before falling
// back to whatever branch HEAD currently points at.
func GetDefaultBranch(path string) (*string, error) {
	if !IsValidRepo(path) {
		return nil, &NotARepositoryError{Path: path}
	}

	for _, name := range []string{"main", "master", "develop", "trunk"} {
		if _, err := runGit(path, "show-ref", "--verify", "--quiet", "refs/heads/"+name); err == nil {
			n := name
			return &n, nil
		}
	}

	if branch, err := runGit(path, "symbolic-ref", "--short", "HEAD"); err == nil && branch != "" {
		return &branch, nil
	}

	return nil, nil
}

// CommitCount returns the number of commits reachable from HEAD.
func CommitCount(path string) (int, error) {
	if !IsValidRepo(path) {
		return 0, &NotARepositoryError{Path: path}
	}

	out, err := runGit(path, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, &NoCommitsError{}
	}

	count := 0
	for _, c := range out {
		if c < '0' || c > '9' {
			return 0, &NoCommitsError{}
		}
		count = count*10 + int(c-'0')
	}
	return count, nil
}
