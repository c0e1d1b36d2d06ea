package gitfacade

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

const defaultGitTimeout = 30 * time.Second

// runGit runs `git <args...>` with cwd set to repoPath and a bounded
// timeout, returning trimmed stdout. A failure is classified as
// NotARepositoryError when stderr looks like git's own "not a git
// repository" complaint, IOError when the git binary cannot be started,
// and GitInternalError otherwise.
func runGit(repoPath string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrText := strings.TrimSpace(stderr.String())
		if isNotARepoStderr(stderrText) {
			return "", &NotARepositoryError{Path: repoPath}
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", &IOError{Err: err}
		}
		return "", &GitInternalError{Args: args, Stderr: stderrText, Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}

func isNotARepoStderr(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "not a git repository")
}
