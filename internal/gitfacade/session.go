package gitfacade

import (
	"github.com/polysafe/polysafe/internal/audit"
	"github.com/polysafe/polysafe/internal/capability"
)

// Session bundles a capability with an audit log so that every mutating
// git operation driven through it produces a matching git_operation audit
// entry on success, the same way a filesystem transaction and an audit
// log are paired by callers elsewhere in this module.
type Session struct {
	cap *capability.DirCapability
	log *audit.AuditLog
}

// NewSession pairs cap with log. Every path passed to Session methods is
// resolved through cap before being handed to git.
func NewSession(cap *capability.DirCapability, log *audit.AuditLog) *Session {
	return &Session{cap: cap, log: log}
}

// StageAll stages every change in the repository at relPath (resolved
// through the session's capability), equivalent to `git add -A`.
func (s *Session) StageAll(relPath string) error {
	repoPath, err := s.cap.Resolve(relPath)
	if err != nil {
		return err
	}
	if err := s.cap.RequireWrite(); err != nil {
		return err
	}

	if _, err := runGit(repoPath, "add", "-A"); err != nil {
		return err
	}

	return s.log.Append(audit.GitOperation{Repo: repoPath, Operation: "stage_all"})
}

// StageFiles stages exactly the given files (paths relative to the
// repository root) within the repository at relPath.
func (s *Session) StageFiles(relPath string, files []string) error {
	repoPath, err := s.cap.Resolve(relPath)
	if err != nil {
		return err
	}
	if err := s.cap.RequireWrite(); err != nil {
		return err
	}

	args := append([]string{"add", "--"}, files...)
	if _, err := runGit(repoPath, args...); err != nil {
		return err
	}

	return s.log.Append(audit.GitOperation{Repo: repoPath, Operation: "stage_files"})
}

// Status resolves relPath through the session's capability and returns its
// git status. Read-only: no audit entry is produced.
func (s *Session) Status(relPath string) (*RepoStatus, error) {
	repoPath, err := s.cap.Resolve(relPath)
	if err != nil {
		return nil, err
	}
	if err := s.cap.RequireRead(); err != nil {
		return nil, err
	}
	return Status(repoPath)
}
