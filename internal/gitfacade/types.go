// Package gitfacade is a read-mostly façade over the git CLI. Every path
// it operates on is expected to have already been resolved through a
// capability.DirCapability by the caller; the façade itself trusts its
// inputs. Every mutating operation (StageAll, StageFiles) records a
// git_operation entry to an audit.AuditLog on success when driven through
// a Session.
//
// No pure-Go git library appears anywhere in this module's dependency
// stack, so every operation here shells out to the git binary with
// os/exec, the same pattern used for git probes elsewhere in this
// codebase's lineage.
package gitfacade

// FileStatus describes the state of one file relative to the index or the
// working tree.
type FileStatus string

const (
	FileStatusCurrent    FileStatus = "current"
	FileStatusModified   FileStatus = "modified"
	FileStatusNew        FileStatus = "new"
	FileStatusDeleted    FileStatus = "deleted"
	FileStatusRenamed    FileStatus = "renamed"
	FileStatusTypeChange FileStatus = "type_change"
	FileStatusIgnored    FileStatus = "ignored"
	FileStatusConflicted FileStatus = "conflicted"
)

// StatusEntry is one line of `git status --porcelain` output, split into
// its index and worktree halves.
type StatusEntry struct {
	Path           string
	IndexStatus    *FileStatus
	WorktreeStatus *FileStatus
}

// RepoStatus summarizes the state of a working tree.
type RepoStatus struct {
	Path         string
	Branch       *string
	Head         *string
	Entries      []StatusEntry
	IsClean      bool
	HasStaged    bool
	HasUnstaged  bool
	HasUntracked bool
}

// RemoteInfo describes one configured remote.
type RemoteInfo struct {
	Name    string
	URL     *string
	PushURL *string
}
