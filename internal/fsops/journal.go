package fsops

import (
	"fmt"
	"os"
)

// journalEntry is one undoable step recorded by a transaction. Go has no
// generalized sum type, so each variant from the source's JournalEntry
// enum gets its own concrete type implementing this interface.
type journalEntry interface {
	// undo reverses the effect of this entry on disk.
	undo() error
	// describe names the entry for rollback-failure diagnostics.
	describe() string
}

// created records that a file or directory was produced at path; undo
// removes it (recursively, if it turned out to be a directory).
type created struct{ path string }

func (e created) describe() string { return fmt.Sprintf("created(%s)", e.path) }

func (e created) undo() error {
	info, err := os.Lstat(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(e.path)
	}
	return os.Remove(e.path)
}

// createdDir records that an empty directory was produced; undo removes
// exactly that directory (not any pre-existing parent).
type createdDir struct{ path string }

func (e createdDir) describe() string { return fmt.Sprintf("createdDir(%s)", e.path) }

func (e createdDir) undo() error {
	err := os.Remove(e.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// renamed records that from was moved to to; undo renames it back.
type renamed struct{ from, to string }

func (e renamed) describe() string { return fmt.Sprintf("renamed(%s -> %s)", e.from, e.to) }

func (e renamed) undo() error {
	return os.Rename(e.to, e.from)
}

// pendingRename is reserved for deferred renames that have not yet been
// finalized; undo behaves identically to renamed. No operation in this
// package currently produces one (the source crate carries the same
// unused variant), but the type is kept so the journal's vocabulary
// matches the full set of mutation shapes the format anticipates.
type pendingRename struct{ from, to string }

func (e pendingRename) describe() string {
	return fmt.Sprintf("pendingRename(%s -> %s)", e.from, e.to)
}

func (e pendingRename) undo() error {
	return os.Rename(e.to, e.from)
}

// pendingDelete records that path was moved aside to backup; undo moves it
// back. Commit instead removes the backup, finalizing the deletion.
type pendingDelete struct{ path, backup string }

func (e pendingDelete) describe() string {
	return fmt.Sprintf("pendingDelete(%s, backup=%s)", e.path, e.backup)
}

func (e pendingDelete) undo() error {
	return os.Rename(e.backup, e.path)
}

func (e pendingDelete) cleanupBackup() error {
	info, err := os.Lstat(e.backup)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(e.backup)
	}
	return os.Remove(e.backup)
}
