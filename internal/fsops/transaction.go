// Package fsops implements a journaling façade over atomic filesystem
// mutations. A Transaction borrows a capability, records every mutation in
// an in-memory journal, and guarantees that abandoning the transaction
// without an explicit Commit reverts every change it made, in reverse
// order.
package fsops

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polysafe/polysafe/internal/capability"
)

const copyBufferSize = 64 * 1024

// Transaction is a journaled group of filesystem mutations scoped to a
// single capability. It holds a plain pointer to that capability rather
// than a borrow-checked reference: Go's garbage collector already keeps
// the capability alive for as long as the transaction holds a pointer to
// it, which is what the "capability outlives transaction" guarantee
// actually requires at runtime.
//
// A Transaction is exclusively owned; it must not be shared across
// goroutines. Callers should `defer tx.Close()` immediately after
// construction, mirroring the source's RAII-on-drop rollback: Close is
// infallible and rolls back automatically unless Commit already ran.
type Transaction struct {
	capability *capability.DirCapability
	journal    []journalEntry
	committed  bool
	id         uuid.UUID
	logger     *zap.Logger
}

// New begins a transaction scoped to cap. logger may be nil, in which case
// rollback diagnostics are discarded.
func New(cap *capability.DirCapability, logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{
		capability: cap,
		id:         uuid.New(),
		logger:     logger,
	}
}

// ID returns the transaction's unique identifier, used only to derive
// temp-file names.
func (t *Transaction) ID() uuid.UUID { return t.id }

// journalSnapshot returns a copy of the current journal, most-recent entry
// last.
func (t *Transaction) journalSnapshot() []journalEntry {
	out := make([]journalEntry, len(t.journal))
	copy(out, t.journal)
	return out
}

func (t *Transaction) ensureNotCommitted() error {
	if t.committed {
		return &AlreadyCommittedError{}
	}
	return nil
}

// tempPath derives the reserved temp-file name for an atomic write or copy
// targeting original: parent(original)/.{leaf}.{txn_id}.tmp.
func (t *Transaction) tempPath(original string) string {
	leaf := filepath.Base(original)
	return filepath.Join(filepath.Dir(original), "."+leaf+"."+t.id.String()+".tmp")
}

// CopyFile copies from to to atomically: the source is streamed into a
// temp file beside the destination, fsynced, then renamed over the
// destination. Requires read and write permission.
func (t *Transaction) CopyFile(from, to string) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireRead(); err != nil {
		return err
	}
	if err := t.capability.RequireWrite(); err != nil {
		return err
	}

	src, err := t.capability.Resolve(from)
	if err != nil {
		return err
	}
	dst, err := t.capability.ResolveForCreation(to)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return &NotAFileError{Path: src}
	}

	tmp := t.tempPath(dst)
	if err := copyFileContents(src, tmp); err != nil {
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		return &IOError{Err: err}
	}

	t.journal = append(t.journal, created{path: dst})
	return nil
}

func copyFileContents(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return &IOError{Err: err}
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return &IOError{Err: err}
	}

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(dstFile, srcFile, buf); err != nil {
		dstFile.Close()
		return &IOError{Err: err}
	}
	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		return &IOError{Err: err}
	}
	return dstFile.Close()
}

// MoveFile renames from to to within the capability's root. Requires write
// permission.
func (t *Transaction) MoveFile(from, to string) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireWrite(); err != nil {
		return err
	}

	src, err := t.capability.Resolve(from)
	if err != nil {
		return err
	}
	dst, err := t.capability.ResolveForCreation(to)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return &NotAFileError{Path: src}
	}

	if err := os.Rename(src, dst); err != nil {
		return &IOError{Err: err}
	}

	t.journal = append(t.journal, renamed{from: src, to: dst})
	return nil
}

// CreateDir creates an empty directory. Fails with AlreadyExistsError if
// the target already exists. Requires write permission.
func (t *Transaction) CreateDir(path string) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireWrite(); err != nil {
		return err
	}

	dir, err := t.capability.ResolveForCreation(path)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(dir); err == nil {
		return &AlreadyExistsError{Path: dir}
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return &IOError{Err: err}
	}

	t.journal = append(t.journal, createdDir{path: dir})
	return nil
}

// CreateDirAll creates path and any missing parent directories. Only the
// components it actually creates are journaled, so rollback never removes
// a directory that pre-existed. Requires write permission.
func (t *Transaction) CreateDirAll(path string) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireWrite(); err != nil {
		return err
	}

	var current string

	for _, component := range splitComponents(path) {
		if current == "" {
			current = component
		} else {
			current = filepath.Join(current, component)
		}

		full, err := t.capability.Resolve(current)
		if err != nil {
			if !capability.IsNotFound(err) {
				return err
			}
			full, err = t.capability.ResolveForCreation(current)
			if err != nil {
				return err
			}
			if err := os.Mkdir(full, 0o755); err != nil {
				return &IOError{Err: err}
			}
			t.journal = append(t.journal, createdDir{path: full})
			continue
		}

		info, err := os.Stat(full)
		if err != nil || !info.IsDir() {
			return &NotADirectoryError{Path: full}
		}
	}

	return nil
}

func splitComponents(path string) []string {
	clean := filepath.ToSlash(filepath.Clean(path))
	var out []string
	for _, c := range filepathSplitAll(clean) {
		if c != "" && c != "." {
			out = append(out, c)
		}
	}
	return out
}

func filepathSplitAll(cleanSlashPath string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(cleanSlashPath); i++ {
		if cleanSlashPath[i] == '/' {
			parts = append(parts, cleanSlashPath[start:i])
			start = i + 1
		}
	}
	parts = append(parts, cleanSlashPath[start:])
	return parts
}

// DeleteFile moves path aside to a backup location; the unlink itself
// happens at Commit, so rollback can restore the file by moving the
// backup back. Requires delete permission.
func (t *Transaction) DeleteFile(path string) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireDelete(); err != nil {
		return err
	}

	file, err := t.capability.Resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return &NotAFileError{Path: file}
	}

	backup := t.tempPath(file)
	if err := os.Rename(file, backup); err != nil {
		return &IOError{Err: err}
	}

	t.journal = append(t.journal, pendingDelete{path: file, backup: backup})
	return nil
}

// DeleteDirAll moves a directory aside to a backup location, following the
// same pending-delete pattern as DeleteFile. Requires delete permission.
func (t *Transaction) DeleteDirAll(path string) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireDelete(); err != nil {
		return err
	}

	dir, err := t.capability.Resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return &NotADirectoryError{Path: dir}
	}

	backup := t.tempPath(dir)
	if err := os.Rename(dir, backup); err != nil {
		return &IOError{Err: err}
	}

	t.journal = append(t.journal, pendingDelete{path: dir, backup: backup})
	return nil
}

// WriteFile writes content to path atomically via temp-file-plus-rename.
// Requires write permission.
func (t *Transaction) WriteFile(path string, content []byte) error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}
	if err := t.capability.RequireWrite(); err != nil {
		return err
	}

	dst, err := t.capability.ResolveForCreation(path)
	if err != nil {
		return err
	}

	tmp := t.tempPath(dst)
	f, err := os.Create(tmp)
	if err != nil {
		return &IOError{Err: err}
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return &IOError{Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &IOError{Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Err: err}
	}

	if err := os.Rename(tmp, dst); err != nil {
		return &IOError{Err: err}
	}

	t.journal = append(t.journal, created{path: dst})
	return nil
}

// Commit finalizes the transaction. Backups left behind by PendingDelete
// entries are removed best-effort; a failure to clean one up is logged but
// does not fail the commit, because the durable user-visible state is
// already correct. After Commit, every mutating method returns
// AlreadyCommittedError.
func (t *Transaction) Commit() error {
	if err := t.ensureNotCommitted(); err != nil {
		return err
	}

	for _, entry := range t.journal {
		if pd, ok := entry.(pendingDelete); ok {
			if err := pd.cleanupBackup(); err != nil {
				t.logger.Warn("commit: failed to clean up backup",
					zap.String("op", pd.describe()),
					zap.Error(err),
				)
			}
		}
	}

	t.committed = true
	return nil
}

// rollback drains the journal tail-first, undoing each entry. Each
// failure is logged and the next entry is still processed: rollback is
// best-effort and must never itself fail the caller.
func (t *Transaction) rollback() []error {
	var failures []error
	for i := len(t.journal) - 1; i >= 0; i-- {
		entry := t.journal[i]
		if err := entry.undo(); err != nil {
			failures = append(failures, &RollbackFailedError{Op: entry.describe(), Err: err})
			t.logger.Warn("rollback step failed",
				zap.String("op", entry.describe()),
				zap.Error(err),
			)
		}
	}
	t.journal = nil
	return failures
}

// Close finalizes the transaction's scope: if Commit was not already
// called, it rolls back everything journaled so far. Close never returns
// an error — rollback is logged and swallowed, matching the infallible
// destructor the design requires. Intended usage is `defer tx.Close()`
// immediately after New.
func (t *Transaction) Close() {
	if t.committed {
		return
	}
	t.rollback()
}

// Rollback is the checked alternative to the implicit rollback performed
// by Close: it returns every failure encountered while undoing the
// journal, for callers that need rollback-success acknowledgment rather
// than fire-and-forget cleanup. It is a no-op returning nil if the
// transaction already committed.
func (t *Transaction) Rollback() []error {
	if t.committed {
		return nil
	}
	return t.rollback()
}
