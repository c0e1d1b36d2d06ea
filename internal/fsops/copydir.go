package fsops

import (
	"os"
	"path/filepath"
)

// CopyDirRecursive walks from (resolved through tx's capability) and
// reproduces its tree under to, one CreateDir/CopyFile journal entry per
// leaf. Because every mutation is journaled individually, a mid-walk
// failure leaves the journal in a state that rollback unwinds cleanly —
// there is no separate recursive-undo path to get wrong.
func CopyDirRecursive(tx *Transaction, from, to string) error {
	src, err := tx.capability.Resolve(from)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return &NotADirectoryError{Path: src}
	}

	if err := tx.CreateDir(to); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return &IOError{Err: err}
	}

	for _, entry := range entries {
		srcPath := filepath.Join(from, entry.Name())
		dstPath := filepath.Join(to, entry.Name())

		if entry.IsDir() {
			if err := CopyDirRecursive(tx, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := tx.CopyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}
