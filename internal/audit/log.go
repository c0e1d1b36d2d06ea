package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// AuditLog is an append-only, hash-chained record of operations. Each
// entry's prev_hash equals the SHA-256 of the previous entry's canonical
// serialization, so an after-the-fact edit to an entry is detectable by
// Verify once a later entry cites that entry's hash. Edits to the newest
// entry are not detected, since no entry cites its hash, and neither are
// edits that leave every decoded field unchanged (whitespace, JSON
// escaping), since hashes are recomputed from the parsed entry.
//
// A log handle owns its underlying file exclusively; it is not meant to be
// shared across processes. Within one process an internal mutex serializes
// concurrent callers so a single handle can safely be driven from more
// than one goroutine, though the core semantics (single owner, one
// producer at a time) match a single-writer model.
type AuditLog struct {
	mu         sync.Mutex
	file       *os.File
	path       string
	lastHash   string
	entryCount int
}

// Open opens the audit log at path, creating it if it does not exist. If
// the file already exists, its chain is verified before it is reopened for
// appending; a broken chain is returned as an error and no handle is
// produced.
func Open(path string) (*AuditLog, error) {
	if _, err := os.Stat(path); err == nil {
		return openExisting(path)
	} else if !os.IsNotExist(err) {
		return nil, &IOError{Err: err}
	}
	return createNew(path)
}

func createNew(path string) (*AuditLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	return &AuditLog{file: f, path: path, lastHash: GenesisHash, entryCount: 0}, nil
}

func openExisting(path string) (*AuditLog, error) {
	lastHash, count, err := verifyFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &IOError{Err: err}
	}

	return &AuditLog{file: f, path: path, lastHash: lastHash, entryCount: count}, nil
}

// verifyFile walks path line by line, recomputing the hash chain. It
// returns the hash of the last entry (or the genesis hash if the file has
// no entries) and the count of non-blank lines.
func verifyFile(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, &IOError{Err: err}
	}
	defer f.Close()

	expectedPrev := GenesisHash
	count := 0
	prevIdx := -1

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	idx := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			idx++
			continue
		}

		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return "", 0, &SerializationError{Index: idx, Err: err}
		}

		if entry.PrevHash != expectedPrev {
			// Blame the preceding entry: its recomputed hash is the one this
			// entry no longer cites, so that is where the content changed.
			brokenAt := idx
			if prevIdx >= 0 {
				brokenAt = prevIdx
			}
			return "", 0, &ChainBrokenError{Index: brokenAt, Expected: expectedPrev, Actual: entry.PrevHash}
		}

		hash, err := entry.Hash()
		if err != nil {
			return "", 0, &SerializationError{Index: idx, Err: err}
		}

		expectedPrev = hash
		prevIdx = idx
		count++
		idx++
	}
	if err := scanner.Err(); err != nil {
		return "", 0, &IOError{Err: err}
	}

	return expectedPrev, count, nil
}

// Append records operation with no additional context.
func (l *AuditLog) Append(operation Operation) error {
	return l.AppendWithContext(operation, "")
}

// AppendWithContext records operation, attaching context if non-empty. The
// entry is written and fsynced before the in-memory chain tip advances: on
// failure the caller's next append retries from the same prev_hash, which
// is the fail-loud behavior the format relies on to make partial writes
// detectable at the next Open.
func (l *AuditLog) AppendWithContext(operation Operation, context string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := NewLogEntry(operation, l.lastHash).WithContext(context)

	newHash, err := entry.Hash()
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return &IOError{Err: err}
	}

	if err := l.file.Sync(); err != nil {
		return &IOError{Err: err}
	}

	l.lastHash = newHash
	l.entryCount++
	return nil
}

// EntryCount returns the number of entries appended through this handle
// (including those adopted from an existing file on Open).
func (l *AuditLog) EntryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entryCount
}

// LastHash returns the hash the next appended entry will cite as its
// prev_hash.
func (l *AuditLog) LastHash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastHash
}

// Close releases the underlying file handle.
func (l *AuditLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Verify re-reads the log at path from scratch and checks the hash chain,
// returning the number of entries found. It does not require an open
// handle and does not mutate any handle's state.
func Verify(path string) (int, error) {
	_, count, err := verifyFile(path)
	return count, err
}

// ReadAll parses every entry in the log at path without verifying the
// chain; chain verification is a separate operation (Verify).
func ReadAll(path string) ([]LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	idx := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			idx++
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, &SerializationError{Index: idx, Err: err}
		}
		entries = append(entries, entry)
		idx++
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Err: err}
	}

	return entries, nil
}
