package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// GenesisHash is the predecessor hash cited by the first entry ever
// appended to a log: 64 hex characters, all zero.
var GenesisHash = strings.Repeat("0", 64)

// LogEntry is a single hash-chained audit record. Its JSON serialization is
// load-bearing: the bytes produced here are exactly the bytes hashed to
// produce the prev_hash the next entry will cite, so key order and
// field-omission rules must stay pinned.
type LogEntry struct {
	Timestamp time.Time
	PrevHash  string
	Operation Operation
	Context   *string
}

// NewLogEntry builds an entry for operation, chained off prevHash, stamped
// with the current UTC time.
func NewLogEntry(operation Operation, prevHash string) LogEntry {
	return LogEntry{
		Timestamp: time.Now().UTC(),
		PrevHash:  prevHash,
		Operation: operation,
	}
}

// WithContext attaches free-form context to the entry. An empty context is
// treated the same as no context: the field is omitted on serialization.
func (e LogEntry) WithContext(context string) LogEntry {
	if context == "" {
		return e
	}
	e.Context = &context
	return e
}

// wireEntry fixes the on-disk field order: timestamp, prev_hash, operation,
// context (omitted entirely when unset). This exact shape is both the
// serialized form and the hash input.
type wireEntry struct {
	Timestamp string          `json:"timestamp"`
	PrevHash  string          `json:"prev_hash"`
	Operation json.RawMessage `json:"operation"`
	Context   *string         `json:"context,omitempty"`
}

// MarshalJSON renders the entry in its canonical wire form.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	opJSON, err := marshalOperation(e.Operation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEntry{
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		PrevHash:  e.PrevHash,
		Operation: opJSON,
		Context:   e.Context,
	})
}

// UnmarshalJSON parses the canonical wire form back into an entry.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339Nano, w.Timestamp)
	if err != nil {
		return err
	}

	op, err := unmarshalOperation(w.Operation)
	if err != nil {
		return err
	}

	e.Timestamp = ts
	e.PrevHash = w.PrevHash
	e.Operation = op
	e.Context = w.Context
	return nil
}

// Hash computes the SHA-256 hex digest of the entry's canonical JSON
// serialization. This is what the next entry in the chain cites as its
// prev_hash. Tamper detection relies on this being computed from the
// parsed struct, not from raw disk bytes: editing a substring in the file
// changes a field's decoded value, which changes this re-serialization.
func (e LogEntry) Hash() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
