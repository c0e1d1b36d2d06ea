// Package handles gives long-lived capability, audit log and transaction
// values opaque string identities so that callers outside a single Go
// call stack — a CLI subcommand chain, or an eventual language binding
// sitting in front of this module the way the original's NIF bindings
// sat in front of its Rust crates — can refer to them by handle instead
// of holding the pointer directly.
package handles

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/polysafe/polysafe/internal/audit"
	"github.com/polysafe/polysafe/internal/capability"
	"github.com/polysafe/polysafe/internal/fsops"
)

// Registry maps opaque handles to live resources. The zero value is not
// usable; construct one with NewRegistry.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]*capability.DirCapability
	auditLogs    map[string]*audit.AuditLog
	transactions map[string]*fsops.Transaction
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]*capability.DirCapability),
		auditLogs:    make(map[string]*audit.AuditLog),
		transactions: make(map[string]*fsops.Transaction),
	}
}

func newHandle(prefix string) (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate handle: %w", err)
	}
	return prefix + "_" + hex.EncodeToString(buf[:]), nil
}

// PutCapability registers cap and returns its handle.
func (r *Registry) PutCapability(cap *capability.DirCapability) (string, error) {
	h, err := newHandle("cap")
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[h] = cap
	return h, nil
}

// Capability looks up a capability by handle.
func (r *Registry) Capability(handle string) (*capability.DirCapability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cap, ok := r.capabilities[handle]
	return cap, ok
}

// DropCapability removes a capability handle from the registry. It does
// not affect any transaction already holding the underlying pointer.
func (r *Registry) DropCapability(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.capabilities, handle)
}

// PutAuditLog registers log and returns its handle.
func (r *Registry) PutAuditLog(log *audit.AuditLog) (string, error) {
	h, err := newHandle("log")
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditLogs[h] = log
	return h, nil
}

// AuditLog looks up an audit log by handle.
func (r *Registry) AuditLog(handle string) (*audit.AuditLog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log, ok := r.auditLogs[handle]
	return log, ok
}

// DropAuditLog closes and removes an audit log handle.
func (r *Registry) DropAuditLog(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.auditLogs[handle]
	if !ok {
		return nil
	}
	delete(r.auditLogs, handle)
	return log.Close()
}

// PutTransaction registers tx and returns its handle.
func (r *Registry) PutTransaction(tx *fsops.Transaction) (string, error) {
	h, err := newHandle("txn")
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[h] = tx
	return h, nil
}

// Transaction looks up a transaction by handle.
func (r *Registry) Transaction(handle string) (*fsops.Transaction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[handle]
	return tx, ok
}

// DropTransaction closes (rolling back if uncommitted) and removes a
// transaction handle.
func (r *Registry) DropTransaction(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[handle]
	if !ok {
		return
	}
	delete(r.transactions, handle)
	tx.Close()
}
