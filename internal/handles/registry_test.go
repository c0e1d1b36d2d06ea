package handles

import (
	"path/filepath"
	"testing"

	"github.com/polysafe/polysafe/internal/audit"
	"github.com/polysafe/polysafe/internal/capability"
	"github.com/polysafe/polysafe/internal/fsops"
)

func TestCapabilityRoundTrip(t *testing.T) {
	r := NewRegistry()
	cap, err := capability.New(t.TempDir(), capability.Full())
	if err != nil {
		t.Fatal(err)
	}

	handle, err := r.PutCapability(cap)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := r.Capability(handle)
	if !ok || got != cap {
		t.Fatalf("Capability(%q) = (%v, %v), want (%v, true)", handle, got, ok, cap)
	}

	r.DropCapability(handle)
	if _, ok := r.Capability(handle); ok {
		t.Fatal("capability should be gone after DropCapability")
	}
}

func TestAuditLogRoundTrip(t *testing.T) {
	r := NewRegistry()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log, err := audit.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	handle, err := r.PutAuditLog(log)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := r.AuditLog(handle)
	if !ok || got != log {
		t.Fatalf("AuditLog(%q) = (%v, %v), want (%v, true)", handle, got, ok, log)
	}

	if err := r.DropAuditLog(handle); err != nil {
		t.Fatalf("DropAuditLog() error = %v", err)
	}
	if _, ok := r.AuditLog(handle); ok {
		t.Fatal("audit log should be gone after DropAuditLog")
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	r := NewRegistry()
	cap, err := capability.New(t.TempDir(), capability.Full())
	if err != nil {
		t.Fatal(err)
	}
	tx := fsops.New(cap, nil)

	handle, err := r.PutTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := r.Transaction(handle)
	if !ok || got != tx {
		t.Fatalf("Transaction(%q) = (%v, %v), want (%v, true)", handle, got, ok, tx)
	}

	r.DropTransaction(handle)
	if _, ok := r.Transaction(handle); ok {
		t.Fatal("transaction should be gone after DropTransaction")
	}
}

func TestHandlesAreUnique(t *testing.T) {
	r := NewRegistry()
	cap, err := capability.New(t.TempDir(), capability.Full())
	if err != nil {
		t.Fatal(err)
	}

	h1, err := r.PutCapability(cap)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := r.PutCapability(cap)
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct handles, got %q twice", h1)
	}
}
