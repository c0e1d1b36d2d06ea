package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	if log.EntryCount() != 0 {
		t.Fatalf("EntryCount() = %d, want 0", log.EntryCount())
	}
	if log.LastHash() != GenesisHash {
		t.Fatalf("LastHash() = %s, want genesis", log.LastHash())
	}
}

func TestAppendAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileRead{Path: "/test/file.txt"}); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileWrite{Path: "/test/file.txt", Size: 1024}); err != nil {
		t.Fatal(err)
	}
	if log.EntryCount() != 2 {
		t.Fatalf("EntryCount() = %d, want 2", log.EntryCount())
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	count, err := Verify(path)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("Verify count = %d, want 2", count)
	}

	log2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if log2.EntryCount() != 2 {
		t.Fatalf("reopened EntryCount() = %d, want 2", log2.EntryCount())
	}
	if err := log2.Append(FileDelete{Path: "/test/file.txt"}); err != nil {
		t.Fatal(err)
	}
	if log2.EntryCount() != 3 {
		t.Fatalf("EntryCount() = %d, want 3", log2.EntryCount())
	}
	log2.Close()

	count, err = Verify(path)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("Verify count = %d, want 3", count)
	}
}

func TestTamperDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileRead{Path: "/first"}); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileRead{Path: "/second"}); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileRead{Path: "/third"}); err != nil {
		t.Fatal(err)
	}
	log.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(content), "/second", "/hacked", 1)
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Verify(path)
	chainBroken, ok := err.(*ChainBrokenError)
	if !ok {
		t.Fatalf("want *ChainBrokenError, got %v (%T)", err, err)
	}
	if chainBroken.Index != 1 {
		t.Fatalf("ChainBrokenError.Index = %d, want 1", chainBroken.Index)
	}
}

func TestReadAllEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Append(GitOperation{Repo: "/repos/project", Operation: "status"}); err != nil {
		t.Fatal(err)
	}
	if err := log.AppendWithContext(
		BackupMerge{BackupPath: "/backup", RepoPath: "/repo", FilesMerged: 42},
		"User confirmed merge",
	); err != nil {
		t.Fatal(err)
	}
	log.Close()

	entries, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	gitOp, ok := entries[0].Operation.(GitOperation)
	if !ok {
		t.Fatalf("entries[0].Operation is %T, want GitOperation", entries[0].Operation)
	}
	if gitOp.Repo != "/repos/project" || gitOp.Operation != "status" {
		t.Fatalf("unexpected GitOperation: %+v", gitOp)
	}

	merge, ok := entries[1].Operation.(BackupMerge)
	if !ok {
		t.Fatalf("entries[1].Operation is %T, want BackupMerge", entries[1].Operation)
	}
	if merge.FilesMerged != 42 {
		t.Fatalf("FilesMerged = %d, want 42", merge.FilesMerged)
	}
	if entries[1].Context == nil || *entries[1].Context != "User confirmed merge" {
		t.Fatalf("Context = %v, want \"User confirmed merge\"", entries[1].Context)
	}
}

func TestHashChainStructure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileRead{Path: "/a"}); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(FileRead{Path: "/b"}); err != nil {
		t.Fatal(err)
	}
	log.Close()

	entries, err := ReadAll(path)
	if err != nil {
		t.Fatal(err)
	}

	if entries[0].PrevHash != GenesisHash {
		t.Fatalf("entries[0].PrevHash = %s, want genesis", entries[0].PrevHash)
	}

	firstHash, err := entries[0].Hash()
	if err != nil {
		t.Fatal(err)
	}
	if entries[1].PrevHash != firstHash {
		t.Fatalf("entries[1].PrevHash = %s, want %s", entries[1].PrevHash, firstHash)
	}
}

func TestFixedKeyOrderAndContextOmission(t *testing.T) {
	entry := NewLogEntry(FileRead{Path: "/x"}, GenesisHash)
	data, err := entry.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	tsIdx := strings.Index(s, `"timestamp"`)
	prevIdx := strings.Index(s, `"prev_hash"`)
	opIdx := strings.Index(s, `"operation"`)
	if !(tsIdx < prevIdx && prevIdx < opIdx) {
		t.Fatalf("key order violated: %s", s)
	}
	if strings.Contains(s, `"context"`) {
		t.Fatalf("context should be omitted when unset: %s", s)
	}

	withCtx := entry.WithContext("note")
	data2, err := withCtx.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data2), `"context":"note"`) {
		t.Fatalf("context should be present when set: %s", data2)
	}
}
