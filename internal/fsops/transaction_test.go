package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/polysafe/polysafe/internal/capability"
)

func mustCap(t *testing.T, root string, perms capability.Permissions) *capability.DirCapability {
	t.Helper()
	cap, err := capability.New(root, perms)
	if err != nil {
		t.Fatal(err)
	}
	return cap
}

func TestCopyFileAtomic(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "source.txt"), []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	cap := mustCap(t, tmp, capability.Full())
	tx := New(cap, nil)
	defer tx.Close()

	if err := tx.CopyFile("source.txt", "dest.txt"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmp, "dest.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Fatalf("dest.txt = %q, want %q", data, "hello world")
	}
}

func TestRollbackOnClose(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "original.txt"), []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	cap := mustCap(t, tmp, capability.Full())

	func() {
		tx := New(cap, nil)
		defer tx.Close()

		if err := tx.WriteFile("new.txt", []byte("new content")); err != nil {
			t.Fatal(err)
		}
		if err := tx.DeleteFile("original.txt"); err != nil {
			t.Fatal(err)
		}

		if _, err := os.Stat(filepath.Join(tmp, "new.txt")); err != nil {
			t.Fatal("new.txt should exist before rollback")
		}
		if _, err := os.Stat(filepath.Join(tmp, "original.txt")); !os.IsNotExist(err) {
			t.Fatal("original.txt should be gone before rollback")
		}
		// tx.Close() fires here via defer, without Commit.
	}()

	if _, err := os.Stat(filepath.Join(tmp, "new.txt")); !os.IsNotExist(err) {
		t.Fatal("new.txt should have been rolled back")
	}
	data, err := os.ReadFile(filepath.Join(tmp, "original.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Fatalf("original.txt = %q, want %q", data, "original")
	}
}

func TestCreateDir(t *testing.T) {
	tmp := t.TempDir()
	cap := mustCap(t, tmp, capability.Full())
	tx := New(cap, nil)
	defer tx.Close()

	if err := tx.CreateDir("subdir"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(tmp, "subdir"))
	if err != nil || !info.IsDir() {
		t.Fatal("subdir should exist and be a directory")
	}
}

func TestCreateDirAll(t *testing.T) {
	tmp := t.TempDir()
	cap := mustCap(t, tmp, capability.Full())
	tx := New(cap, nil)
	defer tx.Close()

	if err := tx.CreateDirAll(filepath.Join("a", "b", "c", "d")); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(tmp, "a", "b", "c", "d"))
	if err != nil || !info.IsDir() {
		t.Fatal("a/b/c/d should exist and be a directory")
	}
}

func TestCreateDirAllRollbackPreservesPreexistingParent(t *testing.T) {
	tmp := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmp, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	cap := mustCap(t, tmp, capability.Full())

	func() {
		tx := New(cap, nil)
		defer tx.Close()
		if err := tx.CreateDirAll(filepath.Join("a", "b", "c")); err != nil {
			t.Fatal(err)
		}
	}()

	if _, err := os.Stat(filepath.Join(tmp, "a")); err != nil {
		t.Fatal("pre-existing parent 'a' must survive rollback")
	}
	if _, err := os.Stat(filepath.Join(tmp, "a", "b")); !os.IsNotExist(err) {
		t.Fatal("'a/b' should have been rolled back")
	}
}

func TestMoveFile(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "src.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	cap := mustCap(t, tmp, capability.Full())
	tx := New(cap, nil)
	defer tx.Close()

	if err := tx.MoveFile("src.txt", "dst.txt"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(tmp, "src.txt")); !os.IsNotExist(err) {
		t.Fatal("src.txt should no longer exist")
	}
	if _, err := os.Stat(filepath.Join(tmp, "dst.txt")); err != nil {
		t.Fatal("dst.txt should exist")
	}
}

func TestMoveFileRollback(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "src.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	cap := mustCap(t, tmp, capability.Full())

	func() {
		tx := New(cap, nil)
		defer tx.Close()
		if err := tx.MoveFile("src.txt", "dst.txt"); err != nil {
			t.Fatal(err)
		}
	}()

	if _, err := os.Stat(filepath.Join(tmp, "src.txt")); err != nil {
		t.Fatal("src.txt should have been restored")
	}
	if _, err := os.Stat(filepath.Join(tmp, "dst.txt")); !os.IsNotExist(err) {
		t.Fatal("dst.txt should not exist after rollback")
	}
}

func TestDeleteFileRollback(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "file.txt"), []byte("important"), 0o644); err != nil {
		t.Fatal(err)
	}
	cap := mustCap(t, tmp, capability.Full())

	func() {
		tx := New(cap, nil)
		defer tx.Close()
		if err := tx.DeleteFile("file.txt"); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(tmp, "file.txt")); !os.IsNotExist(err) {
			t.Fatal("file.txt should be gone before rollback")
		}
	}()

	data, err := os.ReadFile(filepath.Join(tmp, "file.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "important" {
		t.Fatalf("file.txt = %q, want %q", data, "important")
	}
}

func TestPermissionCheck(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "file.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	cap := mustCap(t, tmp, capability.ReadOnly())
	tx := New(cap, nil)
	defer tx.Close()

	if err := tx.WriteFile("new.txt", []byte("content")); err == nil {
		t.Fatal("write should fail without write permission")
	}
}

func TestCopyDirRecursive(t *testing.T) {
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "src", "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "src", "file1.txt"), []byte("file1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "src", "sub", "file2.txt"), []byte("file2"), 0o644); err != nil {
		t.Fatal(err)
	}

	cap := mustCap(t, tmp, capability.Full())
	tx := New(cap, nil)
	defer tx.Close()

	if err := CopyDirRecursive(tx, "src", "dst"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmp, "dst", "file1.txt"))
	if err != nil || string(data) != "file1" {
		t.Fatal("dst/file1.txt mismatch")
	}
	data, err = os.ReadFile(filepath.Join(tmp, "dst", "sub", "file2.txt"))
	if err != nil || string(data) != "file2" {
		t.Fatal("dst/sub/file2.txt mismatch")
	}
}

func TestCommitIsTerminal(t *testing.T) {
	tmp := t.TempDir()
	cap := mustCap(t, tmp, capability.Full())
	tx := New(cap, nil)
	defer tx.Close()

	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	err := tx.WriteFile("x.txt", []byte("x"))
	if _, ok := err.(*AlreadyCommittedError); !ok {
		t.Fatalf("want AlreadyCommittedError, got %v (%T)", err, err)
	}
}

func TestCheckedRollback(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	cap := mustCap(t, tmp, capability.Full())

	tx := New(cap, nil)
	if err := tx.MoveFile("a.txt", "b.txt"); err != nil {
		t.Fatal(err)
	}
	failures := tx.Rollback()
	if len(failures) != 0 {
		t.Fatalf("unexpected rollback failures: %v", failures)
	}
	if _, err := os.Stat(filepath.Join(tmp, "a.txt")); err != nil {
		t.Fatal("a.txt should have been restored")
	}

	// Rollback after commit is a documented no-op.
	tx2 := New(cap, nil)
	if err := tx2.Commit(); err != nil {
		t.Fatal(err)
	}
	if failures := tx2.Rollback(); failures != nil {
		t.Fatalf("Rollback after commit should return nil, got %v", failures)
	}
}
