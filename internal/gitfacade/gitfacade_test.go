package gitfacade

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")
}

func TestIsValidRepo(t *testing.T) {
	requireGit(t)
	tmp := t.TempDir()

	if IsValidRepo(tmp) {
		t.Fatal("fresh temp dir should not be a repo")
	}

	initRepo(t, tmp)
	if !IsValidRepo(tmp) {
		t.Fatal("initialized dir should be a repo")
	}
}

func TestRepoStatusWithUntracked(t *testing.T) {
	requireGit(t)
	tmp := t.TempDir()
	initRepo(t, tmp)

	if err := os.WriteFile(filepath.Join(tmp, "new.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	status, err := Status(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if status.IsClean {
		t.Fatal("status should not be clean")
	}
	if !status.HasUntracked {
		t.Fatal("status should report untracked files")
	}
}

func TestStageAll(t *testing.T) {
	requireGit(t)
	tmp := t.TempDir()
	initRepo(t, tmp)

	if err := os.WriteFile(filepath.Join(tmp, "file.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := StageAll(tmp); err != nil {
		t.Fatal(err)
	}

	status, err := Status(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if !status.HasStaged {
		t.Fatal("status should report staged changes")
	}
}

func TestFindRepos(t *testing.T) {
	requireGit(t)
	tmp := t.TempDir()

	repo1 := filepath.Join(tmp, "project1")
	repo2 := filepath.Join(tmp, "group", "project2")
	if err := os.MkdirAll(repo1, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(repo2, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmp, "not-a-repo"), 0o755); err != nil {
		t.Fatal(err)
	}

	initRepo(t, repo1)
	initRepo(t, repo2)

	repos, err := FindRepos(tmp, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 2 {
		t.Fatalf("len(repos) = %d, want 2: %v", len(repos), repos)
	}
}

func TestStatusMany(t *testing.T) {
	requireGit(t)

	var repos []string
	for i := 0; i < 3; i++ {
		repo := filepath.Join(t.TempDir())
		initRepo(t, repo)
		repos = append(repos, repo)
	}

	results := StatusMany(repos)
	if len(results) != len(repos) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(repos))
	}
	for i, result := range results {
		if result.Err != nil {
			t.Fatalf("StatusMany()[%d].Err = %v", i, result.Err)
		}
		if result.Value.Path != repos[i] {
			t.Errorf("results[%d].Value.Path = %q, want %q", i, result.Value.Path, repos[i])
		}
	}
}

func TestGetRemoteURL(t *testing.T) {
	requireGit(t)
	tmp := t.TempDir()
	initRepo(t, tmp)

	url, err := GetRemoteURL(tmp, "origin")
	if err != nil {
		t.Fatal(err)
	}
	if url != nil {
		t.Fatalf("expected no remote, got %v", *url)
	}

	cmd := exec.Command("git", "remote", "add", "origin", "https://example.com/user/repo.git")
	cmd.Dir = tmp
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git remote add: %v\n%s", err, out)
	}

	url, err = GetRemoteURL(tmp, "origin")
	if err != nil {
		t.Fatal(err)
	}
	if url == nil || *url != "https://example.com/user/repo.git" {
		t.Fatalf("url = %v, want https://example.com/user/repo.git", url)
	}
}
