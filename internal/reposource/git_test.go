package reposource

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "--quiet")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
}

func writeAndCommit(t *testing.T, dir, path, content, message string) {
	t.Helper()
	full := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "add", path)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
	cmd = exec.Command("git", "commit", "--quiet", "-m", message)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git commit: %v\n%s", err, out)
	}
}

func drain(t *testing.T, out <-chan RawCommit, errc <-chan error) []RawCommit {
	t.Helper()
	var commits []RawCommit
	for {
		select {
		case rc, ok := <-out:
			if !ok {
				return commits
			}
			commits = append(commits, rc)
		case err := <-errc:
			if err != nil {
				t.Fatalf("iteration error: %v", err)
			}
		}
	}
}

func TestIterCommitsFromHeadSingleCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "hello", "add a")

	src := New(dir)
	out, errc := src.IterCommitsFromHead(context.Background(), 10)
	commits := drain(t, out, errc)

	if len(commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(commits))
	}
	c := commits[0]
	if len(c.Parents) != 0 {
		t.Errorf("expected initial commit to have no parents, got %v", c.Parents)
	}
	if len(c.Files) != 1 || c.Files[0] != "a.txt" {
		t.Errorf("expected files [a.txt], got %v", c.Files)
	}
	if c.Diffs["a.txt"].ChangeType != Added {
		t.Errorf("expected Added change type, got %v", c.Diffs["a.txt"].ChangeType)
	}
}

func TestIterCommitsFromHeadNewestFirst(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "v1", "first")
	writeAndCommit(t, dir, "b.txt", "v1", "second")

	src := New(dir)
	out, errc := src.IterCommitsFromHead(context.Background(), 10)
	commits := drain(t, out, errc)

	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Files[0] != "b.txt" {
		t.Errorf("expected newest-first ordering with b.txt first, got %v", commits[0].Files)
	}
}

func TestIterCommitsFromHeadRespectsMaxDepth(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "v1", "first")
	writeAndCommit(t, dir, "b.txt", "v1", "second")
	writeAndCommit(t, dir, "c.txt", "v1", "third")

	src := New(dir)
	out, errc := src.IterCommitsFromHead(context.Background(), 2)
	commits := drain(t, out, errc)

	if len(commits) != 2 {
		t.Fatalf("expected 2 commits bounded by max depth, got %d", len(commits))
	}
}

func TestIterCommitsFromHeadEmptyRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)

	src := New(dir)
	out, errc := src.IterCommitsFromHead(context.Background(), 10)
	commits := drain(t, out, errc)

	if len(commits) != 0 {
		t.Errorf("expected zero commits for empty repo, got %d", len(commits))
	}
}

func TestCheckoutUnknownRevisionFails(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "v1", "first")

	src := New(dir)
	err := src.Checkout(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("expected error for unknown revision")
	}
	if _, ok := err.(*ErrRevisionNotFound); !ok {
		t.Errorf("expected *ErrRevisionNotFound, got %T: %v", err, err)
	}
}

func TestFileExistsInWorktree(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "v1", "first")

	src := New(dir)
	if !src.FileExistsInWorktree("a.txt") {
		t.Error("expected a.txt to exist in worktree")
	}
	if src.FileExistsInWorktree("missing.txt") {
		t.Error("expected missing.txt to not exist")
	}
}
