// Package testutil provides helpers for building throwaway git
// repositories in tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// GitRepo is a temporary repository rooted in a test directory.
type GitRepo struct {
	t    *testing.T
	Root string
}

// NewGitRepo initializes a repository under t.TempDir with identity and
// default branch configured. Tests that need the git binary call
// RequireGit first.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	r := &GitRepo{t: t, Root: t.TempDir()}
	r.Git("init", "--initial-branch=main")
	r.Git("config", "user.name", "test")
	r.Git("config", "user.email", "test@example.com")
	r.Git("config", "commit.gpgsign", "false")
	return r
}

// RequireGit skips the test when no git binary is on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// Git runs a git command in the repository root and fails the test on error.
func (r *GitRepo) Git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return string(out)
}

// WriteFile creates or overwrites a file relative to the repository root.
func (r *GitRepo) WriteFile(rel, content string) {
	r.t.Helper()
	path := filepath.Join(r.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", rel, err)
	}
}

// Remove deletes a file relative to the repository root.
func (r *GitRepo) Remove(rel string) {
	r.t.Helper()
	if err := os.Remove(filepath.Join(r.Root, rel)); err != nil {
		r.t.Fatalf("remove %s: %v", rel, err)
	}
}

// Commit stages everything and commits with the given message.
func (r *GitRepo) Commit(msg string) {
	r.t.Helper()
	r.Git("add", "-A")
	r.Git("commit", "-m", msg)
}
