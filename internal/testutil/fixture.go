// Package testutil provides helpers for golden tests and throwaway git
// repositories.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Author identifies a commit author in a fixture repository.
type Author struct {
	Name  string
	Email string
}

// GitRepo is a temporary git repository on branch main.
type GitRepo struct {
	t    *testing.T
	Root string
}

// NewGitRepo creates an empty repository, skipping the test when git is not
// installed.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	repo := &GitRepo{t: t, Root: t.TempDir()}
	repo.Git(nil, "init", "-q")
	repo.Git(nil, "symbolic-ref", "HEAD", "refs/heads/main")
	repo.Git(nil, "config", "user.name", "Fixture")
	repo.Git(nil, "config", "user.email", "fixture@example.com")
	repo.Git(nil, "config", "commit.gpgsign", "false")
	return repo
}

// Git runs a git command in the repository and returns its trimmed output.
func (r *GitRepo) Git(env []string, args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "HOME="+r.Root)
	cmd.Env = append(cmd.Env, env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// Commit writes files (path -> content), stages everything and commits as
// author at when. A nil content removes the file.
func (r *GitRepo) Commit(author Author, when time.Time, files map[string]*string, message string) string {
	r.t.Helper()

	for path, content := range files {
		full := filepath.Join(r.Root, filepath.FromSlash(path))
		if content == nil {
			if err := os.Remove(full); err != nil {
				r.t.Fatalf("remove %s: %v", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			r.t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(*content), 0o644); err != nil {
			r.t.Fatalf("write %s: %v", path, err)
		}
	}

	date := when.Format(time.RFC3339)
	env := []string{
		"GIT_AUTHOR_NAME=" + author.Name,
		"GIT_AUTHOR_EMAIL=" + author.Email,
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_NAME=" + author.Name,
		"GIT_COMMITTER_EMAIL=" + author.Email,
		"GIT_COMMITTER_DATE=" + date,
	}
	r.Git(nil, "add", "-A")
	r.Git(env, "commit", "-q", "-m", message)
	return r.Git(nil, "rev-parse", "HEAD")
}

// Content is a convenience for building Commit file maps.
func Content(s string) *string {
	return &s
}
