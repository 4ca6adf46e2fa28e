// Package paths converts between filesystem paths and the slash-separated,
// repo-relative paths used in ownership tables and CODEOWNERS rules.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize converts an absolute path to a repo-relative canonical path.
// Symlinks are resolved on both sides when the paths exist, and the result
// always uses forward slashes. Paths outside the root start with "..".
func Canonicalize(absolutePath, repoRoot string) (string, error) {
	resolved, err := evalSymlinks(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalSymlinks(repoRoot)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// evalSymlinks resolves symlinks, keeping paths that do not exist yet.
func evalSymlinks(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return "", err
	}
	return resolved, nil
}

// RepoRelative interprets p relative to the working directory and returns it
// relative to repoRoot. ok is false when p lies outside the repository.
func RepoRelative(repoRoot, p string) (rel string, ok bool) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err = Canonicalize(abs, repoRoot)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path, repoRoot string) bool {
	_, ok := RepoRelative(repoRoot, path)
	return ok
}

// Resolve makes a configured path absolute. Relative paths are taken from
// repoRoot and may use either separator.
func Resolve(repoRoot, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	parts := strings.Split(strings.ReplaceAll(p, "\\", "/"), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}
