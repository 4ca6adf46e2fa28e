package history

import (
	"os/exec"
	"strings"

	"ownergen/internal/errors"
)

// IsRepository reports whether dir is inside a git work tree.
func IsRepository(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// RepoRoot finds the top-level directory of the repository containing dir.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", errors.New(errors.GitUnavailable, "not a git repository: "+dir, err)
	}
	return strings.TrimSpace(string(output)), nil
}
