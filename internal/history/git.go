// Package history extracts per-file contributor statistics from git.
package history

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"ownergen/internal/errors"
	"ownergen/internal/ownership"
	"ownergen/internal/slogutil"
)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 5 * time.Minute

// Query selects the history to analyze.
type Query struct {
	// Since drops commits older than this; zero means all history.
	Since  time.Time
	Branch string
}

// Provider supplies contributor statistics for one analysis run.
type Provider interface {
	FileStats(ctx context.Context, q Query) (ownership.Stats, error)
	// TipCommit returns the commit hash branch points at.
	TipCommit(ctx context.Context, branch string) (string, error)
	// DefaultBranch picks the branch to analyze when none is given.
	DefaultBranch(ctx context.Context) string
}

// Git reads history by shelling out to the git binary.
type Git struct {
	repoRoot string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGit returns a Provider for the repository at repoRoot. It fails with
// GitUnavailable when git is missing or repoRoot is not a repository.
func NewGit(repoRoot string, timeout time.Duration, logger *slog.Logger) (*Git, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if _, err := exec.LookPath("git"); err != nil {
		return nil, errors.New(errors.GitUnavailable, "git executable not found in PATH", err)
	}
	if !IsRepository(repoRoot) {
		return nil, errors.New(errors.GitUnavailable, "not a git repository: "+repoRoot, nil)
	}

	logger.Debug("Git provider initialized",
		"repoRoot", repoRoot,
		"timeout", timeout.String(),
	)
	return &Git{repoRoot: repoRoot, timeout: timeout, logger: logger}, nil
}

// RepoRoot returns the repository root the provider reads from.
func (g *Git) RepoRoot() string {
	return g.repoRoot
}

// baseArgs keep paths unquoted in ls-tree and numstat output.
var baseArgs = []string{"-c", "core.quotepath=false"}

// output runs a git command and returns its trimmed stdout.
func (g *Git) output(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", append(baseArgs, args...)...)
	cmd.Dir = g.repoRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	g.logger.Debug("Executing git command", "args", args)

	out, err := cmd.Output()
	if err != nil {
		return "", g.commandError(ctx, args, stderr.String(), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// stream runs a git command and calls fn for every stdout line.
func (g *Git) stream(ctx context.Context, fn func(line string) error, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", append(baseArgs, args...)...)
	cmd.Dir = g.repoRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.New(errors.InternalError, "failed to open git stdout", err)
	}

	g.logger.Debug("Streaming git command", "args", args)

	if err := cmd.Start(); err != nil {
		return g.commandError(ctx, args, "", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var fnErr error
	for scanner.Scan() {
		if fnErr = fn(scanner.Text()); fnErr != nil {
			break
		}
	}
	scanErr := scanner.Err()

	if fnErr != nil {
		cancel()
		_ = cmd.Wait()
		return fnErr
	}
	if err := cmd.Wait(); err != nil {
		return g.commandError(ctx, args, stderr.String(), err)
	}
	if scanErr != nil {
		return errors.New(errors.InternalError, "failed to read git output", scanErr)
	}
	return nil
}

func (g *Git) commandError(ctx context.Context, args []string, stderr string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.New(errors.Timeout, fmt.Sprintf("git %s timed out after %s", args[0], g.timeout), err)
	}
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	return errors.New(errors.GitUnavailable, "git "+args[0]+" failed", err).
		WithDetails(map[string]interface{}{
			"args":   args,
			"stderr": strings.TrimSpace(stderr),
		})
}

// DefaultBranch returns "main" or "master" when such a local branch exists,
// otherwise "HEAD".
func (g *Git) DefaultBranch(ctx context.Context) string {
	for _, name := range []string{"main", "master"} {
		if _, err := g.output(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name); err == nil {
			return name
		}
	}
	return "HEAD"
}

// TipCommit resolves branch to a commit hash.
func (g *Git) TipCommit(ctx context.Context, branch string) (string, error) {
	if branch == "" {
		branch = "HEAD"
	}
	return g.output(ctx, "rev-parse", "--verify", branch+"^{commit}")
}
