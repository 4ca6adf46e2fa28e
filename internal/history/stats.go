package history

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ownergen/internal/errors"
	"ownergen/internal/ownership"
)

// commitMarker starts every commit header line in FileStats' log output.
const commitMarker = "\x1e"

// logFormat is marker, hash, author email, author name, author date.
// %aE/%aN honor .mailmap.
const logFormat = "--format=%x1e%H%x1f%aE%x1f%aN%x1f%aI"

// TrackedFiles lists the files present at the tip of branch.
func (g *Git) TrackedFiles(ctx context.Context, branch string) ([]string, error) {
	if branch == "" {
		branch = "HEAD"
	}
	var files []string
	err := g.stream(ctx, func(line string) error {
		if line != "" {
			files = append(files, unquotePath(line))
		}
		return nil
	}, "ls-tree", "-r", "--name-only", branch)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FileStats walks branch history once and accumulates per-author commit and
// line counts for every file still tracked at the branch tip. Contributors
// are ordered newest first.
func (g *Git) FileStats(ctx context.Context, q Query) (ownership.Stats, error) {
	branch := q.Branch
	if branch == "" {
		branch = "HEAD"
	}

	files, err := g.TrackedFiles(ctx, branch)
	if err != nil {
		return nil, err
	}
	tracked := make(map[string]bool, len(files))
	for _, f := range files {
		tracked[f] = true
	}

	args := []string{"log", "--no-renames", "--numstat", logFormat}
	if !q.Since.IsZero() {
		args = append(args, "--since="+q.Since.Format(time.RFC3339))
	}
	args = append(args, branch, "--")

	acc := newAccumulator(tracked)
	if err := g.stream(ctx, acc.line, args...); err != nil {
		return nil, err
	}

	g.logger.Info("Collected file history",
		"branch", branch,
		"tracked", len(files),
		"withHistory", len(acc.stats),
		"commits", acc.commits,
	)
	return acc.stats, nil
}

type commitInfo struct {
	email string
	name  string
	date  time.Time
}

// accumulator folds `git log --numstat` lines into Stats.
type accumulator struct {
	tracked map[string]bool
	stats   ownership.Stats
	index   map[string]map[string]int // path -> email -> position in stats[path]
	current *commitInfo
	commits int
}

func newAccumulator(tracked map[string]bool) *accumulator {
	return &accumulator{
		tracked: tracked,
		stats:   make(ownership.Stats),
		index:   make(map[string]map[string]int),
	}
}

func (a *accumulator) line(line string) error {
	if strings.HasPrefix(line, commitMarker) {
		fields := strings.Split(strings.TrimPrefix(line, commitMarker), "\x1f")
		if len(fields) < 4 {
			return errors.Newf(errors.InternalError, "malformed git log header %q", line)
		}
		date, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			return errors.New(errors.InternalError, "malformed commit date "+fields[3], err)
		}
		a.current = &commitInfo{email: fields[1], name: fields[2], date: date}
		a.commits++
		return nil
	}

	if line == "" || a.current == nil {
		return nil
	}

	// numstat: added<TAB>deleted<TAB>path, "-" counts for binary files
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return nil
	}
	path := unquotePath(parts[2])
	if !a.tracked[path] {
		return nil
	}
	added, _ := strconv.ParseUint(parts[0], 10, 64)
	removed, _ := strconv.ParseUint(parts[1], 10, 64)

	a.add(path, uint(added), uint(removed))
	return nil
}

func (a *accumulator) add(path string, added, removed uint) {
	c := a.current
	byEmail, ok := a.index[path]
	if !ok {
		byEmail = make(map[string]int)
		a.index[path] = byEmail
	}

	i, ok := byEmail[c.email]
	if !ok {
		i = len(a.stats[path])
		byEmail[c.email] = i
		a.stats[path] = append(a.stats[path], ownership.Contributor{
			ID: c.email,
			Stat: ownership.ContributorStat{
				DisplayName: c.name,
				LastCommit:  c.date,
			},
		})
	}

	stat := &a.stats[path][i].Stat
	stat.Commits++
	stat.LinesAdded += added
	stat.LinesRemoved += removed
	if c.date.After(stat.LastCommit) {
		stat.LastCommit = c.date
	}
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}
