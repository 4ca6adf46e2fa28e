package ownership

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"ownergen/internal/errors"
)

// ProgressFunc is called after each file is scored. Calls are serialized.
type ProgressFunc func(done, total int)

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	Score ScoreOptions

	// Threshold is the minimum score an owner needs to be listed.
	Threshold float64
	// MinOwners is advisory: short owner lists are reported, never padded.
	MinOwners int
	MaxOwners int

	MinCommits uint
	MinLines   uint

	Exclude *Filter

	// Workers bounds concurrent file scoring. Zero means GOMAXPROCS.
	Workers  int
	Progress ProgressFunc
}

// DefaultAggregateOptions mirrors the CLI defaults.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{
		Score:     DefaultScoreOptions(),
		Threshold: 0.1,
		MinOwners: 1,
		MaxOwners: 2,
	}
}

// Validate checks option ranges.
func (o AggregateOptions) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return errors.Newf(errors.InvalidArgument, "threshold must be within [0,1], got %g", o.Threshold)
	}
	if o.MinOwners < 0 {
		return errors.Newf(errors.InvalidArgument, "min owners must be >= 0, got %d", o.MinOwners)
	}
	if o.MaxOwners < 1 {
		return errors.Newf(errors.InvalidArgument, "max owners must be >= 1, got %d", o.MaxOwners)
	}
	if o.Workers < 0 {
		return errors.Newf(errors.InvalidArgument, "workers must be >= 0, got %d", o.Workers)
	}
	if _, err := ParseStrategy(string(o.Score.Strategy)); err != nil {
		return err
	}
	return nil
}

// Summary counts what happened to each input file.
type Summary struct {
	Files          int `json:"files"`
	Excluded       int `json:"excluded"`
	NoContributors int `json:"noContributors"`
	NoOwners       int `json:"noOwners"`
	UnderOwned     int `json:"underOwned"`
	Emitted        int `json:"emitted"`
}

// LogValue logs a summary as a group of its counts.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("files", s.Files),
		slog.Int("excluded", s.Excluded),
		slog.Int("noContributors", s.NoContributors),
		slog.Int("noOwners", s.NoOwners),
		slog.Int("underOwned", s.UnderOwned),
		slog.Int("emitted", s.Emitted),
	)
}

// FileOwnership is the per-file working state of one analysis run.
type FileOwnership struct {
	Path         string
	Contributors []Contributor
	Scores       map[string]float64
}

// NewFileOwnership keeps only contributors meeting both minimums.
func NewFileOwnership(path string, contributors []Contributor, minCommits, minLines uint) *FileOwnership {
	kept := make([]Contributor, 0, len(contributors))
	for _, c := range contributors {
		if c.Stat.Commits < minCommits || c.Stat.LinesAdded < minLines {
			continue
		}
		kept = append(kept, c)
	}
	return &FileOwnership{Path: path, Contributors: kept}
}

// Calculate fills Scores.
func (f *FileOwnership) Calculate(opts ScoreOptions) error {
	scores, err := Score(f.Contributors, opts)
	if err != nil {
		return err
	}
	f.Scores = scores
	return nil
}

// TopOwners returns contributors scoring at least threshold, highest first,
// ties in contributor order, at most maxOwners.
func (f *FileOwnership) TopOwners(threshold float64, maxOwners int) []OwnerEntry {
	owners := make([]OwnerEntry, 0, len(f.Contributors))
	seen := make(map[string]bool, len(f.Contributors))
	for _, c := range f.Contributors {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		score, ok := f.Scores[c.ID]
		if !ok || score < threshold {
			continue
		}
		owners = append(owners, OwnerEntry{ID: c.ID, Name: displayName(c), Score: score})
	}

	sort.SliceStable(owners, func(i, j int) bool {
		return owners[i].Score > owners[j].Score
	})

	if maxOwners > 0 && len(owners) > maxOwners {
		owners = owners[:maxOwners]
	}
	return owners
}

type fileResult struct {
	owners         []OwnerEntry
	noContributors bool
}

// Aggregate scores every non-excluded file and returns the owner table.
// Files are scored concurrently; the table is only returned once all files
// are done.
func Aggregate(ctx context.Context, stats Stats, opts AggregateOptions) (Table, Summary, error) {
	var summary Summary
	if err := opts.Validate(); err != nil {
		return nil, summary, err
	}

	paths := make([]string, 0, len(stats))
	for path := range stats {
		summary.Files++
		if opts.Exclude.Excluded(path) {
			summary.Excluded++
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]fileResult, len(paths))

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fo := NewFileOwnership(path, stats[path], opts.MinCommits, opts.MinLines)
			if len(fo.Contributors) == 0 {
				results[i] = fileResult{noContributors: true}
			} else {
				if err := fo.Calculate(opts.Score); err != nil {
					return err
				}
				results[i] = fileResult{owners: fo.TopOwners(opts.Threshold, opts.MaxOwners)}
			}

			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(paths))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	table := make(Table, len(paths))
	for i, path := range paths {
		r := results[i]
		switch {
		case r.noContributors:
			summary.NoContributors++
		case len(r.owners) == 0:
			summary.NoOwners++
		default:
			if len(r.owners) < opts.MinOwners {
				summary.UnderOwned++
			}
			table[path] = r.owners
			summary.Emitted++
		}
	}

	return table, summary, nil
}
