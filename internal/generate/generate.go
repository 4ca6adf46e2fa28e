// Package generate runs one analysis end to end: history extraction, cache
// lookup, scoring, rule synthesis and optimization.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"ownergen/internal/codeowners"
	"ownergen/internal/config"
	"ownergen/internal/history"
	"ownergen/internal/ownership"
	"ownergen/internal/slogutil"
	"ownergen/internal/storage"
	"ownergen/internal/usermap"
)

// Options are the per-run inputs beyond the history provider and cache.
type Options struct {
	Config *config.Config

	// Repo identifies the repository in cache keys, usually its root path.
	Repo string

	Mapping  usermap.Mapping
	Progress ownership.ProgressFunc
}

// Result is what one run produced.
type Result struct {
	Branch   string `json:"branch"`
	Tip      string `json:"tip"`
	CacheKey string `json:"cacheKey"`
	CacheHit bool   `json:"cacheHit"`
	// RunID identifies the cache entry the table was stored in or read from.
	RunID string `json:"runId,omitempty"`

	Table   ownership.Table   `json:"-"`
	Summary ownership.Summary `json:"summary"`

	RawRules int               `json:"rawRules"`
	Rules    []codeowners.Rule `json:"rules,omitempty"`
}

// Runner executes analysis runs against one history provider.
type Runner struct {
	provider history.Provider
	cache    *storage.Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunner creates a runner. A nil cache disables caching.
func NewRunner(provider history.Provider, cache *storage.Cache, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Runner{
		provider: provider,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Run analyzes history and returns the optimized rules.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	res, err := r.Analyze(ctx, opts)
	if err != nil {
		return nil, err
	}

	cfg := opts.Config
	groupBy, err := codeowners.ParseGroupBy(cfg.GroupBy)
	if err != nil {
		return nil, err
	}
	filter, err := ownership.NewFilter(cfg.ExcludePaths, cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	raw, err := codeowners.Synthesize(res.Table, codeowners.SynthesizeOptions{
		GroupBy:     groupBy,
		Granularity: cfg.GranularityLevel,
		Formatter:   codeowners.NewFormatter(opts.Mapping),
		Exclude:     filter,
	})
	if err != nil {
		return nil, err
	}
	res.RawRules = len(raw)
	res.Rules = codeowners.Optimize(raw)

	r.logger.Info("Generated rules",
		"groupBy", string(groupBy),
		"rawRules", res.RawRules,
		"rules", len(res.Rules),
	)
	return res, nil
}

// Analyze produces the ownership table, from the cache when possible.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	clock := func() time.Time { return now }

	var since time.Time
	if cfg.Since != "" {
		var err error
		if since, err = history.ParseSince(cfg.Since, now); err != nil {
			return nil, err
		}
	}
	scoreOpts := cfg.ScoreOptions(since, clock)

	filter, err := ownership.NewFilter(cfg.ExcludePaths, cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	branch := cfg.Branch
	if branch == "" {
		branch = r.provider.DefaultBranch(ctx)
		r.logger.Info("Using default branch", "branch", branch)
	}
	tip, err := r.provider.TipCommit(ctx, branch)
	if err != nil {
		return nil, err
	}

	query := history.Query{Since: since, Branch: branch}
	params := storage.Params{
		Repo:            opts.Repo,
		Branch:          branch,
		Since:           cfg.Since,
		Strategy:        cfg.Strategy,
		Threshold:       cfg.Threshold,
		MinOwners:       cfg.MinOwners,
		MaxOwners:       cfg.MaxOwners,
		MinCommits:      cfg.MinCommits,
		MinLines:        cfg.MinLines,
		CommitsWeight:   cfg.CommitsWeight,
		LinesWeight:     cfg.LinesWeight,
		TimeDecay:       cfg.TimeDecay,
		Decay:           cfg.Decay,
		ExcludePaths:    cfg.ExcludePaths,
		ExcludePatterns: cfg.ExcludePatterns,
	}
	if scoreOpts.Strategy == ownership.StrategyRecent && since.IsZero() {
		cutoff := ownership.RecentCutoff(scoreOpts)
		query.Since = cutoff
		params.RecentCutoff = cutoff.Format("2006-01-02")
	}
	if cfg.Decay == config.DecayHalfLife {
		params.Decay = fmt.Sprintf("%s:%d", cfg.Decay, cfg.DecayHalfLifeDays)
	}
	if cfg.DecayActive() {
		params.AsOf = now.Format("2006-01-02")
	}

	res := &Result{
		Branch:   branch,
		Tip:      tip,
		CacheKey: storage.CacheKey(params),
	}

	if r.cache != nil {
		if snap, ok := r.cache.Get(res.CacheKey, tip); ok {
			r.logger.Info("Using cached ownership table",
				"branch", branch,
				"runId", snap.RunID,
				"summary", snap.Summary,
			)
			res.CacheHit = true
			res.RunID = snap.RunID
			res.Table = snap.Table
			res.Summary = snap.Summary
			return res, nil
		}
	}

	stats, err := r.provider.FileStats(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table, summary, err := ownership.Aggregate(ctx, stats, ownership.AggregateOptions{
		Score:      scoreOpts,
		Threshold:  cfg.Threshold,
		MinOwners:  cfg.MinOwners,
		MaxOwners:  cfg.MaxOwners,
		MinCommits: cfg.MinCommits,
		MinLines:   cfg.MinLines,
		Exclude:    filter,
		Workers:    cfg.Workers,
		Progress:   opts.Progress,
	})
	if err != nil {
		return nil, err
	}
	res.Table = table
	res.Summary = summary

	r.logger.Info("Analyzed ownership",
		"branch", branch,
		"summary", summary,
		"duration", time.Since(start),
	)
	if summary.UnderOwned > 0 {
		r.logger.Info("Files with fewer owners than requested",
			"count", summary.UnderOwned,
			"minOwners", cfg.MinOwners,
		)
	}

	if r.cache != nil {
		runID, err := r.cache.Set(res.CacheKey, tip, params, table, summary)
		if err != nil {
			r.logger.Warn("Failed to store ownership table", "error", err.Error())
		} else {
			res.RunID = runID
			r.logger.Debug("Stored ownership table", "runId", runID)
		}
	}
	return res, nil
}

// SampleEntry is one file shown by a dry run.
type SampleEntry struct {
	Path   string                 `json:"path"`
	Owners []ownership.OwnerEntry `json:"owners"`
}

// Sample returns the first n files of table in path order.
func Sample(table ownership.Table, n int) []SampleEntry {
	paths := table.Paths()
	if n >= 0 && len(paths) > n {
		paths = paths[:n]
	}
	sample := make([]SampleEntry, 0, len(paths))
	for _, p := range paths {
		sample = append(sample, SampleEntry{Path: p, Owners: table[p]})
	}
	return sample
}

// Owners lists every distinct owner handle in rules, sorted.
func Owners(rules []codeowners.Rule) []string {
	seen := make(map[string]bool)
	for _, r := range rules {
		for _, o := range r.Owners {
			seen[o] = true
		}
	}
	out := make([]string, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
