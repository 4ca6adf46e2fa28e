package ownership

import (
	"strings"
	"time"

	"ownergen/internal/errors"
)

// Strategy selects how contributor activity turns into an ownership score.
type Strategy string

const (
	// StrategyCommits scores by share of commits
	StrategyCommits Strategy = "commits"
	// StrategyLines scores by share of added lines
	StrategyLines Strategy = "lines"
	// StrategyRecent scores by share of commits inside the recency window
	StrategyRecent Strategy = "recent"
	// StrategyWeighted blends the commits and lines scores
	StrategyWeighted Strategy = "weighted"
)

const (
	// DefaultRecentWindow is used by StrategyRecent when no cutoff is given.
	DefaultRecentWindow = 180 * 24 * time.Hour

	DefaultCommitsWeight = 0.4
	DefaultLinesWeight   = 0.6
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{StrategyCommits, StrategyLines, StrategyRecent, StrategyWeighted}

// ParseStrategy parses a strategy name (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyCommits:
		return StrategyCommits, nil
	case StrategyLines:
		return StrategyLines, nil
	case StrategyRecent:
		return StrategyRecent, nil
	case StrategyWeighted:
		return StrategyWeighted, nil
	default:
		return "", errors.Newf(errors.InvalidArgument, "unknown strategy %q (want commits, lines, recent or weighted)", s)
	}
}

// ScoreOptions configures Score.
type ScoreOptions struct {
	Strategy Strategy

	// Since is the start of the analyzed window. Zero means unbounded.
	Since time.Time

	// Now is the clock used for the default recency window. Nil means time.Now.
	Now func() time.Time

	CommitsWeight float64
	LinesWeight   float64

	// TimeDecay enables Decay on the commits component of StrategyWeighted.
	// It only applies when Since is set.
	TimeDecay bool
	Decay     DecayFunc
}

// DefaultScoreOptions returns the commits strategy with default weights.
func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{
		Strategy:      StrategyCommits,
		CommitsWeight: DefaultCommitsWeight,
		LinesWeight:   DefaultLinesWeight,
		TimeDecay:     true,
		Decay:         NoDecay,
	}
}

// RecentCutoff returns the start of the recency window: Since when set,
// otherwise DefaultRecentWindow before now.
func RecentCutoff(opts ScoreOptions) time.Time {
	if !opts.Since.IsZero() {
		return opts.Since
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return now().Add(-DefaultRecentWindow)
}

// Score converts one file's contributor stats into scores in [0,1].
// Non-zero scores sum to 1. An empty input yields an empty map.
func Score(contributors []Contributor, opts ScoreOptions) (map[string]float64, error) {
	switch opts.Strategy {
	case StrategyCommits:
		return byCommits(contributors), nil
	case StrategyLines:
		return byLines(contributors), nil
	case StrategyRecent:
		return byRecent(contributors), nil
	case StrategyWeighted:
		return weighted(contributors, opts)
	default:
		return nil, errors.Newf(errors.InvalidArgument, "unknown strategy %q", opts.Strategy)
	}
}

func byCommits(contributors []Contributor) map[string]float64 {
	var total uint
	for _, c := range contributors {
		total += c.Stat.Commits
	}
	scores := make(map[string]float64, len(contributors))
	if total == 0 {
		return scores
	}
	for _, c := range contributors {
		scores[c.ID] += float64(c.Stat.Commits) / float64(total)
	}
	return scores
}

func byLines(contributors []Contributor) map[string]float64 {
	var total uint
	for _, c := range contributors {
		total += c.Stat.LinesAdded
	}
	if total == 0 {
		return byCommits(contributors)
	}
	scores := make(map[string]float64, len(contributors))
	for _, c := range contributors {
		scores[c.ID] += float64(c.Stat.LinesAdded) / float64(total)
	}
	return scores
}

// byRecent expects contributors already restricted to the window (see
// RecentCutoff); the arithmetic is the commits share.
func byRecent(contributors []Contributor) map[string]float64 {
	var total uint
	for _, c := range contributors {
		total += c.Stat.Commits
	}
	if total == 0 {
		return byCommits(contributors)
	}
	scores := make(map[string]float64, len(contributors))
	for _, c := range contributors {
		scores[c.ID] += float64(c.Stat.Commits) / float64(total)
	}
	return scores
}

func weighted(contributors []Contributor, opts ScoreOptions) (map[string]float64, error) {
	if opts.CommitsWeight < 0 || opts.LinesWeight < 0 {
		return nil, errors.Newf(errors.InvalidArgument, "weights must be non-negative (commits=%g, lines=%g)", opts.CommitsWeight, opts.LinesWeight)
	}
	totalWeight := opts.CommitsWeight + opts.LinesWeight
	if totalWeight == 0 {
		return nil, errors.Newf(errors.InvalidArgument, "commits and lines weights must not both be zero")
	}

	commits := byCommits(contributors)
	if len(commits) == 0 {
		return commits, nil
	}
	lines := byLines(contributors)

	if opts.TimeDecay && !opts.Since.IsZero() {
		decay := opts.Decay
		if decay == nil {
			decay = NoDecay
		}
		commits = decay(commits, contributors, opts.Since)
	}

	scores := make(map[string]float64, len(contributors))
	for _, c := range contributors {
		if _, seen := scores[c.ID]; seen {
			continue
		}
		scores[c.ID] = (commits[c.ID]*opts.CommitsWeight + lines[c.ID]*opts.LinesWeight) / totalWeight
	}
	return scores, nil
}
