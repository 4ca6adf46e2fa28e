// Package codeowners turns an ownership table into CODEOWNERS rules, keeps
// the rule list small, and reads and writes CODEOWNERS files.
package codeowners

import (
	"sort"
	"strings"

	"ownergen/internal/errors"
	"ownergen/internal/ownership"
)

// GroupBy selects how files are folded into patterns.
type GroupBy string

const (
	GroupDirectory GroupBy = "directory"
	GroupExtension GroupBy = "extension"
	GroupFile      GroupBy = "file"
	GroupMixed     GroupBy = "mixed"
)

// GroupModes lists the supported grouping modes.
var GroupModes = []GroupBy{GroupDirectory, GroupExtension, GroupFile, GroupMixed}

// ParseGroupBy parses a grouping mode name, case-insensitively.
func ParseGroupBy(s string) (GroupBy, error) {
	g := GroupBy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range GroupModes {
		if g == known {
			return g, nil
		}
	}
	return "", errors.Newf(errors.InvalidArgument, "unknown grouping mode %q (want directory, extension, file or mixed)", s)
}

// SynthesizeOptions configures Synthesize.
type SynthesizeOptions struct {
	GroupBy GroupBy
	// Granularity is the directory depth used by directory grouping.
	Granularity int
	Formatter   *Formatter
	// Exclude is applied again to the table's paths.
	Exclude *ownership.Filter
}

// DefaultSynthesizeOptions groups by top-level directory.
func DefaultSynthesizeOptions() SynthesizeOptions {
	return SynthesizeOptions{GroupBy: GroupDirectory, Granularity: 1}
}

// Synthesize folds a per-file ownership table into pattern rules.
func Synthesize(table ownership.Table, opts SynthesizeOptions) (RuleSet, error) {
	if opts.Granularity < 1 {
		return nil, errors.Newf(errors.InvalidArgument, "granularity must be >= 1, got %d", opts.Granularity)
	}
	if opts.Formatter == nil {
		opts.Formatter = NewFormatter(nil)
	}

	paths := make([]string, 0, len(table))
	for _, p := range table.Paths() {
		if !opts.Exclude.Excluded(p) {
			paths = append(paths, p)
		}
	}

	switch opts.GroupBy {
	case GroupDirectory:
		return group(table, paths, opts.Formatter, func(p string) string {
			return directoryPattern(p, opts.Granularity)
		}), nil
	case GroupExtension:
		return group(table, paths, opts.Formatter, extensionPattern), nil
	case GroupFile:
		return group(table, paths, opts.Formatter, func(p string) string { return p }), nil
	case GroupMixed:
		rules := group(table, paths, opts.Formatter, func(p string) string {
			return directoryPattern(p, opts.Granularity)
		})
		for pattern, owners := range group(table, paths, opts.Formatter, extensionPattern) {
			rules[pattern] = owners
		}
		return rules, nil
	default:
		return nil, errors.Newf(errors.InvalidArgument, "unknown grouping mode %q", opts.GroupBy)
	}
}

// group merges owners of every path that maps to the same pattern. Each
// handle keeps its best score; ties keep first-seen order.
func group(table ownership.Table, paths []string, formatter *Formatter, patternOf func(string) string) RuleSet {
	groups := make(map[string]*handleScores)
	for _, path := range paths {
		pattern := patternOf(path)
		g, ok := groups[pattern]
		if !ok {
			g = newHandleScores()
			groups[pattern] = g
		}
		for _, owner := range table[path] {
			g.add(formatter.Format(owner.ID), owner.Score)
		}
	}

	rules := make(RuleSet, len(groups))
	for pattern, g := range groups {
		if ranked := g.ranked(); len(ranked) > 0 {
			rules[pattern] = ranked
		}
	}
	return rules
}

type handleScores struct {
	order []string
	best  map[string]float64
}

func newHandleScores() *handleScores {
	return &handleScores{best: make(map[string]float64)}
}

func (h *handleScores) add(handle string, score float64) {
	prev, ok := h.best[handle]
	if !ok {
		h.order = append(h.order, handle)
		h.best[handle] = score
		return
	}
	if score > prev {
		h.best[handle] = score
	}
}

func (h *handleScores) ranked() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	sort.SliceStable(out, func(i, j int) bool {
		return h.best[out[i]] > h.best[out[j]]
	})
	return out
}

// directoryPattern maps a path to "<first n dirs>/**"; root files map to "**".
func directoryPattern(path string, granularity int) string {
	parts := strings.Split(path, "/")
	if len(parts) == 1 {
		return "**"
	}
	depth := granularity
	if depth > len(parts)-1 {
		depth = len(parts) - 1
	}
	return strings.Join(parts[:depth], "/") + "/**"
}

// extensionPattern maps a path to "*<ext>", or "*" when it has no extension.
func extensionPattern(path string) string {
	return "*" + fileExtension(path)
}

// fileExtension returns the final ".suffix" of the base name. Dotfiles such as
// ".gitignore" and names ending in '.' have none.
func fileExtension(path string) string {
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
