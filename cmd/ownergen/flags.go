package main

import (
	"github.com/spf13/cobra"

	"ownergen/internal/config"
)

// analysisFlags are shared by every command that runs the pipeline. A flag
// overrides the configuration only when it was set on the command line.
type analysisFlags struct {
	strategy        string
	threshold       float64
	minOwners       int
	maxOwners       int
	minCommits      uint
	minLines        uint
	commitsWeight   float64
	linesWeight     float64
	noTimeDecay     bool
	decay           string
	halfLife        int
	groupBy         string
	granularity     int
	excludePaths    []string
	excludePatterns []string
	usernameMapping string
	since           string
	branch          string
	workers         int
	noCache         bool
	cacheDir        string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	fs := cmd.Flags()

	fs.StringVarP(&f.strategy, "strategy", "s", d.Strategy, "Scoring strategy (commits, lines, recent, weighted)")
	fs.Float64VarP(&f.threshold, "threshold", "t", d.Threshold, "Minimum ownership score to be listed (0-1)")
	fs.IntVar(&f.minOwners, "min-owners", d.MinOwners, "Report files with fewer owners than this")
	fs.IntVarP(&f.maxOwners, "max-owners", "m", d.MaxOwners, "Maximum owners per file")
	fs.UintVar(&f.minCommits, "min-commits", d.MinCommits, "Ignore contributors with fewer commits to a file")
	fs.UintVar(&f.minLines, "min-lines", d.MinLines, "Ignore contributors with fewer added lines to a file")
	fs.Float64Var(&f.commitsWeight, "commits-weight", d.CommitsWeight, "Commits weight for the weighted strategy")
	fs.Float64Var(&f.linesWeight, "lines-weight", d.LinesWeight, "Lines weight for the weighted strategy")
	fs.BoolVar(&f.noTimeDecay, "no-time-decay", false, "Disable time decay for the weighted strategy")
	fs.StringVar(&f.decay, "decay", d.Decay, "Decay policy (none, half-life)")
	fs.IntVar(&f.halfLife, "decay-half-life", d.DecayHalfLifeDays, "Half-life in days for half-life decay")
	fs.StringVar(&f.groupBy, "group-by", d.GroupBy, "Rule grouping (directory, extension, file, mixed)")
	fs.IntVarP(&f.granularity, "granularity-level", "g", d.GranularityLevel, "Directory depth for directory grouping")
	fs.StringSliceVar(&f.excludePaths, "exclude-path", nil, "Exclude files under this path prefix (repeatable)")
	fs.StringSliceVar(&f.excludePatterns, "exclude-pattern", nil, "Exclude files matching this glob (repeatable)")
	fs.StringVar(&f.usernameMapping, "username-mapping", "", "JSON, YAML or TOML file mapping emails to usernames")
	fs.StringVar(&f.since, "since", "", "Only analyze commits after this date (e.g. 2024-01-01, '6 months ago')")
	fs.StringVarP(&f.branch, "branch", "b", "", "Branch to analyze (default: main, master or HEAD)")
	fs.IntVar(&f.workers, "workers", d.Workers, "Concurrent scoring workers (0 = number of CPUs)")
	fs.BoolVar(&f.noCache, "no-cache", false, "Do not read or write the result cache")
	fs.StringVar(&f.cacheDir, "cache-dir", d.Cache.Dir, "Result cache directory")
}

// apply copies explicitly set flags into cfg.
func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	set := fs.Changed

	if set("strategy") {
		cfg.Strategy = f.strategy
	}
	if set("threshold") {
		cfg.Threshold = f.threshold
	}
	if set("min-owners") {
		cfg.MinOwners = f.minOwners
	}
	if set("max-owners") {
		cfg.MaxOwners = f.maxOwners
	}
	if set("min-commits") {
		cfg.MinCommits = f.minCommits
	}
	if set("min-lines") {
		cfg.MinLines = f.minLines
	}
	if set("commits-weight") {
		cfg.CommitsWeight = f.commitsWeight
	}
	if set("lines-weight") {
		cfg.LinesWeight = f.linesWeight
	}
	if set("no-time-decay") {
		cfg.TimeDecay = !f.noTimeDecay
	}
	if set("decay") {
		cfg.Decay = f.decay
	}
	if set("decay-half-life") {
		cfg.DecayHalfLifeDays = f.halfLife
	}
	if set("group-by") {
		cfg.GroupBy = f.groupBy
	}
	if set("granularity-level") {
		cfg.GranularityLevel = f.granularity
	}
	if set("exclude-path") {
		cfg.ExcludePaths = append(cfg.ExcludePaths, f.excludePaths...)
	}
	if set("exclude-pattern") {
		cfg.ExcludePatterns = append(cfg.ExcludePatterns, f.excludePatterns...)
	}
	if set("username-mapping") {
		cfg.UsernameMapping = f.usernameMapping
	}
	if set("since") {
		cfg.Since = f.since
	}
	if set("branch") {
		cfg.Branch = f.branch
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	if set("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if set("cache-dir") {
		cfg.Cache.Dir = f.cacheDir
	}
}
