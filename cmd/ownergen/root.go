package main

import (
	"github.com/spf13/cobra"

	"ownergen/internal/version"
)

var (
	configPath string
	repoPath   string
	verbosity  int
	quiet      bool
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "ownergen",
	Short: "ownergen - CODEOWNERS from git history",
	Long: `ownergen attributes file ownership to contributors from git history and
synthesizes a compact CODEOWNERS file from it.

Settings come from .ownergen/config.json (or --config), OWNERGEN_*
environment variables and command-line flags, in increasing precedence.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("ownergen version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: .ownergen/config.json)")
	pf.StringVarP(&repoPath, "repo", "C", ".", "Repository to analyze")
	pf.CountVarP(&verbosity, "verbose", "v", "Log more (-v info, -vv debug)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
	pf.StringVar(&logFile, "log-file", "", "Also write debug logs to this file")
}
