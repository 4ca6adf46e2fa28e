package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ownergen/internal/codeowners"
	"ownergen/internal/errors"
	"ownergen/internal/textdiff"
)

var (
	checkFlags   analysisFlags
	checkFile    string
	checkFormat  string
	checkContext int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the committed CODEOWNERS file is up to date",
	Long: `Regenerate the rules in memory and compare them with the existing file.
Prints a unified diff and exits with status 1 when they differ.

Examples:
  ownergen check
  ownergen check --file .github/CODEOWNERS
  ownergen check --since "6 months ago" --strategy weighted`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkFlags.register(checkCmd)
	checkCmd.Flags().StringVar(&checkFile, "file", "", "File to check (default: the configured output, else the first CODEOWNERS found)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "Format of the checked file (codeowners, json, yaml, toml)")
	checkCmd.Flags().IntVar(&checkContext, "context", 3, "Lines of diff context")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	checkFlags.apply(cmd, s.cfg)
	if cmd.Flags().Changed("format") {
		s.cfg.Format = checkFormat
	}

	path := checkFile
	if path == "" {
		path = s.resolve(s.cfg.Output)
		if _, err := os.Stat(path); err != nil {
			if found := codeowners.Find(s.repoRoot); found != "" {
				path = found
			}
		}
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.DataUnavailable, "cannot read "+path, err)
	}

	format, err := codeowners.ParseFormat(s.cfg.Format)
	if err != nil {
		return err
	}

	res, err := s.generate(context.Background(), nil)
	if err != nil {
		return err
	}

	var generated bytes.Buffer
	if err := codeowners.Encode(&generated, res.Rules, format); err != nil {
		return err
	}

	if !reportDrift(os.Stdout, path, existing, generated.Bytes(), checkContext, textdiff.PaletteFor(os.Stdout)) {
		return nil
	}
	return errDrift
}

// reportDrift diffs the existing file against the generated content and
// reports whether they differ.
func reportDrift(w io.Writer, path string, existing, generated []byte, context int, p textdiff.Palette) bool {
	lines := textdiff.Lines(string(existing), string(generated))
	added, removed := textdiff.Count(lines)
	if added == 0 && removed == 0 {
		fmt.Fprintf(w, "%s%s is up to date%s\n", p.Green, path, p.Reset)
		return false
	}

	fmt.Fprint(w, textdiff.Unified(path, "generated", lines, context, p))
	fmt.Fprintf(w, "%s%s is out of date: %d lines added, %d removed%s\n",
		p.Yellow, path, added, removed, p.Reset)
	fmt.Fprintln(w, "Run 'ownergen generate' to update it.")
	return true
}
