package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ownergen/internal/codeowners"
	"ownergen/internal/generate"
)

// dryRunSample is how many files a dry run prints.
const dryRunSample = 10

var (
	genFlags  analysisFlags
	genOutput string
	genFormat string
	genDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a CODEOWNERS file from git history",
	Long: `Analyze git history, score each contributor's ownership of every tracked
file, and write an optimized CODEOWNERS file.

Examples:
  ownergen generate
  ownergen generate --strategy weighted --since "1 year ago"
  ownergen generate --group-by mixed -g 2 --exclude-path vendor/
  ownergen generate --username-mapping users.yaml -o CODEOWNERS
  ownergen generate --format json -o owners.json
  ownergen generate --dry-run`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	genFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default: .gitlab/CODEOWNERS)")
	generateCmd.Flags().StringVar(&genFormat, "format", "", "Output format (codeowners, json, yaml, toml)")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Print a sample of the ownership table and write nothing")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	genFlags.apply(cmd, s.cfg)
	if cmd.Flags().Changed("output") {
		s.cfg.Output = genOutput
	}
	if cmd.Flags().Changed("format") {
		s.cfg.Format = genFormat
	}

	progress := newProgress(os.Stderr, quiet)
	res, err := s.generate(context.Background(), progress.update)
	progress.done()
	if err != nil {
		return err
	}

	if genDryRun {
		printDryRun(os.Stdout, res)
		return nil
	}

	format, err := codeowners.ParseFormat(s.cfg.Format)
	if err != nil {
		return err
	}
	path := s.resolve(s.cfg.Output)
	if err := codeowners.WriteFile(path, res.Rules, format); err != nil {
		return err
	}

	s.logger.Info("Wrote rules", "path", path, "format", string(format))
	fmt.Printf("Wrote %d rules for %d files (%d owners) to %s\n",
		len(res.Rules), len(res.Table), len(generate.Owners(res.Rules)), path)
	return nil
}

// printDryRun prints the first files of the table, their owners and the
// rules that would be written.
func printDryRun(w io.Writer, res *generate.Result) {
	fmt.Fprintf(w, "Dry run: %d files with owners on %s", len(res.Table), res.Branch)
	if res.CacheHit {
		fmt.Fprint(w, " (cached)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, e := range generate.Sample(res.Table, dryRunSample) {
		owners := make([]string, 0, len(e.Owners))
		for _, o := range e.Owners {
			owners = append(owners, fmt.Sprintf("%s <%s> (%s)", o.Name, o.ID, formatScore(o.Score)))
		}
		fmt.Fprintf(w, "  %s: %s\n", e.Path, strings.Join(owners, ", "))
	}
	if n := len(res.Table) - dryRunSample; n > 0 {
		fmt.Fprintf(w, "  ... and %d more files\n", n)
	}

	fmt.Fprintf(w, "\n%d rules (%d before optimization) would be written.\n", len(res.Rules), res.RawRules)
}
