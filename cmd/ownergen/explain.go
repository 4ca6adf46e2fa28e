package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ownergen/internal/codeowners"
	"ownergen/internal/errors"
	"ownergen/internal/paths"
)

var (
	explainFlags    analysisFlags
	explainFile     string
	explainGenerate bool
	explainJSON     bool
)

var explainCmd = &cobra.Command{
	Use:   "explain <path>...",
	Short: "Show which CODEOWNERS rule owns a path",
	Long: `Resolve paths against a CODEOWNERS file and show the matching rule.

Two resolutions are shown: the most specific rule (ownergen's ordering, which
does not depend on line order) and the last matching rule (how GitHub and
GitLab read the file). They only differ for hand-edited files.

Examples:
  ownergen explain src/api/handler.go
  ownergen explain --file .github/CODEOWNERS docs/ README.md
  ownergen explain --generate --group-by file src/main.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	explainFlags.register(explainCmd)
	explainCmd.Flags().StringVar(&explainFile, "file", "", "CODEOWNERS file to read (default: the configured output, else the first found)")
	explainCmd.Flags().BoolVar(&explainGenerate, "generate", false, "Explain freshly generated rules instead of a file")
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(explainCmd)
}

// explanation is how one path resolves.
type explanation struct {
	Path         string                 `json:"path"`
	MostSpecific *codeowners.ParsedRule `json:"mostSpecific,omitempty"`
	LastMatch    *codeowners.ParsedRule `json:"lastMatch,omitempty"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	explainFlags.apply(cmd, s.cfg)

	var file *codeowners.File
	if explainGenerate {
		res, err := s.generate(context.Background(), nil)
		if err != nil {
			return err
		}
		file, err = codeowners.Parse(strings.NewReader(codeowners.Render(res.Rules)))
		if err != nil {
			return err
		}
		file.Path = "(generated)"
	} else {
		path := explainFile
		if path == "" {
			path = s.resolve(s.cfg.Output)
			if _, err := os.Stat(path); err != nil {
				path = codeowners.Find(s.repoRoot)
			}
		}
		if path == "" {
			return errors.New(errors.DataUnavailable, "no CODEOWNERS file found in "+s.repoRoot, nil)
		}
		if file, err = codeowners.ParseFile(path); err != nil {
			return err
		}
	}

	paths := make([]string, len(args))
	for i, a := range args {
		paths[i] = repoRelative(s.repoRoot, a)
	}
	results := explainPaths(file, paths)

	if explainJSON {
		return printJSON(os.Stdout, results)
	}
	printExplanations(os.Stdout, file.Path, results)
	return nil
}

// explainPaths resolves each path both ways. Most-specific resolution is
// mapped back to the first line carrying the winning pattern.
func explainPaths(file *codeowners.File, paths []string) []explanation {
	out := make([]explanation, 0, len(paths))
	for _, p := range paths {
		e := explanation{Path: p}
		if rule, ok := file.MostSpecific(p); ok {
			for i := range file.Rules {
				r := file.Rules[i]
				if !r.IsNegation && r.Pattern == rule.Pattern {
					e.MostSpecific = &r
					break
				}
			}
		}
		if rule, ok := file.LastMatch(p); ok {
			e.LastMatch = &rule
		}
		out = append(out, e)
	}
	return out
}

func printExplanations(w io.Writer, source string, results []explanation) {
	fmt.Fprintf(w, "Rules from %s\n\n", source)
	for _, e := range results {
		fmt.Fprintln(w, e.Path)
		if e.MostSpecific == nil && e.LastMatch == nil {
			fmt.Fprintln(w, "  no matching rule (unowned)")
			continue
		}
		fmt.Fprintf(w, "  most specific: %s\n", describeRule(e.MostSpecific))
		fmt.Fprintf(w, "  last match:    %s\n", describeRule(e.LastMatch))
	}
}

func describeRule(r *codeowners.ParsedRule) string {
	if r == nil {
		return "none"
	}
	return fmt.Sprintf("%s -> %s (line %d)", r.Pattern, strings.Join(r.Owners, " "), r.LineNumber)
}

// repoRelative returns p relative to root, or p itself when it lies outside
// the repository.
func repoRelative(root, p string) string {
	if rel, ok := paths.RepoRelative(root, p); ok {
		return rel
	}
	return filepath.ToSlash(p)
}
