package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"ownergen/internal/codeowners"
	"ownergen/internal/config"
	"ownergen/internal/errors"
	"ownergen/internal/generate"
	"ownergen/internal/ownership"
	"ownergen/internal/storage"
	"ownergen/internal/textdiff"
)

func TestComputeDiff(t *testing.T) {
	current := map[string]interface{}{
		"strategy":  "weighted",
		"threshold": 0.1,
		"extra":     true,
		"cache": map[string]interface{}{
			"enabled": false,
			"dir":     ".ownergen-cache",
		},
		"logging": map[string]interface{}{
			"level": "warn",
		},
	}
	defaults := map[string]interface{}{
		"strategy":  "commits",
		"threshold": 0.1,
		"cache": map[string]interface{}{
			"enabled": true,
			"dir":     ".ownergen-cache",
		},
		"logging": map[string]interface{}{
			"level": "warn",
		},
	}

	got := computeDiff(current, defaults)
	want := map[string]interface{}{
		"strategy": "weighted",
		"extra":    true,
		"cache":    map[string]interface{}{"enabled": false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("computeDiff() = %v, want %v", got, want)
	}
}

func TestIsEqual(t *testing.T) {
	tests := []struct {
		a, b interface{}
		want bool
	}{
		{1, 1, true},
		{"a", "a", true},
		{1, "1", true},
		{true, false, false},
		{[]interface{}{}, []interface{}{"x"}, false},
	}
	for _, tt := range tests {
		if got := isEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("isEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueOrDefault(t *testing.T) {
	if got := valueOrDefault("", "auto"); got != "auto" {
		t.Errorf("valueOrDefault(\"\") = %q, want auto", got)
	}
	if got := valueOrDefault("set", "auto"); got != "set" {
		t.Errorf("valueOrDefault(set) = %q, want set", got)
	}
}

func TestFlattenConfig(t *testing.T) {
	current := map[string]interface{}{
		"strategy": "weighted",
		"cache":    map[string]interface{}{"enabled": true},
	}
	defaults := map[string]interface{}{
		"strategy": "commits",
		"cache":    map[string]interface{}{"enabled": true},
	}
	got := flattenConfig(current, defaults, "")
	want := []string{
		"cache.enabled: true",
		"strategy: weighted (default: commits)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flattenConfig() = %q, want %q", got, want)
	}
}

func TestPrintEnvVars(t *testing.T) {
	var buf bytes.Buffer
	printEnvVars(&buf)
	out := buf.String()
	for _, want := range []string{"OWNERGEN_STRATEGY", "strategy", "OWNERGEN_CACHE_DIR", "cache.dir", config.EnvConfigPath} {
		if !strings.Contains(out, want) {
			t.Errorf("env listing missing %q:\n%s", want, out)
		}
	}
}

func newFlagCommand(f *analysisFlags, args ...string) (*cobra.Command, error) {
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	return cmd, cmd.Flags().Parse(args)
}

func TestAnalysisFlags_Apply(t *testing.T) {
	t.Run("unset flags keep config", func(t *testing.T) {
		var f analysisFlags
		cmd, err := newFlagCommand(&f)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Strategy = "lines"
		cfg.Cache.Dir = "custom"
		f.apply(cmd, cfg)

		if cfg.Strategy != "lines" {
			t.Errorf("Strategy = %q, want lines", cfg.Strategy)
		}
		if cfg.Cache.Dir != "custom" {
			t.Errorf("Cache.Dir = %q, want custom", cfg.Cache.Dir)
		}
		if !cfg.TimeDecay || !cfg.Cache.Enabled {
			t.Error("boolean defaults were overridden")
		}
	})

	t.Run("set flags override", func(t *testing.T) {
		var f analysisFlags
		cmd, err := newFlagCommand(&f,
			"--strategy", "weighted",
			"-t", "0.25",
			"-m", "3",
			"--no-time-decay",
			"--no-cache",
			"-g", "2",
			"--since", "6 months ago",
			"-b", "develop",
			"--exclude-path", "vendor/",
			"--exclude-pattern", "*.lock",
			"--exclude-pattern", "*.min.js",
		)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.ExcludePaths = []string{"third_party/"}
		f.apply(cmd, cfg)

		if cfg.Strategy != "weighted" || cfg.Threshold != 0.25 || cfg.MaxOwners != 3 {
			t.Errorf("scoring = %s/%v/%d", cfg.Strategy, cfg.Threshold, cfg.MaxOwners)
		}
		if cfg.TimeDecay {
			t.Error("TimeDecay = true, want false")
		}
		if cfg.Cache.Enabled {
			t.Error("Cache.Enabled = true, want false")
		}
		if cfg.GranularityLevel != 2 || cfg.Since != "6 months ago" || cfg.Branch != "develop" {
			t.Errorf("granularity/since/branch = %d/%q/%q", cfg.GranularityLevel, cfg.Since, cfg.Branch)
		}
		if want := []string{"third_party/", "vendor/"}; !reflect.DeepEqual(cfg.ExcludePaths, want) {
			t.Errorf("ExcludePaths = %v, want %v", cfg.ExcludePaths, want)
		}
		if want := []string{"*.lock", "*.min.js"}; !reflect.DeepEqual(cfg.ExcludePatterns, want) {
			t.Errorf("ExcludePatterns = %v, want %v", cfg.ExcludePatterns, want)
		}
	})
}

func TestReportDrift(t *testing.T) {
	t.Run("up to date", func(t *testing.T) {
		var buf bytes.Buffer
		content := []byte("** @alice\n")
		if reportDrift(&buf, "CODEOWNERS", content, content, 3, textdiff.Palette{}) {
			t.Error("reportDrift() = true for identical content")
		}
		if got := buf.String(); got != "CODEOWNERS is up to date\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("drift", func(t *testing.T) {
		var buf bytes.Buffer
		existing := []byte("src/** @alice\n** @bob\n")
		generated := []byte("src/** @carol\n** @bob\n")
		if !reportDrift(&buf, "CODEOWNERS", existing, generated, 3, textdiff.Palette{}) {
			t.Error("reportDrift() = false for differing content")
		}
		out := buf.String()
		for _, want := range []string{
			"--- CODEOWNERS\n",
			"+++ generated\n",
			"-src/** @alice\n",
			"+src/** @carol\n",
			"CODEOWNERS is out of date: 1 lines added, 1 removed",
			"Run 'ownergen generate'",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestExplainPaths(t *testing.T) {
	content := `# hand edited
src/** @team
src/api/** @alice
* @bob
src/api/** @carol
!src/api/generated.go
`
	file, err := codeowners.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}

	results := explainPaths(file, []string{"src/api/handler.go", "src/api/generated.go", "README.md"})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	handler := results[0]
	if handler.MostSpecific == nil || handler.MostSpecific.Pattern != "src/api/**" || handler.MostSpecific.LineNumber != 3 {
		t.Errorf("handler most specific = %+v, want src/api/** at line 3", handler.MostSpecific)
	}
	if handler.LastMatch == nil || handler.LastMatch.LineNumber != 5 || handler.LastMatch.Owners[0] != "@carol" {
		t.Errorf("handler last match = %+v, want @carol at line 5", handler.LastMatch)
	}

	generated := results[1]
	if generated.LastMatch != nil {
		t.Errorf("negated path last match = %+v, want none", generated.LastMatch)
	}
	if generated.MostSpecific == nil {
		t.Error("negated path has no most specific rule")
	}

	readme := results[2]
	if readme.MostSpecific == nil || readme.MostSpecific.Pattern != "*" {
		t.Errorf("README most specific = %+v, want *", readme.MostSpecific)
	}

	var buf bytes.Buffer
	printExplanations(&buf, "CODEOWNERS", results)
	if !strings.Contains(buf.String(), "src/api/** -> @alice (line 3)") {
		t.Errorf("printed explanation missing rule:\n%s", buf.String())
	}
}

func TestRepoRelative(t *testing.T) {
	root := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute inside", filepath.Join(root, "src", "a.go"), "src/a.go"},
		{"absolute outside", filepath.Join(filepath.Dir(root), "x.go"), filepath.ToSlash(filepath.Join(filepath.Dir(root), "x.go"))},
		{"relative outside", "main.go", "main.go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repoRelative(root, tt.in); got != tt.want {
				t.Errorf("repoRelative(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := repoRelative(cwd, "cmd_test.go"); got != "cmd_test.go" {
		t.Errorf("repoRelative(cwd, cmd_test.go) = %q", got)
	}
}

func TestPrintDryRun(t *testing.T) {
	table := ownership.Table{}
	for i := 0; i < 12; i++ {
		table[fmt.Sprintf("src/f%02d.go", i)] = []ownership.OwnerEntry{
			{ID: "alice@example.com", Name: "Alice", Score: 0.75},
		}
	}
	res := &generate.Result{
		Branch:   "main",
		CacheHit: true,
		Table:    table,
		RawRules: 4,
		Rules:    []codeowners.Rule{{Pattern: "src/**", Owners: []string{"@alice"}}},
	}

	var buf bytes.Buffer
	printDryRun(&buf, res)
	out := buf.String()
	for _, want := range []string{
		"Dry run: 12 files with owners on main (cached)",
		"src/f00.go: Alice <alice@example.com> (75.0%)",
		"... and 2 more files",
		"1 rules (4 before optimization) would be written.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "src/f10.go") {
		t.Errorf("output lists more than the sample:\n%s", out)
	}
}

func TestPrintCacheEntries(t *testing.T) {
	var buf bytes.Buffer
	printCacheEntries(&buf, nil)
	if got := buf.String(); got != "Cache is empty\n" {
		t.Errorf("empty listing = %q", got)
	}

	buf.Reset()
	printCacheEntries(&buf, []storage.Entry{{
		Key:       "0123456789abcdef0123",
		TipCommit: "deadbeefcafe",
		RunID:     "run-1",
		Files:     42,
		Size:      2048,
	}})
	out := buf.String()
	for _, want := range []string{"KEY", "0123456789ab", "deadbeef", "42", "2.0 KiB", "run-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abc") {
		t.Errorf("key not shortened:\n%s", out)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatScore(0.5); got != "50.0%" {
		t.Errorf("formatScore(0.5) = %q", got)
	}
	if got := formatScore(1); got != "100.0%" {
		t.Errorf("formatScore(1) = %q", got)
	}

	bytesTests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range bytesTests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}

	if got := shortHash("", 8); got != "-" {
		t.Errorf("shortHash(\"\") = %q", got)
	}
	if got := shortHash("abc", 8); got != "abc" {
		t.Errorf("shortHash(abc) = %q", got)
	}
	if got := plural(1, "entry", "entries"); got != "entry" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(0, "entry", "entries"); got != "entries" {
		t.Errorf("plural(0) = %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"a\": 1\n}\n" {
		t.Errorf("printJSON() = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(errDrift); got != 1 {
		t.Errorf("exitCode(errDrift) = %d, want 1", got)
	}
	if got := exitCode(errors.New(errors.GitUnavailable, "not a git repository", nil)); got != 1 {
		t.Errorf("exitCode(GitUnavailable) = %d, want 1", got)
	}
}
