package codeowners

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ownergen/internal/errors"
)

func TestParseFile(t *testing.T) {
	tempDir := t.TempDir()

	content := `# This is a comment
* @default-owner

# Documentation
/docs/ @docs-team
*.md @docs-team

[Backend]
*.go @backend-team
/internal/api/ @api-team @backend-team

^[Optional][2]
/src/ @frontend-team not-an-owner

# No valid owners
/orphan/ not-an-owner

/scripts/ ops@example.com
`
	path := filepath.Join(tempDir, "CODEOWNERS")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write CODEOWNERS: %v", err)
	}

	cf, err := ParseFile(path)
	if err != nil {
		t.Fatalf("Failed to parse CODEOWNERS: %v", err)
	}

	if cf.Path != path {
		t.Errorf("Path = %q, want %q", cf.Path, path)
	}
	if cf.Sections != 2 {
		t.Errorf("Sections = %d, want 2", cf.Sections)
	}
	if len(cf.Rules) != 7 {
		for i, rule := range cf.Rules {
			t.Logf("Rule %d: pattern=%s owners=%v", i, rule.Pattern, rule.Owners)
		}
		t.Fatalf("Expected 7 rules, got %d", len(cf.Rules))
	}

	if cf.Rules[0].Pattern != "*" || cf.Rules[0].LineNumber != 2 {
		t.Errorf("first rule = %+v", cf.Rules[0])
	}

	src := cf.Rules[5]
	if src.Pattern != "/src/" || len(src.Owners) != 1 || src.Owners[0] != "@frontend-team" {
		t.Errorf("invalid owners should be dropped, got %+v", src)
	}

	scripts := cf.Rules[6]
	if scripts.Owners[0] != "ops@example.com" {
		t.Errorf("Expected email owner, got %v", scripts.Owners)
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "CODEOWNERS"))
	if !errors.HasCode(err, errors.DataUnavailable) {
		t.Errorf("err = %v, want DataUnavailable", err)
	}
}

func TestParse_Negation(t *testing.T) {
	cf, err := Parse(strings.NewReader("* @default-owner\n/docs/ @docs-team\n!/docs/internal/\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cf.Rules) != 3 {
		t.Fatalf("Expected 3 rules, got %d", len(cf.Rules))
	}

	negation := cf.Rules[2]
	if !negation.IsNegation || negation.Pattern != "/docs/internal/" {
		t.Errorf("negation rule = %+v", negation)
	}

	if _, ok := cf.LastMatch("docs/internal/x.md"); ok {
		t.Error("negation should clear ownership")
	}
	if r, ok := cf.LastMatch("docs/guide.md"); !ok || r.Owners[0] != "@docs-team" {
		t.Errorf("LastMatch(docs/guide.md) = %+v, %v", r, ok)
	}
	if got := len(cf.RuleList()); got != 2 {
		t.Errorf("RuleList should skip negations, got %d rules", got)
	}
}

func TestFind(t *testing.T) {
	tempDir := t.TempDir()

	if got := Find(tempDir); got != "" {
		t.Errorf("Expected empty result when no CODEOWNERS exists, got %s", got)
	}

	rootPath := filepath.Join(tempDir, "CODEOWNERS")
	if err := os.WriteFile(rootPath, []byte("* @root-owner"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(tempDir); got != rootPath {
		t.Errorf("Find = %s, want %s", got, rootPath)
	}

	gitlabDir := filepath.Join(tempDir, ".gitlab")
	if err := os.MkdirAll(gitlabDir, 0o755); err != nil {
		t.Fatal(err)
	}
	gitlabPath := filepath.Join(gitlabDir, "CODEOWNERS")
	if err := os.WriteFile(gitlabPath, []byte("* @owner"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(tempDir); got != gitlabPath {
		t.Errorf(".gitlab/CODEOWNERS should have priority, got %s", got)
	}
}
