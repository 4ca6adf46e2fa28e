package codeowners

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ownergen/internal/errors"
)

// ParsedRule is a rule read back from an existing CODEOWNERS file.
type ParsedRule struct {
	Rule
	LineNumber int  `json:"lineNumber"`
	IsNegation bool `json:"isNegation,omitempty"`
}

// File is a parsed CODEOWNERS file.
type File struct {
	Path string `json:"path"`

	// Rules are kept in file order.
	Rules []ParsedRule `json:"rules"`

	// Sections counts GitLab "[Section]" headers that were skipped.
	Sections int `json:"sections,omitempty"`
}

// ParseFile reads and parses the CODEOWNERS file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.DataUnavailable, "no CODEOWNERS file at "+path, err)
		}
		return nil, errors.New(errors.InternalError, "failed to open "+path, err)
	}
	defer func() { _ = f.Close() }()

	parsed, err := Parse(f)
	if err != nil {
		return nil, err
	}
	parsed.Path = path
	return parsed, nil
}

// Parse reads CODEOWNERS content. Comments, blank lines and section headers
// are skipped; lines without a valid owner are dropped.
func Parse(r io.Reader) (*File, error) {
	file := &File{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isSectionHeader(line) {
			file.Sections++
			continue
		}

		if rule := parseLine(line, lineNumber); rule != nil {
			file.Rules = append(file.Rules, *rule)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.New(errors.InternalError, "failed to read CODEOWNERS", err)
	}
	return file, nil
}

// isSectionHeader matches GitLab's "[Name]", "^[Name]" and "[Name][2]" forms.
func isSectionHeader(line string) bool {
	line = strings.TrimPrefix(line, "^")
	return strings.HasPrefix(line, "[") && strings.Contains(line, "]")
}

func parseLine(line string, lineNumber int) *ParsedRule {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return nil
	}

	pattern := fields[0]
	owners := fields[1:]

	if strings.HasPrefix(pattern, "!") {
		return &ParsedRule{
			Rule:       Rule{Pattern: strings.TrimPrefix(pattern, "!"), Owners: []string{}},
			LineNumber: lineNumber,
			IsNegation: true,
		}
	}

	validOwners := make([]string, 0, len(owners))
	for _, owner := range owners {
		if isValidOwner(owner) {
			validOwners = append(validOwners, owner)
		}
	}
	if len(validOwners) == 0 {
		return nil
	}

	return &ParsedRule{
		Rule:       Rule{Pattern: pattern, Owners: validOwners},
		LineNumber: lineNumber,
	}
}

// isValidOwner accepts @user, @group/team and email owners.
func isValidOwner(owner string) bool {
	if strings.HasPrefix(owner, "@") {
		return len(owner) > 1
	}
	return strings.Contains(owner, "@")
}

// Locations lists where GitLab and GitHub look for CODEOWNERS, in lookup order.
var Locations = []string{
	".gitlab/CODEOWNERS",
	".github/CODEOWNERS",
	"CODEOWNERS",
	"docs/CODEOWNERS",
}

// Find returns the first existing CODEOWNERS file under repoRoot, or "".
func Find(repoRoot string) string {
	for _, loc := range Locations {
		path := filepath.Join(repoRoot, loc)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RuleList returns the non-negation rules in file order.
func (f *File) RuleList() []Rule {
	rules := make([]Rule, 0, len(f.Rules))
	for _, r := range f.Rules {
		if !r.IsNegation {
			rules = append(rules, r.Rule)
		}
	}
	return rules
}

// LastMatch applies GitHub semantics: the last matching rule wins and a
// negation clears ownership.
func (f *File) LastMatch(path string) (ParsedRule, bool) {
	path = filepath.ToSlash(path)

	var matched ParsedRule
	found := false
	for _, rule := range f.Rules {
		if !Match(rule.Pattern, path) {
			continue
		}
		if rule.IsNegation {
			matched, found = ParsedRule{}, false
			continue
		}
		matched, found = rule, true
	}
	return matched, found
}

// MostSpecific applies ownergen semantics: the most specific matching rule
// wins regardless of file order.
func (f *File) MostSpecific(path string) (Rule, bool) {
	return Resolve(f.RuleList(), path)
}
