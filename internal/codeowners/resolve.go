package codeowners

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Rule is one CODEOWNERS line: a pattern and its owner handles.
type Rule struct {
	Pattern string   `json:"pattern" yaml:"pattern" toml:"pattern"`
	Owners  []string `json:"owners" yaml:"owners" toml:"owners"`
}

// RuleSet maps a pattern to its owner handles. Patterns are unique.
type RuleSet map[string][]string

// Rules returns the set as a rule list in specificity order.
func (rs RuleSet) Rules() []Rule {
	rules := make([]Rule, 0, len(rs))
	for pattern, owners := range rs {
		rules = append(rules, Rule{Pattern: pattern, Owners: owners})
	}
	SortRules(rules)
	return rules
}

// SortRules orders rules most specific first: more slashes first, then the
// pattern string in descending order.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return moreSpecific(rules[i].Pattern, rules[j].Pattern)
	})
}

func moreSpecific(a, b string) bool {
	ca, cb := strings.Count(a, "/"), strings.Count(b, "/")
	if ca != cb {
		return ca > cb
	}
	return a > b
}

// Resolve returns the most specific rule matching path. For a list already in
// SortRules order this is the first match.
func Resolve(rules []Rule, path string) (Rule, bool) {
	path = filepath.ToSlash(path)

	var best Rule
	found := false
	for _, r := range rules {
		if !Match(r.Pattern, path) {
			continue
		}
		if !found || moreSpecific(r.Pattern, best.Pattern) {
			best = r
			found = true
		}
	}
	return best, found
}

// Match reports whether a repo-relative path matches a CODEOWNERS pattern.
// A pattern without an inner slash matches at any depth; one with a slash is
// anchored at the repository root.
func Match(pattern, filePath string) bool {
	pattern = filepath.ToSlash(pattern)

	// Root-relative directory (/dir/)
	if strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		dir := strings.Trim(pattern, "/")
		return strings.HasPrefix(filePath, dir+"/")
	}

	// Directory at any level (dir/)
	if strings.HasSuffix(pattern, "/") {
		dir := strings.TrimSuffix(pattern, "/")
		if strings.Contains(dir, "/") {
			return strings.HasPrefix(filePath, dir+"/")
		}
		return strings.HasPrefix(filePath, dir+"/") || strings.Contains(filePath, "/"+dir+"/")
	}

	anchored := strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	if strings.Contains(pattern, "**") {
		return matchGlob(pattern, filePath)
	}

	if !strings.ContainsAny(pattern, "*?[") {
		if filePath == pattern || strings.HasPrefix(filePath, pattern+"/") {
			return true
		}
		if anchored {
			return false
		}
		return strings.HasSuffix(filePath, "/"+pattern) || strings.Contains(filePath, "/"+pattern+"/")
	}

	if anchored {
		return matchGlob(pattern, filePath)
	}
	return matchGlob("**/"+pattern, filePath)
}

var globCache sync.Map // glob -> *regexp.Regexp

func matchGlob(pattern, path string) bool {
	if cached, ok := globCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(path)
	}
	re, err := regexp.Compile("^" + globToRegex(pattern) + "$")
	if err != nil {
		return false
	}
	globCache.Store(pattern, re)
	return re.MatchString(path)
}

// globToRegex converts a CODEOWNERS glob to a regular expression body.
func globToRegex(glob string) string {
	var result strings.Builder

	i := 0
	for i < len(glob) {
		c := glob[i]

		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					result.WriteString("(?:.*/)?")
					i += 3
					continue
				}
				result.WriteString(".*")
				i += 2
				continue
			}
			result.WriteString("[^/]*")
		case '?':
			result.WriteString("[^/]")
		case '.', '+', '^', '$', '(', ')', '[', ']', '{', '}', '|', '\\':
			result.WriteByte('\\')
			result.WriteByte(c)
		default:
			result.WriteByte(c)
		}
		i++
	}

	return result.String()
}
