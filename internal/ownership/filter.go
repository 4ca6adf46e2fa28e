package ownership

import (
	"regexp"
	"strings"

	"ownergen/internal/errors"
)

// Filter excludes files by literal path prefix or by shell-style glob.
// Globs use fnmatch rules: '*' and '?' also match '/', so "*.lock" matches
// "web/yarn.lock".
type Filter struct {
	prefixes []string
	patterns []*regexp.Regexp
	raw      []string
}

// NewFilter compiles the exclusion lists. Empty entries are ignored.
func NewFilter(paths, patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range paths {
		if p != "" {
			f.prefixes = append(f.prefixes, p)
		}
	}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile("^" + fnmatchToRegex(p) + "$")
		if err != nil {
			return nil, errors.New(errors.InvalidArgument, "invalid exclude pattern "+p, err)
		}
		f.patterns = append(f.patterns, re)
		f.raw = append(f.raw, p)
	}
	return f, nil
}

// Excluded reports whether path matches any prefix or pattern.
// A nil Filter excludes nothing.
func (f *Filter) Excluded(path string) bool {
	if f == nil {
		return false
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter excludes nothing.
func (f *Filter) Empty() bool {
	return f == nil || (len(f.prefixes) == 0 && len(f.patterns) == 0)
}

// fnmatchToRegex converts an fnmatch glob to a regex body.
func fnmatchToRegex(glob string) string {
	var result strings.Builder

	i := 0
	for i < len(glob) {
		c := glob[i]
		i++

		switch c {
		case '*':
			result.WriteString(".*")
		case '?':
			result.WriteString(".")
		case '[':
			j := i
			if j < len(glob) && glob[j] == '!' {
				j++
			}
			if j < len(glob) && glob[j] == ']' {
				j++
			}
			for j < len(glob) && glob[j] != ']' {
				j++
			}
			if j >= len(glob) {
				// No closing bracket: literal '['
				result.WriteString(`\[`)
				continue
			}
			class := glob[i:j]
			i = j + 1
			class = strings.ReplaceAll(class, `\`, `\\`)
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			} else if strings.HasPrefix(class, "^") {
				class = `\` + class
			}
			result.WriteString("[" + class + "]")
		default:
			result.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return result.String()
}
