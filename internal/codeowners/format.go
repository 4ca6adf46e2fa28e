package codeowners

import "strings"

// Formatter turns a contributor identifier (an email) into an owner handle.
type Formatter struct {
	mapping map[string]string
}

// NewFormatter builds a Formatter. mapping may be keyed by full email or by
// the email's local part; values may be given with or without a leading '@'.
func NewFormatter(mapping map[string]string) *Formatter {
	if mapping == nil {
		mapping = map[string]string{}
	}
	return &Formatter{mapping: mapping}
}

// Format returns the @handle for id. Lookup order: full id, then the local
// part of the email; without a mapping the local part itself is the handle.
func (f *Formatter) Format(id string) string {
	if f != nil {
		if username, ok := f.mapping[id]; ok {
			return handle(username)
		}
	}

	username := id
	if i := strings.Index(id, "@"); i >= 0 {
		username = id[:i]
	}
	if f != nil {
		if mapped, ok := f.mapping[username]; ok {
			username = mapped
		}
	}
	return handle(username)
}

func handle(username string) string {
	return "@" + strings.TrimPrefix(username, "@")
}
