// Package ownership turns per-file contributor statistics into ranked owner
// lists. It never talks to git or the filesystem; callers hand it a Stats
// snapshot and get back a Table.
package ownership

import (
	"sort"
	"strings"
	"time"
)

// ContributorStat holds one author's activity on one file.
type ContributorStat struct {
	Commits      uint   `json:"commits"`
	LinesAdded   uint   `json:"linesAdded"`
	LinesRemoved uint   `json:"linesRemoved"`
	DisplayName  string `json:"name"`

	// LastCommit is the newest author date seen for this contributor.
	// Built-in strategies ignore it; decay policies may use it.
	LastCommit time.Time `json:"lastCommit,omitempty"`
}

// Contributor pairs a stable identifier (the author email) with its stats.
type Contributor struct {
	ID   string          `json:"id"`
	Stat ContributorStat `json:"stat"`
}

// Stats maps a repo-relative file path to its contributors in the order they
// were first observed. The order is what breaks score ties.
type Stats map[string][]Contributor

// OwnerEntry is one ranked owner of a file.
type OwnerEntry struct {
	ID    string  `json:"email"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Table maps a file path to its owners, highest score first.
type Table map[string][]OwnerEntry

// Paths returns the table's file paths in sorted order.
func (t Table) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// localPart returns the part of an email before the first '@'.
func localPart(id string) string {
	if i := strings.Index(id, "@"); i >= 0 {
		return id[:i]
	}
	return id
}

// displayName falls back to the email local part when git recorded no name.
func displayName(c Contributor) string {
	if c.Stat.DisplayName != "" {
		return c.Stat.DisplayName
	}
	return localPart(c.ID)
}
