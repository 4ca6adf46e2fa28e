// Package textdiff renders line diffs between two texts.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

// Line is one line of a line-level diff.
type Line struct {
	Op   Op
	Text string
}

// Lines computes a line-level diff from oldText to newText.
func Lines(oldText, newText string) []Line {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, table)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Delete
		case diffmatchpatch.DiffInsert:
			op = Insert
		}
		for _, text := range splitLines(d.Text) {
			out = append(out, Line{Op: op, Text: text})
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Count returns how many lines were added and removed.
func Count(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Op {
		case Insert:
			added++
		case Delete:
			removed++
		}
	}
	return added, removed
}

// Unified renders lines as a unified diff with the given context size.
// It returns "" when the texts are equal.
func Unified(oldName, newName string, lines []Line, context int, p Palette) string {
	if added, removed := Count(lines); added == 0 && removed == 0 {
		return ""
	}

	// old/new line numbers (1-based) before each line
	oldNo := make([]int, len(lines)+1)
	newNo := make([]int, len(lines)+1)
	oldNo[0], newNo[0] = 1, 1
	for i, l := range lines {
		oldNo[i+1], newNo[i+1] = oldNo[i], newNo[i]
		if l.Op != Insert {
			oldNo[i+1]++
		}
		if l.Op != Delete {
			newNo[i+1]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s--- %s%s\n", p.Bold, oldName, p.Reset)
	fmt.Fprintf(&b, "%s+++ %s%s\n", p.Bold, newName, p.Reset)

	for _, h := range hunks(lines, context) {
		oldCount := oldNo[h.end] - oldNo[h.start]
		newCount := newNo[h.end] - newNo[h.start]
		fmt.Fprintf(&b, "%s@@ -%d,%d +%d,%d @@%s\n", p.Cyan, oldNo[h.start], oldCount, newNo[h.start], newCount, p.Reset)
		for _, l := range lines[h.start:h.end] {
			switch l.Op {
			case Equal:
				b.WriteString(" " + l.Text + "\n")
			case Delete:
				b.WriteString(p.Red + "-" + l.Text + p.Reset + "\n")
			case Insert:
				b.WriteString(p.Green + "+" + l.Text + p.Reset + "\n")
			}
		}
	}
	return b.String()
}

type hunk struct{ start, end int }

func hunks(lines []Line, context int) []hunk {
	if context < 0 {
		context = 0
	}
	var out []hunk
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		start := i - context
		if start < 0 {
			start = 0
		}
		end := i + 1 + context
		if end > len(lines) {
			end = len(lines)
		}
		if n := len(out); n > 0 && start <= out[n-1].end {
			out[n-1].end = end
			continue
		}
		out = append(out, hunk{start: start, end: end})
	}
	return out
}
