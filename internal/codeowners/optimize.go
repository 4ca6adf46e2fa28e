package codeowners

import (
	"sort"
	"strings"
)

// Optimize hoists sibling directory rules that share an owner set into a
// single parent rule, repeating until nothing changes. The result is in
// SortRules order and resolves every path to the same owners as the input.
func Optimize(rules RuleSet) []Rule {
	current := cloneRuleSet(rules)
	for {
		next, hoisted := optimizePass(current)
		current = next
		if hoisted == 0 {
			break
		}
	}
	return current.Rules()
}

// optimizePass reads from a snapshot and writes into a copy, so a rule
// removed by a hoist stays removed even if an earlier hoist re-added it.
func optimizePass(current RuleSet) (RuleSet, int) {
	byDepth := make(map[int][]string)
	for pattern := range current {
		dir := directoryOf(pattern)
		if dir == "" {
			continue
		}
		depth := strings.Count(dir, "/")
		byDepth[depth] = append(byDepth[depth], pattern)
	}

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(depths)))

	next := cloneRuleSet(current)
	hoisted := 0

	for _, depth := range depths {
		siblings := make(map[string][]string)
		for _, pattern := range byDepth[depth] {
			dir := directoryOf(pattern)
			i := strings.LastIndex(dir, "/")
			if i < 0 {
				// top-level rules are never hoisted
				continue
			}
			parent := dir[:i]
			siblings[parent] = append(siblings[parent], pattern)
		}

		parents := make([]string, 0, len(siblings))
		for p := range siblings {
			parents = append(parents, p)
		}
		sort.Strings(parents)

		for _, parent := range parents {
			children := siblings[parent]
			if len(children) < 2 {
				continue
			}
			sort.Strings(children)

			key := ownerKey(current[children[0]])
			uniform := true
			for _, c := range children[1:] {
				if ownerKey(current[c]) != key {
					uniform = false
					break
				}
			}
			if !uniform {
				continue
			}

			parentPattern := parent + "/**"
			existing, exists := current[parentPattern]
			if exists && ownerKey(existing) != key {
				continue
			}

			for _, c := range children {
				delete(next, c)
			}
			if exists {
				next[parentPattern] = existing
			} else {
				next[parentPattern] = current[children[0]]
			}
			hoisted++
		}
	}

	return next, hoisted
}

// directoryOf returns the directory a pattern covers, or "" for patterns the
// optimizer must leave alone (the root catch-all and non-path patterns).
func directoryOf(pattern string) string {
	if pattern == "**" {
		return ""
	}
	return strings.TrimSuffix(pattern, "/**")
}

// ownerKey identifies an owner set independent of order.
func ownerKey(owners []string) string {
	sorted := make([]string, len(owners))
	copy(sorted, owners)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func cloneRuleSet(rules RuleSet) RuleSet {
	out := make(RuleSet, len(rules))
	for p, o := range rules {
		out[p] = o
	}
	return out
}
