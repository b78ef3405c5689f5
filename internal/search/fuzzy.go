// Package search implements the typo-tolerant, multi-field matcher behind
// live dashboard filtering. Inputs are short tokens (tool and capability
// names), not prose, so a small bounded edit distance is enough.
package search

import (
	"strings"

	"capdash/internal/hypergraph"
)

// editBudget is the maximum edit distance a query word may be from a target
// word and still match.
const editBudget = 2

// minApproxWordLen guards the edit-distance rule against very short target
// words, where a budget of 2 would match nearly anything.
const minApproxWordLen = 4

// Matches reports whether target satisfies the free-text query. Matching is
// case-insensitive, treats underscores and hyphens as spaces, and is
// conjunctive across query words: every word must hit, one miss fails the
// whole query. An empty (whitespace-only) query matches everything.
func Matches(target, query string) bool {
	q := normalize(query)
	if strings.TrimSpace(q) == "" {
		return true
	}
	tgt := normalize(target)
	if strings.Contains(tgt, q) {
		return true
	}

	targetWords := strings.Fields(tgt)
	for _, word := range strings.Fields(q) {
		if len(word) <= 1 {
			continue
		}
		if !wordMatches(word, tgt, targetWords) {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}

// wordMatches applies the per-word rules: substring of the whole target,
// mutual prefix with some target word, or within the edit budget of a
// target word of similar length.
func wordMatches(word, target string, targetWords []string) bool {
	if strings.Contains(target, word) {
		return true
	}
	for _, tw := range targetWords {
		if strings.HasPrefix(tw, word) || strings.HasPrefix(word, tw) {
			return true
		}
		if approxEqual(word, tw) {
			return true
		}
	}
	return false
}

// approxEqual is a bounded Levenshtein check. It only fires for target
// words of reasonable length whose length is within the budget of the
// query word's, which keeps short tokens from matching everything.
func approxEqual(word, candidate string) bool {
	if len(candidate) < minApproxWordLen {
		return false
	}
	diff := len(word) - len(candidate)
	if diff < 0 {
		diff = -diff
	}
	if diff > editBudget {
		return false
	}
	return editDistanceAtMost(word, candidate, editBudget)
}

// editDistanceAtMost reports whether the Levenshtein distance between a and
// b is within max. Two-row DP with an early exit once a full row exceeds
// the bound; inputs are short tokens so no banding is needed.
func editDistanceAtMost(a, b string, max int) bool {
	if a == b {
		return true
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := prev[j-1] + cost // substitution
			if del := prev[j] + 1; del < d {
				d = del
			}
			if ins := cur[j-1] + 1; ins < d {
				d = ins
			}
			cur[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > max {
			return false
		}
		prev, cur = cur, prev
	}
	return prev[len(b)] <= max
}

// FilterCapabilities keeps every capability where any searchable field
// matches the query: name, description, tool names, tool servers, or the
// fully-qualified identifier. Order is preserved.
func FilterCapabilities(capabilities []*hypergraph.Capability, query string) []*hypergraph.Capability {
	if strings.TrimSpace(query) == "" {
		return capabilities
	}

	filtered := make([]*hypergraph.Capability, 0, len(capabilities))
	for _, c := range capabilities {
		if capabilityMatches(c, query) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func capabilityMatches(c *hypergraph.Capability, query string) bool {
	if Matches(c.Name, query) || Matches(c.Description, query) || Matches(c.FQDN, query) {
		return true
	}
	for _, t := range c.Tools {
		if Matches(t.Name, query) || Matches(t.Server, query) {
			return true
		}
	}
	return false
}
