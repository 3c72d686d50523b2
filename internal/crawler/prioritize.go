package crawler

import (
	"math"
	"net/url"
	"sort"
	"strings"
)

// scoreNoMatch sorts links with no keyword hit behind everything else.
const scoreNoMatch = math.MaxInt

// PrioritizeLinks returns links stably reordered so that URLs whose path
// mentions an earlier keyword come first.
//
// Scoring, per link (lower is better):
//  1. The first keyword (in caller order) that appears as a whole word
//     in the lowercased path scores the keyword's index. Word boundaries
//     are \b-style: any character outside [A-Za-z0-9_].
//  2. Failing that, the first keyword contained anywhere in the path
//     scores index + len(keywords), so every partial match ranks behind
//     every whole-word match regardless of keyword position.
//  3. No match at all sorts last.
//
// Ties, including the everything-unmatched case of empty keywords,
// preserve the original discovery order.
func PrioritizeLinks(links []string, keywords []string) []string {
	ranked := make([]string, len(links))
	copy(ranked, links)

	if len(keywords) == 0 || len(links) == 0 {
		return ranked
	}

	scores := make(map[string]int, len(ranked))
	for _, link := range ranked {
		if _, ok := scores[link]; !ok {
			scores[link] = linkScore(link, keywords)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] < scores[ranked[j]]
	})

	return ranked
}

// linkScore computes the priority score for one link.
func linkScore(link string, keywords []string) int {
	u, err := url.Parse(link)
	if err != nil {
		return scoreNoMatch
	}
	path := strings.ToLower(u.Path)

	// Whole-word matches first: scanning stops at the first hit.
	for i, keyword := range keywords {
		if containsWord(path, strings.ToLower(keyword)) {
			return i
		}
	}

	// Partial matches carry a penalty that pushes them behind every
	// whole-word match.
	for i, keyword := range keywords {
		if strings.Contains(path, strings.ToLower(keyword)) {
			return i + len(keywords)
		}
	}

	return scoreNoMatch
}

// isWordChar reports whether c is a \b-style word character.
func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_':
		return true
	}
	return false
}

// containsWord reports whether word occurs in path bounded by
// non-word characters (or the string edges) on both sides.
func containsWord(path, word string) bool {
	if word == "" {
		return false
	}

	for start := 0; ; {
		idx := strings.Index(path[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)

		leftOK := idx == 0 || !isWordChar(path[idx-1])
		rightOK := end == len(path) || !isWordChar(path[end])
		if leftOK && rightOK {
			return true
		}

		start = idx + 1
	}
}
