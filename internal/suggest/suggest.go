// Package suggest provides fuzzy matching for CLI flag, key and command
// suggestions using Levenshtein distance.
package suggest

import (
	"sort"
	"strings"
)

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// Similar finds candidates close to unknown, best first, at most three.
// Leading dashes are ignored on both sides so it works for flags and for
// plain names such as config keys.
func Similar(unknown string, candidates []string) []string {
	unknown = strings.ToLower(strings.TrimLeft(unknown, "-"))

	type scored struct {
		value string
		score int
	}
	var matches []scored

	for _, c := range candidates {
		dist := levenshtein(unknown, strings.ToLower(strings.TrimLeft(c, "-")))

		// Only suggest if reasonably close (within 3 edits or 50% of length)
		maxDist := max(3, len(unknown)/2)
		if dist <= maxDist {
			matches = append(matches, scored{c, dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	var result []string
	for i := 0; i < len(matches) && i < 3; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// CommonFlagAliases maps commonly attempted flags to their correct names
var CommonFlagAliases = map[string]string{
	// Rating
	"rating": "--stars, -s",
	"rate":   "--stars, -s",
	"score":  "--stars, -s",

	// Review text
	"message": "--content, -m",
	"msg":     "--content, -m",
	"text":    "--content, -m",
	"comment": "--content, -m",

	// Result cap and ordering
	"limit":      "--count, -n",
	"max":        "--count, -n",
	"order":      "--sort, -s",
	"sortby":     "--sort, -s",
	"order-by":   "--sort, -s",
	"desc":       "--reverse, -r",
	"descending": "--reverse, -r",

	// Account
	"user":     "--email, -e",
	"username": "--email, -e",

	// Confirmation
	"force":   "--yes, -y (delete only)",
	"confirm": "--yes, -y (delete only)",

	// Book ids are positional
	"id":      "pass the book id as an argument, e.g. shelf edit 12",
	"book":    "pass the book id as an argument, e.g. shelf edit 12",
	"book-id": "pass the book id as an argument, e.g. shelf edit 12",

	// Version
	"version": "use: shelf version",
	"v":       "use: shelf version",
}

// GetFlagHint returns a hint for a commonly misused flag
func GetFlagHint(flag string) string {
	// Normalize
	flag = strings.TrimLeft(flag, "-")
	flag = strings.ToLower(flag)

	if hint, ok := CommonFlagAliases[flag]; ok {
		return hint
	}
	return ""
}
