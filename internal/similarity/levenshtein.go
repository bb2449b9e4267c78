// Package similarity provides edit-distance scoring and a BK-tree phrase index.
package similarity

import "unicode/utf8"

// LevenshteinDistance calculates the edit distance between two strings,
// counted in runes so logographic text scores per character.
// This is an optimized implementation using only two rows of the matrix.
func LevenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Ensure r1 is the shorter string for space optimization
	if len1 > len2 {
		r1, r2 = r2, r1
		len1, len2 = len2, len1
	}

	prev := make([]int, len1+1)
	curr := make([]int, len1+1)

	for i := 0; i <= len1; i++ {
		prev[i] = i
	}

	for j := 1; j <= len2; j++ {
		curr[0] = j

		for i := 1; i <= len1; i++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len1]
}

// Ratio returns 1 - distance/maxLen in [0, 1]. Two empty strings are
// identical and score 1.
func Ratio(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}
