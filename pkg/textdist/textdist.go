// Package textdist implements the string distances used by the scorers:
// Levenshtein distance over arbitrary token sequences and the normalized
// indel similarity ratio over text.
package textdist

// Levenshtein returns the minimum number of single-token insertions,
// deletions and substitutions turning a into b.
func Levenshtein[T comparable](a, b []T) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// NormalizedLevenshtein scales the Levenshtein distance by the length of
// the longer sequence, giving a value in [0,1]. Two empty sequences are at
// distance 0.
func NormalizedLevenshtein[T comparable](a, b []T) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return float64(Levenshtein(a, b)) / float64(longest)
}

// Indel returns the edit distance allowing only insertions and deletions,
// which is len(a)+len(b)-2*LCS(a,b).
func Indel[T comparable](a, b []T) int {
	return len(a) + len(b) - 2*lcs(a, b)
}

func lcs[T comparable](a, b []T) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Ratio is the normalized indel similarity of two strings on a 0..100
// scale, compared code point by code point. Two empty strings score 100.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 100 * (1 - float64(Indel(ra, rb))/float64(total))
}
