package match

// Ratio computes a normalized similarity between two strings: the total
// length M of matched contiguous blocks (found by a greedy
// longest-common-substring recursion) scaled as 2*M/(len(a)+len(b)).
// Identical strings score 1.0, strings with no characters in common 0.0.
// The comparison is rune-based so multi-byte filenames score sensibly.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	matched := matchedLength(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchedLength sums the longest common block in the given window plus,
// recursively, the blocks to its left and right.
func matchedLength(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestBlock(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}

	return size +
		matchedLength(a, b, alo, i, blo, j) +
		matchedLength(a, b, i+size, ahi, j+size, bhi)
}

// longestBlock finds the longest run of equal runes within the window
// [alo,ahi) x [blo,bhi). Among equally long runs the one starting
// earliest in a, then earliest in b, wins, keeping the result
// deterministic.
func longestBlock(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] is the length of the common run ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
