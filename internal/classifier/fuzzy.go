package classifier

// PartialRatio scores how well the shorter string aligns with any substring
// of the longer one, from 0 to 100. Each window is scored with the
// indel-normalized similarity 200*LCS/(len(a)+len(b)); windows that hang over
// either end of the longer string are included. Strings of equal length are
// aligned in both directions and the higher score is kept.
func PartialRatio(s1, s2 string) float64 {
	a, b := []rune(s1), []rune(s2)
	if len(a) > len(b) {
		a, b = b, a
	}

	if len(a) == 0 {
		if len(b) == 0 {
			return 100
		}

		return 0
	}

	best := partialRatio(a, b)
	if len(a) == len(b) && best < 100 {
		if r := partialRatio(b, a); r > best {
			best = r
		}
	}

	return best
}

// partialRatio slides needle over every window of haystack; len(needle) <= len(haystack).
func partialRatio(needle, haystack []rune) float64 {
	m, n := len(needle), len(haystack)
	best := 0.0

	score := func(window []rune) {
		if r := ratio(needle, window); r > best {
			best = r
		}
	}

	for i := 1; i < m; i++ {
		score(haystack[:i])
	}

	for i := 0; i+m <= n; i++ {
		score(haystack[i : i+m])

		if best == 100 {
			return best
		}
	}

	for i := n - m + 1; i < n; i++ {
		score(haystack[i:])
	}

	return best
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}

	return 200 * float64(lcs(a, b)) / float64(total)
}

// lcs returns the length of the longest common subsequence.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}

		prev, cur = cur, prev
	}

	return prev[len(b)]
}
