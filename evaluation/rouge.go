package evaluation

// ROUGE F1 scores over unigrams, bigrams, and the longest common
// subsequence. Tokens are compared exactly, without stemming.

// RougeScores holds the three ROUGE F1 values for one candidate.
type RougeScores struct {
	Rouge1 float64
	Rouge2 float64
	RougeL float64
}

// Rouge computes ROUGE-1, ROUGE-2, and ROUGE-L F1 of candidate against
// reference.
func Rouge(reference, candidate string) RougeScores {
	ref := tokenize(reference)
	cand := tokenize(candidate)
	return RougeScores{
		Rouge1: rougeN(ref, cand, 1),
		Rouge2: rougeN(ref, cand, 2),
		RougeL: rougeL(ref, cand),
	}
}

func rougeN(ref, cand []string, n int) float64 {
	refGrams := countNGrams(ref, n)
	candGrams := countNGrams(cand, n)
	if len(refGrams) == 0 || len(candGrams) == 0 {
		return 0
	}

	overlap := 0
	refTotal := 0
	candTotal := 0
	for gram, count := range candGrams {
		candTotal += count
		if rc, ok := refGrams[gram]; ok {
			overlap += min(count, rc)
		}
	}
	for _, count := range refGrams {
		refTotal += count
	}

	return f1(overlap, candTotal, refTotal)
}

func rougeL(ref, cand []string) float64 {
	lcs := lcsLength(ref, cand)
	return f1(lcs, len(cand), len(ref))
}

func f1(overlap, candTotal, refTotal int) float64 {
	if overlap == 0 || candTotal == 0 || refTotal == 0 {
		return 0
	}
	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return 2 * precision * recall / (precision + recall)
}

func countNGrams(tokens []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		key := tokens[i]
		for j := 1; j < n; j++ {
			key += "\x00" + tokens[i+j]
		}
		grams[key]++
	}
	return grams
}

func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Rolling single row keeps the table O(len(b)).
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
