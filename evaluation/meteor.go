package evaluation

import "math"

// METEOR with exact-match alignment. Matching is greedy: each candidate
// token takes the first unclaimed occurrence of itself in the
// reference, which keeps aligned pairs in reference order where the
// texts agree.
const (
	meteorAlpha = 0.9
	meteorBeta  = 3.0
	meteorGamma = 0.5
)

// Meteor scores candidate against reference. No matches yields 0.
func Meteor(reference, candidate string) float64 {
	ref := tokenize(reference)
	cand := tokenize(candidate)
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}

	// alignment[i] is the reference position matched by candidate token
	// i, or -1.
	claimed := make([]bool, len(ref))
	alignment := make([]int, len(cand))
	matches := 0
	for i, token := range cand {
		alignment[i] = -1
		for j, refToken := range ref {
			if !claimed[j] && refToken == token {
				claimed[j] = true
				alignment[i] = j
				matches++
				break
			}
		}
	}
	if matches == 0 {
		return 0
	}

	precision := float64(matches) / float64(len(cand))
	recall := float64(matches) / float64(len(ref))
	fmean := precision * recall / (meteorAlpha*precision + (1-meteorAlpha)*recall)

	chunks := countChunks(alignment)
	penalty := meteorGamma * math.Pow(float64(chunks)/float64(matches), meteorBeta)

	return fmean * (1 - penalty)
}

// countChunks counts maximal runs of candidate tokens whose reference
// positions are consecutive.
func countChunks(alignment []int) int {
	chunks := 0
	prev := -2
	for _, pos := range alignment {
		if pos < 0 {
			prev = -2
			continue
		}
		if pos != prev+1 {
			chunks++
		}
		prev = pos
	}
	return chunks
}
