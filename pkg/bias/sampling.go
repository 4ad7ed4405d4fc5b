package bias

import "math/rand"

// sampleIndices draws up to k distinct indices from [0, n), sorted
// ascending. Sampling is seeded so results are reproducible run to
// run; the seed comes from Config.
func sampleIndices(rng *rand.Rand, n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	perm := rng.Perm(n)[:k]
	// Insertion sort; k is small.
	for i := 1; i < len(perm); i++ {
		for j := i; j > 0 && perm[j] < perm[j-1]; j-- {
			perm[j], perm[j-1] = perm[j-1], perm[j]
		}
	}
	return perm
}
