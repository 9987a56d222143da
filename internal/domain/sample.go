package domain

import (
	"math"
	"math/rand/v2"
	"slices"
)

// DefaultSampleSeed keeps samples reproducible across runs.
const DefaultSampleSeed = 42

// SampleSize returns round(fraction × n), rounding halves to even.
func SampleSize(n int, fraction float64) int {
	k := int(math.RoundToEven(fraction * float64(n)))
	return max(0, min(k, n))
}

// SampleIndices picks k distinct indices from [0, n) with a generator seeded
// by seed, returned in ascending order so sampled rows keep file order.
// The same (n, k, seed) always yields the same indices.
func SampleIndices(n, k int, seed uint64) []int {
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	if k <= 0 {
		return []int{}
	}

	r := rand.New(rand.NewPCG(seed, seed))
	picked := r.Perm(n)[:k]
	slices.Sort(picked)
	return picked
}
