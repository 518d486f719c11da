package belief

import (
	"math"
	"math/big"
)

// choose returns C(n, k), saturating at math.MaxInt64.
func choose(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	c := new(big.Int).Binomial(int64(n), int64(k))
	if !c.IsInt64() {
		return math.MaxInt64
	}
	return c.Int64()
}

// countSubsets sums C(k, s) for s in [lo, hi] clamped to [0, k], saturating
// at math.MaxInt64.
func countSubsets(k, lo, hi int) int64 {
	if lo < 0 {
		lo = 0
	}
	if hi > k {
		hi = k
	}
	var total int64
	for s := lo; s <= hi; s++ {
		c := choose(k, s)
		if total > math.MaxInt64-c {
			return math.MaxInt64
		}
		total += c
	}
	return total
}
