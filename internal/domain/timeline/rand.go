package timeline

import (
	"math"
	"math/rand"
)

// normalApproxLambda is the threshold above which the Poisson sampler
// switches to the normal approximation.
const normalApproxLambda = 30

// poisson draws a Poisson-distributed count. Knuth's multiplication
// algorithm below the threshold, normal approximation above it.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda < normalApproxLambda {
		l := math.Exp(-lambda)
		k := 0
		p := 1.0
		for p > l {
			k++
			p *= rng.Float64()
		}
		return k - 1
	}
	n := int(math.Round(lambda + math.Sqrt(lambda)*rng.NormFloat64()))
	if n < 0 {
		return 0
	}
	return n
}

// weightedMinute draws a minute in [lo,hi] where minutes at or past the
// breakpoint carry weight w against 1.0 before it. Late-match clustering of
// goals and cards comes from here.
func weightedMinute(rng *rand.Rand, lo, hi, breakpoint int, w float64) int {
	if hi <= lo {
		return lo
	}

	low := 0
	if breakpoint > lo {
		low = breakpoint - lo
		if low > hi-lo+1 {
			low = hi - lo + 1
		}
	}
	high := (hi - lo + 1) - low

	total := float64(low) + float64(high)*w
	u := rng.Float64() * total
	if u < float64(low) {
		return lo + int(u)
	}

	idx := int((u - float64(low)) / w)
	if idx >= high {
		idx = high - 1
	}
	start := lo + low
	return start + idx
}
