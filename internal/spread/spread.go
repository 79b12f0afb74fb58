// Package spread computes the pairwise-distance dispersion of a set of
// averaged positions.
package spread

import (
	"fmt"
	"math"
)

// Sum returns the sum of Euclidean distances over all unordered pairs i<j of
// the points (xs[i], ys[i]). Fewer than two points yield 0.
func Sum(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("coordinate lists differ in length: %d x vs %d y", len(xs), len(ys))
	}
	n := len(xs)
	var total float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += math.Hypot(xs[j]-xs[i], ys[j]-ys[i])
		}
	}
	return total, nil
}

// Pairs returns C(n, 2), the number of distances Sum accumulates for n points.
func Pairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
