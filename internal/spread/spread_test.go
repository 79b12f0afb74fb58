package spread

import (
	"math"
	"math/rand"
	"testing"
)

const tolerance = 1e-4

func mustSum(t *testing.T, xs, ys []float64) float64 {
	t.Helper()
	got, err := Sum(xs, ys)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	return got
}

func TestSum_BaseCases(t *testing.T) {
	if got := mustSum(t, nil, nil); got != 0 {
		t.Errorf("n=0: want 0, got %f", got)
	}
	if got := mustSum(t, []float64{12.5}, []float64{-3}); got != 0 {
		t.Errorf("n=1: want 0, got %f", got)
	}
	if got := mustSum(t, []float64{0, 3}, []float64{0, 4}); math.Abs(got-5) > tolerance {
		t.Errorf("n=2: want 5, got %f", got)
	}
}

// TestSum_Triangle: (0,0), (3,0), (0,4) → 3 + 4 + 5.
func TestSum_Triangle(t *testing.T) {
	got := mustSum(t, []float64{0, 3, 0}, []float64{0, 0, 4})
	if math.Abs(got-12) > tolerance {
		t.Errorf("want 12, got %f", got)
	}
}

func TestSum_CoincidentPointsContributeZero(t *testing.T) {
	got := mustSum(t, []float64{1, 1, 1}, []float64{2, 2, 2})
	if got != 0 {
		t.Errorf("want 0 for coincident points, got %f", got)
	}
}

func TestSum_LengthMismatch(t *testing.T) {
	if _, err := Sum([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected error for mismatched list lengths")
	}
}

// TestSum_OrderInvariant shuffles a 22-player layout repeatedly and checks the
// result does not move beyond floating tolerance.
func TestSum_OrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 22
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64()*105 - 52.5
		ys[i] = rng.Float64()*68 - 34
	}
	want := mustSum(t, xs, ys)

	for round := 0; round < 50; round++ {
		perm := rng.Perm(n)
		px := make([]float64, n)
		py := make([]float64, n)
		for i, p := range perm {
			px[i], py[i] = xs[p], ys[p]
		}
		if got := mustSum(t, px, py); math.Abs(got-want) > tolerance {
			t.Fatalf("permutation %d: got %f, want %f", round, got, want)
		}
	}
}

func TestSum_NonNegative(t *testing.T) {
	got := mustSum(t, []float64{-10, 5, 30}, []float64{-2, -40, 7})
	if got < 0 {
		t.Errorf("spread must be non-negative, got %f", got)
	}
}

func TestPairs(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 3, 22: 231} {
		if got := Pairs(n); got != want {
			t.Errorf("Pairs(%d) = %d, want %d", n, got, want)
		}
	}
}
