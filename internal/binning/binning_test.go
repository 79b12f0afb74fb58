package binning

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pable/go-pitch-metrics/internal/model"
)

func mustNew(t *testing.T, width, horizon int) *Classifier {
	t.Helper()
	c, err := New(width, horizon)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", width, horizon, err)
	}
	return c
}

func TestNew_BinCountAndShape(t *testing.T) {
	c := mustNew(t, 300, DefaultHorizon)
	bins := c.Bins()
	if len(bins) != 31 {
		t.Fatalf("expected 31 coarse bins, got %d", len(bins))
	}
	want := []model.BinLabel{{Lower: 0, Upper: 299}, {Lower: 300, Upper: 599}, {Lower: 600, Upper: 899}}
	if diff := cmp.Diff(want, bins[:3]); diff != "" {
		t.Errorf("first bins mismatch (-want +got):\n%s", diff)
	}
	if last := bins[len(bins)-1]; last != (model.BinLabel{Lower: 9000, Upper: 9299}) {
		t.Errorf("unexpected last bin %v", last)
	}

	fine := mustNew(t, 120, DefaultHorizon)
	if n := len(fine.Bins()); n != 76 {
		t.Errorf("expected 76 fine bins, got %d", n)
	}
}

func TestNew_NonDividingWidthUsesCeil(t *testing.T) {
	c := mustNew(t, 7000, DefaultHorizon)
	if n := len(c.Bins()); n != 3 {
		t.Errorf("ceil(9000/7000)+1 = 3 bins expected, got %d", n)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(0, 9000); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := New(120, 0); err == nil {
		t.Error("expected error for zero horizon")
	}
}

// TestBinsContiguous checks upper_i + 1 == lower_{i+1} and that the partition
// starts at zero and reaches the horizon, for a spread of widths.
func TestBinsContiguous(t *testing.T) {
	for _, w := range []int{1, 7, 60, 120, 300, 451, 8999, 9000, 12000} {
		c := mustNew(t, w, DefaultHorizon)
		bins := c.Bins()
		if bins[0].Lower != 0 {
			t.Errorf("w=%d: first bin starts at %d", w, bins[0].Lower)
		}
		for i := 1; i < len(bins); i++ {
			if bins[i-1].Upper+1 != bins[i].Lower {
				t.Fatalf("w=%d: gap/overlap between %v and %v", w, bins[i-1], bins[i])
			}
		}
		if last := bins[len(bins)-1]; last.Upper < DefaultHorizon {
			t.Errorf("w=%d: last bin %v does not reach horizon", w, last)
		}
	}
}

// TestClassify_ExactlyOneBin sweeps [0, horizon] in quarter seconds and checks
// that exactly one bin matches and Classify returns it.
func TestClassify_ExactlyOneBin(t *testing.T) {
	for _, w := range []int{60, 120, 300, 451} {
		c := mustNew(t, w, DefaultHorizon)
		bins := c.Bins()
		for ts := 0.0; ts <= DefaultHorizon; ts += 0.25 {
			matches := 0
			for _, b := range bins {
				if b.Contains(ts) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("w=%d t=%g: %d bins match", w, ts, matches)
			}
			got, err := c.Classify(ts)
			if err != nil {
				t.Fatalf("w=%d t=%g: %v", w, ts, err)
			}
			if !got.Contains(ts) {
				t.Fatalf("w=%d t=%g: classified into %v", w, ts, got)
			}
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	c := mustNew(t, 120, DefaultHorizon)
	cases := []struct {
		ts   float64
		want model.BinLabel
	}{
		{0, model.BinLabel{Lower: 0, Upper: 119}},
		{119, model.BinLabel{Lower: 0, Upper: 119}},
		{119.999, model.BinLabel{Lower: 0, Upper: 119}},
		{120, model.BinLabel{Lower: 120, Upper: 239}},
		{9000, model.BinLabel{Lower: 9000, Upper: 9119}},
	}
	for _, tc := range cases {
		got, err := c.Classify(tc.ts)
		if err != nil {
			t.Fatalf("Classify(%g): %v", tc.ts, err)
		}
		if got != tc.want {
			t.Errorf("Classify(%g) = %v, want %v", tc.ts, got, tc.want)
		}
	}
}

func TestClassify_OutsideHorizon(t *testing.T) {
	c := mustNew(t, 300, DefaultHorizon)
	for _, ts := range []float64{9000.5, 10000, -0.1, math.NaN()} {
		_, err := c.Classify(ts)
		if err == nil {
			t.Fatalf("Classify(%g): expected error", ts)
		}
		if !errors.Is(err, ErrUnclassified) {
			t.Errorf("Classify(%g): error %v does not match ErrUnclassified", ts, err)
		}
		var ce *ClassificationError
		if !errors.As(err, &ce) || ce.Horizon != DefaultHorizon {
			t.Errorf("Classify(%g): expected *ClassificationError with horizon, got %v", ts, err)
		}
	}
}

func TestClassifiersAreIndependent(t *testing.T) {
	coarse := mustNew(t, 300, DefaultHorizon)
	fine := mustNew(t, 120, DefaultHorizon)

	b := coarse.Bins()
	b[0] = model.BinLabel{Lower: -1, Upper: -1}

	got, _ := coarse.Classify(10)
	if got != (model.BinLabel{Lower: 0, Upper: 299}) {
		t.Errorf("mutating Bins() copy changed the classifier: %v", got)
	}
	got, _ = fine.Classify(10)
	if got != (model.BinLabel{Lower: 0, Upper: 119}) {
		t.Errorf("fine classifier returned %v", got)
	}
}
