package aggregator

import (
	"math"
	"strconv"
	"strings"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// binKey identifies one (match, bin) group.
type binKey struct {
	matchID int64
	bin     model.BinLabel
}

func byMatchBin(r BinnedEvent) (binKey, bool) {
	return binKey{matchID: r.MatchID, bin: r.Bin}, true
}

// LocationSignature concatenates the textual forms of x and y. Distinct
// coordinate pairs can collide ("1.0"+"23.0" and "1.02"+"3.0"); that is the
// counting rule. Rows missing either coordinate have no signature.
func LocationSignature(x, y float64) (string, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return "", false
	}
	return FormatDouble(x) + FormatDouble(y), true
}

// FormatDouble renders v the way a JVM double-to-string cast does: decimal
// notation with at least one fractional digit for 1e-3 <= |v| < 1e7, and
// "<mantissa>E<exp>" otherwise.
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(v)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(v, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-")
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}

// IntensityWindow returns, for every row, the number of distinct location
// signatures in that row's (match, bin) group.
func IntensityWindow(rows []BinnedEvent) []int {
	p := PartitionBy(rows, byMatchBin)
	counts, _ := Broadcast(p, rows, countDistinctLocations)
	return counts
}

func countDistinctLocations(group []BinnedEvent) int {
	seen := make(map[string]struct{}, len(group))
	for _, r := range group {
		if sig, ok := LocationSignature(r.X, r.Y); ok {
			seen[sig] = struct{}{}
		}
	}
	return len(seen)
}

// Intensity projects the window onto one record per (match, bin), in the
// order groups were first seen.
func Intensity(rows []BinnedEvent) []model.IntensityRecord {
	counts := IntensityWindow(rows)
	seen := make(map[binKey]struct{})
	var out []model.IntensityRecord
	for i, r := range rows {
		k, _ := byMatchBin(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, model.IntensityRecord{MatchID: r.MatchID, Bin: r.Bin, ActionCount: counts[i]})
	}
	return out
}
