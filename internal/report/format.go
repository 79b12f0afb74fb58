package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// MinuteLabel converts a second-based bin to "lower-upper" in minutes. Each
// bound is rounded on its own, half to even, so adjacent labels may overlap
// (width 120: "0-2", "2-4").
func MinuteLabel(b model.BinLabel) string {
	return fmt.Sprintf("%d-%d", roundMinutes(b.Lower), roundMinutes(b.Upper))
}

func roundMinutes(seconds int) int {
	return int(math.RoundToEven(float64(seconds) / 60))
}

// profileEntry keeps the second-based bin next to the metric until the final
// conversion so dedup and tie-breaks work on exact values.
type profileEntry struct {
	bin    model.BinLabel
	metric float64
}

// IntensityRows dedupes (bin, count) pairs, sorts by count descending and
// converts labels to minutes.
func IntensityRows(records []model.IntensityRecord) []model.ProfileRow {
	entries := make([]profileEntry, len(records))
	for i, r := range records {
		entries[i] = profileEntry{bin: r.Bin, metric: float64(r.ActionCount)}
	}
	return finalize(entries)
}

// SpreadRows dedupes (bin, spread) pairs, sorts by spread descending and
// converts labels to minutes.
func SpreadRows(records []model.SpreadRecord) []model.ProfileRow {
	entries := make([]profileEntry, len(records))
	for i, r := range records {
		entries[i] = profileEntry{bin: r.Bin, metric: r.Spread}
	}
	return finalize(entries)
}

func finalize(entries []profileEntry) []model.ProfileRow {
	seen := make(map[profileEntry]struct{}, len(entries))
	uniq := entries[:0:0]
	for _, e := range entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		uniq = append(uniq, e)
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		if uniq[i].metric != uniq[j].metric {
			return uniq[i].metric > uniq[j].metric
		}
		return uniq[i].bin.Lower < uniq[j].bin.Lower
	})
	out := make([]model.ProfileRow, len(uniq))
	for i, e := range uniq {
		out[i] = model.ProfileRow{Label: MinuteLabel(e.bin), Metric: e.metric}
	}
	return out
}
