package aggregator

import (
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// ErrMalformedCoordinate marks a row whose x or y is missing or not finite.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Stats counts rows the spread grouping left out.
type Stats struct {
	BallRows      int
	NoObjectRows  int
	MalformedRows int
}

// objectKey identifies one (match, bin, object) group.
type objectKey struct {
	matchID int64
	bin     model.BinLabel
	object  int64
}

// CheckCoordinates returns ErrMalformedCoordinate when e cannot contribute to
// a mean position.
func CheckCoordinates(e model.SpatialEvent) error {
	if !e.HasXY() {
		return ErrMalformedCoordinate
	}
	return nil
}

type meanXY struct {
	x, y    float64
	samples int
}

// ObjectMeans is the first spread grouping: the mean x and y of every
// non-ball object per (match, bin). The window result is broadcast back to
// the contributing rows and then reduced with a distinct over
// (match, bin, object), so each object yields exactly one record per bin.
// It owns the records it returns.
func ObjectMeans(rows []BinnedEvent, ballID int64) ([]model.ObjectMean, Stats) {
	var st Stats
	p := PartitionBy(rows, func(r BinnedEvent) (objectKey, bool) {
		switch {
		case !r.HasObject():
			st.NoObjectRows++
			return objectKey{}, false
		case r.Object() == ballID:
			st.BallRows++
			return objectKey{}, false
		case CheckCoordinates(r.SpatialEvent) != nil:
			st.MalformedRows++
			return objectKey{}, false
		}
		return objectKey{matchID: r.MatchID, bin: r.Bin, object: r.Object()}, true
	})

	xs := make([]float64, 0)
	ys := make([]float64, 0)
	window, member := Broadcast(p, rows, func(group []BinnedEvent) meanXY {
		xs, ys = xs[:0], ys[:0]
		for _, r := range group {
			xs = append(xs, r.X)
			ys = append(ys, r.Y)
		}
		return meanXY{x: stat.Mean(xs, nil), y: stat.Mean(ys, nil), samples: len(group)}
	})

	seen := make(map[objectKey]struct{}, p.Len())
	out := make([]model.ObjectMean, 0, p.Len())
	for i, r := range rows {
		if !member[i] {
			continue
		}
		k := objectKey{matchID: r.MatchID, bin: r.Bin, object: r.Object()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		m := window[i]
		out = append(out, model.ObjectMean{
			MatchID: r.MatchID,
			Bin:     r.Bin,
			Object:  k.object,
			MeanX:   m.x,
			MeanY:   m.y,
			Samples: m.samples,
		})
	}
	return out, st
}

// BinPositions is the second spread grouping: every object mean of one
// (match, bin), collected into parallel ordered lists.
type BinPositions struct {
	MatchID int64
	Bin     model.BinLabel
	Objects []int64
	Xs, Ys  []float64
}

// BinRef names one (match, bin).
type BinRef struct {
	MatchID int64
	Bin     model.BinLabel
}

// ActiveBins lists, in first-seen order, every (match, bin) holding at least
// one non-ball row with an object id, whether or not its coordinates are
// usable. Such a bin gets a spread row even when no object mean survives.
func ActiveBins(rows []BinnedEvent, ballID int64) []BinRef {
	seen := make(map[binKey]struct{})
	var out []BinRef
	for _, r := range rows {
		if !r.HasObject() || r.Object() == ballID {
			continue
		}
		k := binKey{matchID: r.MatchID, bin: r.Bin}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, BinRef{MatchID: r.MatchID, Bin: r.Bin})
	}
	return out
}

// CollectByBin groups object means by (match, bin). Bins listed in active
// come first, in that order, and are emitted even without any mean; bins
// only present in means follow in first-seen order. It only reads means; the
// lists follow the order of means, which is deterministic for a given input.
func CollectByBin(means []model.ObjectMean, active ...BinRef) []BinPositions {
	p := PartitionBy(means, func(m model.ObjectMean) (binKey, bool) {
		return binKey{matchID: m.MatchID, bin: m.Bin}, true
	})

	keys := make([]binKey, 0, len(active)+p.Len())
	listed := make(map[binKey]struct{}, len(active))
	for _, a := range active {
		k := binKey{matchID: a.MatchID, bin: a.Bin}
		if _, dup := listed[k]; dup {
			continue
		}
		listed[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, k := range p.Keys() {
		if _, dup := listed[k]; !dup {
			keys = append(keys, k)
		}
	}

	out := make([]BinPositions, 0, len(keys))
	for _, k := range keys {
		idx := p.Rows(k)
		bp := BinPositions{
			MatchID: k.matchID,
			Bin:     k.bin,
			Objects: make([]int64, 0, len(idx)),
			Xs:      make([]float64, 0, len(idx)),
			Ys:      make([]float64, 0, len(idx)),
		}
		for _, i := range idx {
			bp.Objects = append(bp.Objects, means[i].Object)
			bp.Xs = append(bp.Xs, means[i].MeanX)
			bp.Ys = append(bp.Ys, means[i].MeanY)
		}
		out = append(out, bp)
	}
	return out
}
