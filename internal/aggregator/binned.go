package aggregator

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/pable/go-pitch-metrics/internal/binning"
	"github.com/pable/go-pitch-metrics/internal/model"
)

// BinnedEvent is a spatial event annotated with its bin label.
type BinnedEvent struct {
	model.SpatialEvent
	Bin model.BinLabel
}

// ClassifyEvents labels every event with its bin. Events the classifier
// rejects are left out of the result and their errors are combined into the
// returned error; use multierr.Errors to inspect them individually.
func ClassifyEvents(events []model.SpatialEvent, c *binning.Classifier) ([]BinnedEvent, error) {
	out := make([]BinnedEvent, 0, len(events))
	var errs error
	for _, e := range events {
		bin, err := c.Classify(e.Timestamp)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("event %s (match %d): %w", e.ID, e.MatchID, err))
			continue
		}
		out = append(out, BinnedEvent{SpatialEvent: e, Bin: bin})
	}
	return out, errs
}

// eventKey is the full content of a spatial event, minus its surrogate id.
// Floats are compared by bit pattern so NaN coordinates dedupe too.
type eventKey struct {
	matchID   int64
	hasObject bool
	object    int64
	period    int
	ts        uint64
	x, y, z   uint64
}

func keyOf(e model.SpatialEvent) eventKey {
	return eventKey{
		matchID:   e.MatchID,
		hasObject: e.HasObject(),
		object:    e.Object(),
		period:    e.Period,
		ts:        math.Float64bits(e.Timestamp),
		x:         math.Float64bits(e.X),
		y:         math.Float64bits(e.Y),
		z:         math.Float64bits(e.Z),
	}
}

// DedupeEvents drops exact duplicate rows, keeping the first occurrence and
// the input order. It returns the number of rows removed.
func DedupeEvents(events []model.SpatialEvent) ([]model.SpatialEvent, int) {
	seen := make(map[eventKey]struct{}, len(events))
	out := make([]model.SpatialEvent, 0, len(events))
	for _, e := range events {
		k := keyOf(e)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out, len(events) - len(out)
}
