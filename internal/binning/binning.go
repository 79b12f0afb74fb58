// Package binning partitions the match timeline into fixed-width,
// closed integer-second bins and assigns timestamps to them.
package binning

import (
	"errors"
	"fmt"
	"math"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// DefaultHorizon is the largest classifiable timestamp: 150 minutes.
const DefaultHorizon = 9000

// ErrUnclassified is matched by every ClassificationError.
var ErrUnclassified = errors.New("timestamp outside classification horizon")

// ClassificationError reports a timestamp that falls outside [0, Horizon].
type ClassificationError struct {
	Timestamp float64
	Horizon   int
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("timestamp %g outside [0, %d]", e.Timestamp, e.Horizon)
}

// Is lets errors.Is(err, ErrUnclassified) match.
func (e *ClassificationError) Is(target error) bool { return target == ErrUnclassified }

// Classifier holds a precomputed partition of [0, horizon]. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	width   int
	horizon int
	bins    []model.BinLabel
}

// New builds ceil(horizon/width)+1 contiguous bins (k*width, (k+1)*width-1).
func New(width, horizon int) (*Classifier, error) {
	if width < 1 {
		return nil, fmt.Errorf("bin width must be >= 1, got %d", width)
	}
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be >= 1, got %d", horizon)
	}
	n := (horizon+width-1)/width + 1
	bins := make([]model.BinLabel, n)
	for k := range bins {
		bins[k] = model.BinLabel{Lower: k * width, Upper: (k+1)*width - 1}
	}
	return &Classifier{width: width, horizon: horizon, bins: bins}, nil
}

// Width returns the bin width in seconds.
func (c *Classifier) Width() int { return c.width }

// Horizon returns the largest classifiable timestamp.
func (c *Classifier) Horizon() int { return c.horizon }

// Bins returns a copy of the partition, ordered by lower bound.
func (c *Classifier) Bins() []model.BinLabel {
	out := make([]model.BinLabel, len(c.bins))
	copy(out, c.bins)
	return out
}

// Classify returns the unique bin containing t. Timestamps below zero, above
// the horizon, or NaN yield a *ClassificationError.
func (c *Classifier) Classify(t float64) (model.BinLabel, error) {
	if math.IsNaN(t) || t < 0 || t > float64(c.horizon) {
		return model.BinLabel{}, &ClassificationError{Timestamp: t, Horizon: c.horizon}
	}
	k := int(math.Floor(t / float64(c.width)))
	// Guard against rounding in the division landing one bin off.
	for k > 0 && t < float64(c.bins[k].Lower) {
		k--
	}
	for k < len(c.bins)-1 && !c.bins[k].Contains(t) {
		k++
	}
	if !c.bins[k].Contains(t) {
		return model.BinLabel{}, &ClassificationError{Timestamp: t, Horizon: c.horizon}
	}
	return c.bins[k], nil
}
