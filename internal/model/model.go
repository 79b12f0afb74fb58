package model

import (
	"fmt"
	"math"
)

// ---- Input rows supplied by the ETL collaborator ----

// SpatialEvent is one tracked position for one object at one frame.
// X and Y are NaN when the source row had no coordinate.
type SpatialEvent struct {
	ID              string
	MatchID         int64
	TrackableObject *int64 // nil when the frame row had no object id
	Period          int
	Timestamp       float64 // match seconds
	X, Y, Z         float64
}

// HasObject reports whether the event carries a tracked object id.
func (e SpatialEvent) HasObject() bool { return e.TrackableObject != nil }

// Object returns the tracked object id, or 0 when absent.
func (e SpatialEvent) Object() int64 {
	if e.TrackableObject == nil {
		return 0
	}
	return *e.TrackableObject
}

// HasXY reports whether both planar coordinates are usable numbers.
func (e SpatialEvent) HasXY() bool {
	return isFinite(e.X) && isFinite(e.Y)
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ObjectID is a convenience for building *int64 object ids in literals.
func ObjectID(id int64) *int64 { return &id }

// MatchInfo is the per-match metadata row stored alongside the spatial facts.
type MatchInfo struct {
	ID            int64
	HomeTeam      string
	AwayTeam      string
	HomeTeamScore int
	AwayTeamScore int
	DatePlayed    string
	Stadium       string
	Competition   string
}

// MatchOverview summarises what is stored for one match.
type MatchOverview struct {
	MatchInfo
	Events       int
	Objects      int
	MaxTimestamp float64
}

// ---- Bins ----

// BinLabel is a closed integer-second interval [Lower, Upper].
type BinLabel struct {
	Lower, Upper int
}

// String renders the label in seconds as "lower-upper".
func (b BinLabel) String() string {
	return fmt.Sprintf("%d-%d", b.Lower, b.Upper)
}

// Contains reports whether t lies in the bin, using lower <= t < upper+1 so that
// fractional timestamps between upper and upper+1 still belong to this bin.
func (b BinLabel) Contains(t float64) bool {
	return t >= float64(b.Lower) && t < float64(b.Upper+1)
}

// ---- Derived records ----

// IntensityRecord is the distinct-location count for one (match, bin).
type IntensityRecord struct {
	MatchID     int64
	Bin         BinLabel
	ActionCount int
}

// ObjectMean is the average planar position of one object within one bin.
type ObjectMean struct {
	MatchID int64
	Bin     BinLabel
	Object  int64
	MeanX   float64
	MeanY   float64
	Samples int
}

// SpreadRecord is the pairwise-distance dispersion for one (match, bin).
type SpreadRecord struct {
	MatchID int64
	Bin     BinLabel
	Spread  float64
	Objects int
}

// ProfileRow is one output line: a minute label and its metric.
type ProfileRow struct {
	Label  string
	Metric float64
}
