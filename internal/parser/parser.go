package parser

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// maxLineBytes bounds a single tracking frame line.
const maxLineBytes = 16 << 20

// trackingFrame is one line of the tracking file.
type trackingFrame struct {
	Data      []trackedObject `json:"data"`
	Timestamp *string         `json:"timestamp"`
	Period    *int            `json:"period"`
}

type trackedObject struct {
	TrackableObject *int64   `json:"trackable_object"`
	X               *float64 `json:"x"`
	Y               *float64 `json:"y"`
	Z               *float64 `json:"z"`
}

// TrackingResult is the parsed spatial fact table of one match plus the
// counts of what was skipped on the way.
type TrackingResult struct {
	Events        []model.SpatialEvent
	Frames        int
	InvalidLines  []int // 1-based line numbers that were not valid JSON
	UntimedFrames int
	NoObjectRows  int
	Duplicates    int
}

// ParseTrackingFile parses the tracking file at path for the given match.
func ParseTrackingFile(path string, matchID int64) (*TrackingResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tracking file: %w", err)
	}
	defer f.Close()
	return ParseTracking(f, matchID)
}

// ParseTracking reads line-delimited tracking frames and explodes them into
// one spatial event per tracked object per frame. Invalid lines, frames
// without a timestamp, and rows without an object id are skipped and counted;
// exact duplicate rows are dropped.
func ParseTracking(r io.Reader, matchID int64) (*TrackingResult, error) {
	res := &TrackingResult{}
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var fr trackingFrame
		if err := json.Unmarshal([]byte(raw), &fr); err != nil {
			res.InvalidLines = append(res.InvalidLines, line)
			continue
		}
		res.Frames++
		if fr.Timestamp == nil || *fr.Timestamp == "" {
			res.UntimedFrames++
			continue
		}
		ts, err := ParseTimestamp(*fr.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		period := 0
		if fr.Period != nil {
			period = *fr.Period
		}

		for _, obj := range fr.Data {
			if obj.TrackableObject == nil {
				res.NoObjectRows++
				continue
			}
			e := model.SpatialEvent{
				MatchID:         matchID,
				TrackableObject: model.ObjectID(*obj.TrackableObject),
				Period:          period,
				Timestamp:       ts,
				X:               orNaN(obj.X),
				Y:               orNaN(obj.Y),
				Z:               orNaN(obj.Z),
			}
			e.ID = RowID(e)
			if _, dup := seen[e.ID]; dup {
				res.Duplicates++
				continue
			}
			seen[e.ID] = struct{}{}
			res.Events = append(res.Events, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tracking file: %w", err)
	}
	return res, nil
}

// ParseTimestamp converts "HH:MM:SS(.fff)" to seconds.
func ParseTimestamp(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parse timestamp %q: want HH:MM:SS", s)
	}
	hrs, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q hours: %w", s, err)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q minutes: %w", s, err)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q seconds: %w", s, err)
	}
	return float64(hrs*3600+mins*60) + secs, nil
}

// RowID is the sha256 of the row's values joined by "|". Identical rows share
// an id, which is what makes re-ingesting a file idempotent.
func RowID(e model.SpatialEvent) string {
	fields := []string{
		strconv.FormatInt(e.Object(), 10),
		strconv.Itoa(e.Period),
		strconv.FormatFloat(e.Timestamp, 'f', -1, 64),
		strconv.FormatFloat(e.X, 'f', -1, 64),
		strconv.FormatFloat(e.Y, 'f', -1, 64),
		strconv.FormatFloat(e.Z, 'f', -1, 64),
		strconv.FormatInt(e.MatchID, 10),
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strings.Join(fields, "|"))))
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
