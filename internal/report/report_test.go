package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pable/go-pitch-metrics/internal/model"
)

func bin(lo, hi int) model.BinLabel { return model.BinLabel{Lower: lo, Upper: hi} }

// ---- Minute labels ----

func TestMinuteLabel(t *testing.T) {
	cases := []struct {
		b    model.BinLabel
		want string
	}{
		{bin(300, 599), "5-10"}, // 599/60 = 9.98 rounds up
		{bin(0, 299), "0-5"},
		{bin(0, 119), "0-2"},
		{bin(120, 239), "2-4"}, // overlaps the previous label's upper bound
		{bin(9000, 9119), "150-152"},
		{bin(90, 179), "2-3"},  // 1.5 rounds to even 2
		{bin(270, 359), "4-6"}, // 4.5 rounds to even 4
	}
	for _, tc := range cases {
		if got := MinuteLabel(tc.b); got != tc.want {
			t.Errorf("MinuteLabel(%v) = %q, want %q", tc.b, got, tc.want)
		}
	}
}

// ---- Dedup and ordering ----

func TestIntensityRows_DedupAndSortDescending(t *testing.T) {
	records := []model.IntensityRecord{
		{MatchID: 1, Bin: bin(0, 299), ActionCount: 40},
		{MatchID: 1, Bin: bin(300, 599), ActionCount: 90},
		{MatchID: 2, Bin: bin(0, 299), ActionCount: 40}, // same (bin, count) → collapses
		{MatchID: 2, Bin: bin(600, 899), ActionCount: 40},
	}
	got := IntensityRows(records)
	want := []model.ProfileRow{
		{Label: "5-10", Metric: 90},
		{Label: "0-5", Metric: 40},
		{Label: "10-15", Metric: 40},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSpreadRows_SortDescending(t *testing.T) {
	records := []model.SpreadRecord{
		{Bin: bin(0, 119), Spread: 10},
		{Bin: bin(120, 239), Spread: 250.5},
		{Bin: bin(240, 359), Spread: 0},
	}
	got := SpreadRows(records)
	if got[0].Label != "2-4" || got[1].Label != "0-2" || got[2].Label != "4-6" {
		t.Errorf("unexpected order: %+v", got)
	}
}

// ---- CSV ----

func TestFormatMetric(t *testing.T) {
	cases := map[float64]string{
		10:      "10.0",
		0:       "0.0",
		12.5:    "12.5",
		0.00001: "1e-05",
		1e16:    "1e+16",
	}
	for v, want := range cases {
		if got := FormatMetric(v); got != want {
			t.Errorf("FormatMetric(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, Artifact{
		Header: SpreadHeader,
		Rows:   []model.ProfileRow{{Label: "0-2", Metric: 10}},
	})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got, want := buf.String(), "spread_class,spread\n0-2,10.0\n"; got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}

	buf.Reset()
	WriteCSV(&buf, Artifact{Header: IntensityHeader, Integer: true, Rows: []model.ProfileRow{{Label: "5-10", Metric: 42}}})
	if got, want := buf.String(), "intense_class,actions\n5-10,42\n"; got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	actions := filepath.Join(dir, "actions.csv")
	spread := filepath.Join(dir, "spread.csv")
	err := WriteArtifacts(
		Artifact{Path: actions, Header: IntensityHeader, Integer: true, Rows: []model.ProfileRow{{Label: "0-5", Metric: 3}}},
		Artifact{Path: spread, Header: SpreadHeader, Rows: []model.ProfileRow{{Label: "0-2", Metric: 10}}},
	)
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	for _, p := range []string{actions, spread} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected no leftover temp files, found %d entries", len(entries))
	}
}

func TestWriteArtifacts_FailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	actions := filepath.Join(dir, "actions.csv")
	err := WriteArtifacts(
		Artifact{Path: actions, Header: IntensityHeader},
		Artifact{Path: filepath.Join(blocker, "spread.csv"), Header: SpreadHeader}, // parent is a file
	)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(actions); !os.IsNotExist(err) {
		t.Errorf("actions.csv must not exist after a failed run, stat err=%v", err)
	}
}

// ---- Terminal tables ----

func TestPrintTables(t *testing.T) {
	var buf bytes.Buffer
	PrintIntensityTable(&buf, []model.ProfileRow{{Label: "5-10", Metric: 90}, {Label: "0-5", Metric: 45}})
	PrintSpreadTable(&buf, []model.ProfileRow{{Label: "0-2", Metric: 10}})
	out := buf.String()
	for _, want := range []string{"5-10", "90", "0-2", "10.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

// ---- Charts ----

func TestBarsFollowTimeline(t *testing.T) {
	bars := SpreadBars([]model.SpreadRecord{{Bin: bin(240, 359), Spread: 1}, {Bin: bin(0, 119), Spread: 9}})
	if bars[0].Bin.Lower != 0 || bars[1].Bin.Lower != 240 {
		t.Errorf("bars not in timeline order: %+v", bars)
	}
}

func TestBarLabels_SingleMatch(t *testing.T) {
	bars := SpreadBars([]model.SpreadRecord{
		{MatchID: 7, Bin: bin(120, 239), Spread: 1},
		{MatchID: 7, Bin: bin(0, 119), Spread: 2},
	})
	if diff := cmp.Diff([]string{"0-2", "2-4"}, BarLabels(bars)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

// TestBarLabels_SeveralMatches: bars of different matches in the same bin
// stay apart and carry their match id.
func TestBarLabels_SeveralMatches(t *testing.T) {
	bars := IntensityBars([]model.IntensityRecord{
		{MatchID: 2, Bin: bin(0, 299), ActionCount: 4},
		{MatchID: 1, Bin: bin(300, 599), ActionCount: 5},
		{MatchID: 1, Bin: bin(0, 299), ActionCount: 3},
	})
	want := []string{"1:0-5", "2:0-5", "1:5-10"}
	if diff := cmp.Diff(want, BarLabels(bars)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveBarChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intensity.png")
	bars := IntensityBars([]model.IntensityRecord{{Bin: bin(0, 299), ActionCount: 3}, {Bin: bin(300, 599), ActionCount: 5}})
	if err := SaveBarChart(path, "Intensity", "Actions", bars); err != nil {
		t.Fatalf("SaveBarChart: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("expected a non-empty chart file, err=%v", err)
	}
	if err := SaveBarChart(path, "Empty", "", nil); err == nil {
		t.Error("expected an error for an empty chart")
	}
}
