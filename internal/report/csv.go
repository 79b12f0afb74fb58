package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// Column headers of the two artifacts.
var (
	IntensityHeader = [2]string{"intense_class", "actions"}
	SpreadHeader    = [2]string{"spread_class", "spread"}
)

// Artifact is one delimited-text output file.
type Artifact struct {
	Path    string
	Header  [2]string
	Rows    []model.ProfileRow
	Integer bool // render the metric without a fractional part
}

// WriteCSV writes a header row then one line per profile row.
func WriteCSV(w io.Writer, a Artifact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(a.Header[:]); err != nil {
		return err
	}
	for _, r := range a.Rows {
		metric := FormatMetric(r.Metric)
		if a.Integer {
			metric = strconv.FormatInt(int64(r.Metric), 10)
		}
		if err := cw.Write([]string{r.Label, metric}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatMetric renders a float with the shortest round-trip digits and at
// least one fractional digit in decimal form ("10.0", "12.5"); magnitudes
// below 1e-4 or from 1e16 up use exponent form ("1e-05").
func FormatMetric(v float64) string {
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".NI") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(v, 'e', -1, 64)
}

// WriteArtifacts writes every artifact to a temporary file in its target
// directory and renames them into place only once all were written, so a
// failure leaves none of the targets touched.
func WriteArtifacts(artifacts ...Artifact) error {
	tmps := make([]string, 0, len(artifacts))
	cleanup := func() {
		for _, t := range tmps {
			os.Remove(t)
		}
	}

	for _, a := range artifacts {
		if err := os.MkdirAll(filepath.Dir(a.Path), 0755); err != nil {
			cleanup()
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.CreateTemp(filepath.Dir(a.Path), "."+filepath.Base(a.Path)+".*")
		if err != nil {
			cleanup()
			return fmt.Errorf("create temp for %s: %w", a.Path, err)
		}
		tmps = append(tmps, f.Name())
		if err := WriteCSV(f, a); err != nil {
			f.Close()
			cleanup()
			return fmt.Errorf("write %s: %w", a.Path, err)
		}
		if err := f.Close(); err != nil {
			cleanup()
			return fmt.Errorf("close %s: %w", a.Path, err)
		}
	}

	for i, a := range artifacts {
		if err := os.Rename(tmps[i], a.Path); err != nil {
			for _, done := range artifacts[:i] {
				os.Remove(done.Path)
			}
			cleanup()
			return fmt.Errorf("rename %s: %w", a.Path, err)
		}
	}
	return nil
}
