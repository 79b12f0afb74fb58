// Package metrics collects per-run counters and stage timings and exports them
// in the Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pitchmetrics"

// Recorder owns a private registry so concurrent runs (and tests) never
// collide on the default one.
type Recorder struct {
	registry *prometheus.Registry

	eventsRead        prometheus.Counter
	duplicatesDropped prometheus.Counter
	unclassified      *prometheus.CounterVec
	rowsExcluded      *prometheus.CounterVec
	binsEmitted       *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	lastSuccess       prometheus.Gauge
}

// New builds a Recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		eventsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_read_total",
			Help: "Spatial events read from the input table.",
		}),
		duplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "duplicate_events_dropped_total",
			Help: "Exact duplicate events removed before grouping.",
		}),
		unclassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "unclassified_events_total",
			Help: "Events whose timestamp fell outside the horizon.",
		}, []string{"profile"}),
		rowsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "spread_rows_excluded_total",
			Help: "Rows left out of the spread means, by reason.",
		}, []string{"reason"}),
		binsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "bins_emitted_total",
			Help: "Output rows produced, by profile.",
		}, []string{"profile"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "stage_duration_seconds",
			Help:    "Wall time of each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last run that wrote both artifacts.",
		}),
	}
	r.registry.MustRegister(
		r.eventsRead, r.duplicatesDropped, r.unclassified, r.rowsExcluded,
		r.binsEmitted, r.stageDuration, r.lastSuccess,
	)
	return r
}

// EventsRead adds n to the input row count.
func (r *Recorder) EventsRead(n int) { r.eventsRead.Add(float64(n)) }

// DuplicatesDropped adds n to the dedup count.
func (r *Recorder) DuplicatesDropped(n int) { r.duplicatesDropped.Add(float64(n)) }

// Unclassified adds n out-of-horizon events for a profile.
func (r *Recorder) Unclassified(profile string, n int) {
	r.unclassified.WithLabelValues(profile).Add(float64(n))
}

// RowsExcluded adds n rows excluded from spread for a reason.
func (r *Recorder) RowsExcluded(reason string, n int) {
	r.rowsExcluded.WithLabelValues(reason).Add(float64(n))
}

// BinsEmitted adds n output rows for a profile.
func (r *Recorder) BinsEmitted(profile string, n int) {
	r.binsEmitted.WithLabelValues(profile).Add(float64(n))
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// MarkSuccess stamps the completion time of a successful run.
func (r *Recorder) MarkSuccess(t time.Time) { r.lastSuccess.Set(float64(t.Unix())) }

// Gatherer exposes the registry, e.g. for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes every metric to path in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
