// Package pipeline runs the intensity and spread profiles over one snapshot of
// the spatial fact table and writes both artifacts or neither.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-pitch-metrics/internal/aggregator"
	"github.com/pable/go-pitch-metrics/internal/binning"
	"github.com/pable/go-pitch-metrics/internal/config"
	"github.com/pable/go-pitch-metrics/internal/logging"
	"github.com/pable/go-pitch-metrics/internal/metrics"
	"github.com/pable/go-pitch-metrics/internal/model"
	"github.com/pable/go-pitch-metrics/internal/report"
	"github.com/pable/go-pitch-metrics/internal/spread"
)

// Stage names reported in StageError.
const (
	StageLoad              = "load"
	StageClassifyIntensity = "classify-intensity"
	StageClassifySpread    = "classify-spread"
	StageIntensity         = "intensity"
	StageSpread            = "spread"
	StageWrite             = "write"
)

// StageError is the single terminal error of a failed run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Source supplies the input table as a full scan.
type Source interface {
	SpatialEvents(matchID *int64) ([]model.SpatialEvent, error)
}

// Options are the engine parameters of one run.
type Options struct {
	HorizonSeconds int
	IntensityWidth int
	SpreadWidth    int
	BallObjectID   int64
	Workers        int
}

// OptionsFrom copies the engine parameters out of cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		HorizonSeconds: cfg.HorizonSeconds,
		IntensityWidth: cfg.IntensityWidth,
		SpreadWidth:    cfg.SpreadWidth,
		BallObjectID:   cfg.BallObjectID,
		Workers:        cfg.Workers,
	}
}

// Result holds everything one run derived from its input snapshot.
type Result struct {
	RunID       string
	Events      int
	Duplicates  int
	Intensity   []model.IntensityRecord
	Means       []model.ObjectMean
	Spread      []model.SpreadRecord
	SpreadStats aggregator.Stats
}

// IntensityRows are the intensity artifact rows.
func (r *Result) IntensityRows() []model.ProfileRow { return report.IntensityRows(r.Intensity) }

// SpreadRows are the spread artifact rows.
func (r *Result) SpreadRows() []model.ProfileRow { return report.SpreadRows(r.Spread) }

// Runner holds two independent classifiers, coarse for intensity and fine for
// spread, built from the run's options.
type Runner struct {
	opts      Options
	intensity *binning.Classifier
	spread    *binning.Classifier
	rec       *metrics.Recorder
	runID     string
	log       zerolog.Logger
}

// New validates opts and builds the classifiers. A nil recorder gets a
// private one.
func New(opts Options, rec *metrics.Recorder) (*Runner, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	coarse, err := binning.New(opts.IntensityWidth, opts.HorizonSeconds)
	if err != nil {
		return nil, fmt.Errorf("intensity classifier: %w", err)
	}
	fine, err := binning.New(opts.SpreadWidth, opts.HorizonSeconds)
	if err != nil {
		return nil, fmt.Errorf("spread classifier: %w", err)
	}
	if rec == nil {
		rec = metrics.New()
	}
	runID := uuid.NewString()
	return &Runner{
		opts:      opts,
		intensity: coarse,
		spread:    fine,
		rec:       rec,
		runID:     runID,
		log:       logging.With("run_id", runID),
	}, nil
}

// RunID identifies this runner's log lines and result.
func (r *Runner) RunID() string { return r.runID }

// Load reads the full input table once.
func (r *Runner) Load(src Source, matchID *int64) ([]model.SpatialEvent, error) {
	start := time.Now()
	events, err := src.SpatialEvents(matchID)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	r.rec.EventsRead(len(events))
	r.rec.ObserveStage(StageLoad, time.Since(start))
	r.log.Info().Int("events", len(events)).Dur("took", time.Since(start)).Msg("input loaded")
	return events, nil
}

// Run computes both profiles over events. The input is sorted by timestamp
// and deduplicated first; both profiles then read that same snapshot
// concurrently. The caller's slice is not modified.
func (r *Runner) Run(ctx context.Context, events []model.SpatialEvent) (*Result, error) {
	snapshot := make([]model.SpatialEvent, len(events))
	copy(snapshot, events)
	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].Timestamp < snapshot[j].Timestamp })

	snapshot, dups := aggregator.DedupeEvents(snapshot)
	r.rec.DuplicatesDropped(dups)
	if dups > 0 {
		r.log.Info().Int("duplicates", dups).Msg("dropped duplicate events")
	}

	res := &Result{RunID: r.runID, Events: len(snapshot), Duplicates: dups}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := r.runIntensity(snapshot)
		if err != nil {
			return err
		}
		res.Intensity = recs
		return nil
	})
	g.Go(func() error {
		means, recs, st, err := r.runSpread(gctx, snapshot)
		if err != nil {
			return err
		}
		res.Means, res.Spread, res.SpreadStats = means, recs, st
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) classify(stage, profile string, c *binning.Classifier, events []model.SpatialEvent) ([]aggregator.BinnedEvent, error) {
	start := time.Now()
	rows, err := aggregator.ClassifyEvents(events, c)
	if err != nil {
		errs := multierr.Errors(err)
		r.rec.Unclassified(profile, len(errs))
		r.log.Error().Int("unclassified", len(errs)).Int("horizon", c.Horizon()).Err(errs[0]).
			Msg("timestamps outside the horizon: the configured horizon is stale")
		return nil, &StageError{Stage: stage, Err: fmt.Errorf("%d events outside horizon, first: %w", len(errs), errs[0])}
	}
	r.rec.ObserveStage(stage, time.Since(start))
	return rows, nil
}

func (r *Runner) runIntensity(events []model.SpatialEvent) ([]model.IntensityRecord, error) {
	rows, err := r.classify(StageClassifyIntensity, "intensity", r.intensity, events)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	recs := aggregator.Intensity(rows)
	r.rec.BinsEmitted("intensity", len(recs))
	r.rec.ObserveStage(StageIntensity, time.Since(start))
	r.log.Info().Int("bins", len(recs)).Int("width", r.intensity.Width()).Dur("took", time.Since(start)).Msg("intensity computed")
	return recs, nil
}

func (r *Runner) runSpread(ctx context.Context, events []model.SpatialEvent) ([]model.ObjectMean, []model.SpreadRecord, aggregator.Stats, error) {
	rows, err := r.classify(StageClassifySpread, "spread", r.spread, events)
	if err != nil {
		return nil, nil, aggregator.Stats{}, err
	}
	start := time.Now()
	means, st := aggregator.ObjectMeans(rows, r.opts.BallObjectID)
	r.rec.RowsExcluded("ball", st.BallRows)
	r.rec.RowsExcluded("no_object", st.NoObjectRows)
	r.rec.RowsExcluded("malformed", st.MalformedRows)
	if st.MalformedRows > 0 {
		r.log.Warn().Int("rows", st.MalformedRows).Err(aggregator.ErrMalformedCoordinate).Msg("rows excluded from spread means")
	}

	groups := aggregator.CollectByBin(means, aggregator.ActiveBins(rows, r.opts.BallObjectID)...)
	recs, err := r.computeSpread(ctx, groups)
	if err != nil {
		return nil, nil, st, &StageError{Stage: StageSpread, Err: err}
	}
	r.rec.BinsEmitted("spread", len(recs))
	r.rec.ObserveStage(StageSpread, time.Since(start))
	r.log.Info().Int("bins", len(recs)).Int("objects", len(means)).Int("ball_rows", st.BallRows).
		Int("width", r.spread.Width()).Dur("took", time.Since(start)).Msg("spread computed")
	return means, recs, st, nil
}

// computeSpread evaluates each bin on a bounded worker group. Each worker
// writes only its own slot of the result.
func (r *Runner) computeSpread(ctx context.Context, groups []aggregator.BinPositions) ([]model.SpreadRecord, error) {
	out := make([]model.SpreadRecord, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bp := groups[i]
			s, err := spread.Sum(bp.Xs, bp.Ys)
			if err != nil {
				return fmt.Errorf("match %d bin %s: %w", bp.MatchID, bp.Bin, err)
			}
			r.log.Debug().Int64("match_id", bp.MatchID).Str("bin", bp.Bin.String()).
				Int("pairs", spread.Pairs(len(bp.Xs))).Float64("spread", s).Msg("bin spread")
			out[i] = model.SpreadRecord{MatchID: bp.MatchID, Bin: bp.Bin, Spread: s, Objects: len(bp.Xs)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Write emits both artifacts, or neither on failure.
func (r *Runner) Write(res *Result, actionsPath, spreadPath string) error {
	start := time.Now()
	err := report.WriteArtifacts(
		report.Artifact{Path: actionsPath, Header: report.IntensityHeader, Rows: res.IntensityRows(), Integer: true},
		report.Artifact{Path: spreadPath, Header: report.SpreadHeader, Rows: res.SpreadRows()},
	)
	if err != nil {
		return &StageError{Stage: StageWrite, Err: err}
	}
	now := time.Now()
	r.rec.ObserveStage(StageWrite, now.Sub(start))
	r.rec.MarkSuccess(now)
	r.log.Info().Str("actions", actionsPath).Str("spread", spreadPath).Msg("artifacts written")
	return nil
}
