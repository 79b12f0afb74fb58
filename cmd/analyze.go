package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/binning"
	"github.com/pable/go-pitch-metrics/internal/config"
	"github.com/pable/go-pitch-metrics/internal/logging"
	"github.com/pable/go-pitch-metrics/internal/metrics"
	"github.com/pable/go-pitch-metrics/internal/pipeline"
	"github.com/pable/go-pitch-metrics/internal/report"
	"github.com/pable/go-pitch-metrics/internal/storage"
)

// Analysis flags shared by analyze, show and chart.
var (
	matchFilter   int64
	horizonFlag   int
	intensityFlag int
	spreadFlag    int
	workersFlag   int
	ballIDFlag    int64
	outDir        string
	metricsFile   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute the intensity and spread profiles and write both CSV artifacts",
	Long: `Read the spatial fact table, compute the activity intensity profile
(distinct locations per coarse bin) and the spatial spread profile (sum of
pairwise distances between per-object mean positions per fine bin), and write
actions.csv and spread.csv. Either both files are written or neither.

A timestamp outside [0, horizon] aborts the run; raise --horizon if the data
is longer than the configured horizon.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&outDir, "out-dir", "", "directory for actions.csv and spread.csv (default .)")
	analyzeCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write a Prometheus textfile of run metrics")
}

func addAnalysisFlags(c *cobra.Command) {
	c.Flags().Int64Var(&matchFilter, "match-id", 0, "restrict the run to one match")
	c.Flags().IntVar(&horizonFlag, "horizon", 0, "largest classifiable timestamp in seconds (default 9000)")
	c.Flags().IntVar(&intensityFlag, "intensity-width", 0, "intensity bin width in seconds (default 300)")
	c.Flags().IntVar(&spreadFlag, "spread-width", 0, "spread bin width in seconds (default 120)")
	c.Flags().IntVar(&workersFlag, "workers", 0, "spread worker count (default NumCPU)")
	c.Flags().Int64Var(&ballIDFlag, "ball-id", 0, "trackable object id of the ball (default 55)")
}

// applyAnalysisFlags overrides cfg with the analysis flags set on cmd.
func applyAnalysisFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("horizon") == nil {
		return
	}
	if flags.Changed("horizon") {
		c.HorizonSeconds = horizonFlag
	}
	if flags.Changed("intensity-width") {
		c.IntensityWidth = intensityFlag
	}
	if flags.Changed("spread-width") {
		c.SpreadWidth = spreadFlag
	}
	if flags.Changed("workers") {
		c.Workers = workersFlag
	}
	if flags.Changed("ball-id") {
		c.BallObjectID = ballIDFlag
	}
	if flags.Lookup("out-dir") != nil && flags.Changed("out-dir") {
		c.OutputDir = outDir
	}
	if flags.Lookup("metrics-file") != nil && flags.Changed("metrics-file") {
		c.MetricsFile = metricsFile
	}
}

func selectedMatch(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("match-id") {
		return nil
	}
	id := matchFilter
	return &id
}

// computeProfiles opens the database, loads the input once and runs both
// profiles over it.
func computeProfiles(ctx context.Context, cmd *cobra.Command, rec *metrics.Recorder) (*pipeline.Runner, *pipeline.Result, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	runner, err := pipeline.New(pipeline.OptionsFrom(cfg), rec)
	if err != nil {
		return nil, nil, err
	}
	events, err := runner.Load(db, selectedMatch(cmd))
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 {
		log := logging.Logger()
		log.Warn().Str("db", cfg.DBPath).Msg("no spatial events stored; profiles will be empty")
	}
	res, err := runner.Run(ctx, events)
	if err != nil {
		if errors.Is(err, binning.ErrUnclassified) {
			return nil, nil, fmt.Errorf("%w (horizon is %ds, set --horizon or horizon_seconds)", err, cfg.HorizonSeconds)
		}
		return nil, nil, err
	}
	return runner, res, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rec := metrics.New()
	runner, res, err := computeProfiles(cmd.Context(), cmd, rec)
	if err != nil {
		writeMetrics(rec)
		return err
	}
	if err := runner.Write(res, cfg.ActionsPath(), cfg.SpreadPath()); err != nil {
		writeMetrics(rec)
		return err
	}
	writeMetrics(rec)

	printSummary(res)
	fmt.Fprintf(os.Stdout, "Wrote %s (%d rows) and %s (%d rows)\n",
		cfg.ActionsPath(), len(res.IntensityRows()), cfg.SpreadPath(), len(res.SpreadRows()))
	return nil
}

func printSummary(res *pipeline.Result) {
	report.PrintRunSummary(os.Stdout, report.RunSummary{
		RunID:          res.RunID,
		Events:         res.Events,
		Duplicates:     res.Duplicates,
		IntensityWidth: cfg.IntensityWidth,
		SpreadWidth:    cfg.SpreadWidth,
		Horizon:        cfg.HorizonSeconds,
	})
}

// writeMetrics is best effort: a failed textfile never fails the run.
func writeMetrics(rec *metrics.Recorder) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		log := logging.Logger()
		log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("write metrics textfile")
	}
}
