package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/report"
)

var chartDir string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render both profiles as bar charts along the match timeline",
	Long:  "Compute both profiles and save intensity.png and spread.png, one bar per bin in timeline order.",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	addAnalysisFlags(chartCmd)
	chartCmd.Flags().StringVar(&chartDir, "out", ".", "directory for the PNG files")
}

func runChart(cmd *cobra.Command, args []string) error {
	_, res, err := computeProfiles(cmd.Context(), cmd, nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(chartDir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	intensityPath := filepath.Join(chartDir, "intensity.png")
	title := fmt.Sprintf("Activity intensity (%ds bins)", cfg.IntensityWidth)
	if err := report.SaveBarChart(intensityPath, title, "distinct locations", report.IntensityBars(res.Intensity)); err != nil {
		return fmt.Errorf("intensity chart: %w", err)
	}
	spreadPath := filepath.Join(chartDir, "spread.png")
	title = fmt.Sprintf("Spatial spread (%ds bins)", cfg.SpreadWidth)
	if err := report.SaveBarChart(spreadPath, title, "sum of pairwise distances", report.SpreadBars(res.Spread)); err != nil {
		return fmt.Errorf("spread chart: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s and %s\n", intensityPath, spreadPath)
	return nil
}
