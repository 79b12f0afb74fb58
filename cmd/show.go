package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the intensity and spread profiles without writing artifacts",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	addAnalysisFlags(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	_, res, err := computeProfiles(cmd.Context(), cmd, nil)
	if err != nil {
		return err
	}
	printSummary(res)
	report.PrintIntensityTable(os.Stdout, res.IntensityRows())
	report.PrintSpreadTable(os.Stdout, res.SpreadRows())
	return nil
}
