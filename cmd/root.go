package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/config"
	"github.com/pable/go-pitch-metrics/internal/logging"
)

var (
	dbPath     string
	configPath string
	logLevel   string
	logFormat  string

	// cfg is the resolved configuration, available to every subcommand.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "pitchmetrics",
	Short:             "Football tracking data metrics tool",
	Long:              "Ingest football tracking data and compute per-interval activity intensity and spatial spread profiles.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default pitchmetrics.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (or $PITCHMETRICS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "console or json")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadConfig layers defaults, file and env, then applies flags the user set
// explicitly.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	applyAnalysisFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}
	logging.Init(logging.Config{Level: c.LogLevel, Format: c.LogFormat})
	cfg = c
	return nil
}
