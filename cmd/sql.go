package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/report"
	"github.com/pable/go-pitch-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the tracking database",
	Long: `Run an arbitrary SQL query against the tracking database and print results as a table.

Schema overview:
  matches(id, home_team, away_team, home_team_score, away_team_score,
    date_played, stadium, competition)
  spatial_fact(id TEXT, match_id, trackable_object, period, timestamp,
    x, y, z)

trackable_object is NULL for untracked rows; x, y and z are NULL when missing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintRawTable(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
