package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes the tracking database file and its WAL side files.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the tracking database",
	Long: `Permanently delete the SQLite tracking database with every ingested match and
its spatial facts. Previously written actions.csv and spread.csv are left alone.
Run 'pitchmetrics ingest' on the tracking files again to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
		return nil
	}

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", cfg.DBPath)
		if n, events, err := storedTotals(); err == nil {
			fmt.Fprintf(os.Stderr, "  %d matches, %d spatial events\n", n, events)
		}
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	for _, p := range []string{cfg.DBPath, cfg.DBPath + "-wal", cfg.DBPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", cfg.DBPath)
	return nil
}

// storedTotals counts what a drop would lose.
func storedTotals() (matches, events int, err error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return 0, 0, err
	}
	defer db.Close()
	list, err := db.ListMatches()
	if err != nil {
		return 0, 0, err
	}
	for _, m := range list {
		events += m.Events
	}
	return len(list), events, nil
}
