package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-pitch-metrics/internal/logging"
	"github.com/pable/go-pitch-metrics/internal/model"
	"github.com/pable/go-pitch-metrics/internal/parser"
	"github.com/pable/go-pitch-metrics/internal/storage"
)

var (
	ingestMetadata string
	ingestMatchID  int64
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <tracking.jsonl>",
	Short: "Load a match tracking file into the spatial fact table",
	Long: `Parse a line-delimited tracking file (one JSON frame per line) and store one
spatial event per tracked object per frame. The match id comes from the
--metadata JSON when given, otherwise from --match-id.

Re-ingesting the same file is idempotent.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMetadata, "metadata", "", "match metadata JSON file")
	ingestCmd.Flags().Int64Var(&ingestMatchID, "match-id", 0, "match id when no metadata file is given")
}

func runIngest(cmd *cobra.Command, args []string) error {
	trackingPath := args[0]
	log := logging.Logger()

	var info *model.MatchInfo
	matchID := ingestMatchID
	switch {
	case ingestMetadata != "":
		var err error
		info, err = parser.ReadMetadataFile(ingestMetadata)
		if err != nil {
			return fmt.Errorf("read metadata: %w", err)
		}
		if cmd.Flags().Changed("match-id") && info.ID != ingestMatchID {
			return fmt.Errorf("--match-id %d does not match metadata id %d", ingestMatchID, info.ID)
		}
		matchID = info.ID
	case !cmd.Flags().Changed("match-id"):
		return errors.New("one of --metadata or --match-id is required")
	}

	fmt.Fprintf(os.Stdout, "Parsing %s...\n", trackingPath)
	res, err := parser.ParseTrackingFile(trackingPath, matchID)
	if err != nil {
		return fmt.Errorf("parse tracking: %w", err)
	}
	if len(res.InvalidLines) > 0 {
		log.Warn().Int("lines", len(res.InvalidLines)).Ints("first", firstN(res.InvalidLines, 10)).
			Msg("skipped lines that are not valid JSON")
	}
	if res.UntimedFrames > 0 {
		log.Warn().Int("frames", res.UntimedFrames).Msg("skipped frames without a timestamp")
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	exists, err := db.MatchExists(matchID)
	if err != nil {
		return fmt.Errorf("check match: %w", err)
	}
	if exists {
		log.Info().Int64("match_id", matchID).Msg("match already stored; re-ingest replaces its metadata and merges identical rows")
	}

	if info != nil {
		if err := db.InsertMatch(*info); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
		log.Info().Int64("match_id", info.ID).Str("home", info.HomeTeam).Str("away", info.AwayTeam).
			Msg("match metadata stored")
	}
	if err := db.InsertSpatialEvents(res.Events); err != nil {
		return fmt.Errorf("insert spatial events: %w", err)
	}

	log.Info().Int64("match_id", matchID).Int("frames", res.Frames).Int("events", len(res.Events)).
		Int("no_object_rows", res.NoObjectRows).Int("duplicates", res.Duplicates).Msg("tracking data stored")
	fmt.Fprintf(os.Stdout, "Stored %d events from %d frames for match %d.\n", len(res.Events), res.Frames, matchID)
	return nil
}

func firstN(v []int, n int) []int {
	if len(v) < n {
		return v
	}
	return v[:n]
}
