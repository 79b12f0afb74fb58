package storage

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// MatchExists reports whether the match has a metadata row or any stored
// spatial facts. Matches ingested without metadata only have the latter.
func (db *DB) MatchExists(id int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM matches WHERE id = ?)
		    OR EXISTS(SELECT 1 FROM spatial_fact WHERE match_id = ?)`, id, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(m model.MatchInfo) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(id, home_team, away_team, home_team_score, away_team_score, date_played, stadium, competition)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.HomeTeam, m.AwayTeam, m.HomeTeamScore, m.AwayTeamScore,
		m.DatePlayed, m.Stadium, m.Competition,
	)
	return err
}

// InsertSpatialEvents bulk-inserts spatial facts in a transaction. NaN
// coordinates and missing object ids are stored as NULL.
func (db *DB) InsertSpatialEvents(events []model.SpatialEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO spatial_fact(id, match_id, trackable_object, period, timestamp, x, y, z)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var object sql.NullInt64
		if e.TrackableObject != nil {
			object = sql.NullInt64{Int64: *e.TrackableObject, Valid: true}
		}
		_, err = stmt.Exec(
			e.ID, e.MatchID, object, e.Period, e.Timestamp,
			nullFloat(e.X), nullFloat(e.Y), nullFloat(e.Z),
		)
		if err != nil {
			return fmt.Errorf("insert spatial_fact %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// SpatialEvents returns a full scan of spatial_fact ordered by timestamp. A
// non-nil matchID restricts the scan to that match.
func (db *DB) SpatialEvents(matchID *int64) ([]model.SpatialEvent, error) {
	query := `
		SELECT id, match_id, trackable_object, period, timestamp, x, y, z
		FROM spatial_fact`
	var args []any
	if matchID != nil {
		query += " WHERE match_id = ?"
		args = append(args, *matchID)
	}
	query += " ORDER BY timestamp ASC, id ASC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SpatialEvent
	for rows.Next() {
		var (
			e       model.SpatialEvent
			object  sql.NullInt64
			x, y, z sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.MatchID, &object, &e.Period, &e.Timestamp, &x, &y, &z); err != nil {
			return nil, err
		}
		if object.Valid {
			e.TrackableObject = model.ObjectID(object.Int64)
		}
		e.X, e.Y, e.Z = floatOrNaN(x), floatOrNaN(y), floatOrNaN(z)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListMatches returns every match that has metadata or spatial facts, with
// per-match event counts, ordered by id.
func (db *DB) ListMatches() ([]model.MatchOverview, error) {
	rows, err := db.conn.Query(`
		WITH ids AS (
			SELECT id FROM matches
			UNION
			SELECT DISTINCT match_id FROM spatial_fact
		)
		SELECT ids.id,
		       COALESCE(m.home_team, ''), COALESCE(m.away_team, ''),
		       COALESCE(m.home_team_score, 0), COALESCE(m.away_team_score, 0),
		       COALESCE(m.date_played, ''), COALESCE(m.stadium, ''), COALESCE(m.competition, ''),
		       COUNT(f.id), COUNT(DISTINCT f.trackable_object), COALESCE(MAX(f.timestamp), 0)
		FROM ids
		LEFT JOIN matches m ON m.id = ids.id
		LEFT JOIN spatial_fact f ON f.match_id = ids.id
		GROUP BY ids.id
		ORDER BY ids.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchOverview
	for rows.Next() {
		var m model.MatchOverview
		if err := rows.Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.HomeTeamScore, &m.AwayTeamScore,
			&m.DatePlayed, &m.Stadium, &m.Competition,
			&m.Events, &m.Objects, &m.MaxTimestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch t := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(t)
			default:
				row[i] = fmt.Sprint(t)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
