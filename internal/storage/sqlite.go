// Package storage provides SQLite-based persistence for finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a requested result does not exist.
var ErrNotFound = errors.New("storage: result not found")

// Store manages the SQLite database connection for game results.
type Store struct {
	db *sql.DB
}

// Result is the record of one finished game. It holds the final counters
// only, never the board itself.
type Result struct {
	ID        int64
	RunID     uuid.UUID
	GameID    string
	Lines     int
	Pieces    int
	Ticks     int // Simulated frames the game lasted
	Width     int
	Height    int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			game_id TEXT NOT NULL,
			lines INTEGER NOT NULL,
			pieces INTEGER NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_game_id ON results(game_id);
		CREATE INDEX IF NOT EXISTS idx_results_top ON results(game_id, lines DESC, pieces DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a finished game. A zero RunID is replaced with a fresh
// random one. The stored record is returned with its ID and RunID set.
func (s *Store) SaveResult(r Result) (Result, error) {
	if r.RunID == uuid.Nil {
		r.RunID = uuid.New()
	}

	res, err := s.db.Exec(
		`INSERT INTO results (run_id, game_id, lines, pieces, ticks, width, height)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID.String(), r.GameID, r.Lines, r.Pieces, r.Ticks, r.Width, r.Height,
	)
	if err != nil {
		return Result{}, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Result{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	r.ID = id
	return r, nil
}

const resultColumns = `id, run_id, game_id, lines, pieces, ticks, width, height, created_at`

// TopResults retrieves the best N results for the given game.
// Results are ordered by lines, then pieces, both descending.
func (s *Store) TopResults(gameID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE game_id = ?
		 ORDER BY lines DESC, pieces DESC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	return scanResults(rows)
}

// RecentResults retrieves the latest N results across all games.
func (s *Store) RecentResults(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recent results: %w", err)
	}
	return scanResults(rows)
}

// ResultByRunID retrieves one result by its run ID.
func (s *Store) ResultByRunID(runID uuid.UUID) (Result, error) {
	row := s.db.QueryRow(
		`SELECT `+resultColumns+` FROM results WHERE run_id = ?`,
		runID.String(),
	)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, fmt.Errorf("storage: run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return Result{}, fmt.Errorf("storage: cannot query result: %w", err)
	}
	return r, nil
}

// BestLines returns the most lines cleared in one game of the given variant.
// Returns 0 if no results exist.
func (s *Store) BestLines(gameID string) (int, error) {
	var lines sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(lines) FROM results WHERE game_id = ?",
		gameID,
	).Scan(&lines)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best lines: %w", err)
	}

	if !lines.Valid {
		return 0, nil
	}
	return int(lines.Int64), nil
}

// ClearResults deletes all results for the given game.
func (s *Store) ClearResults(gameID string) error {
	_, err := s.db.Exec("DELETE FROM results WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID      string
	GamesCount  int
	BestLines   int
	AvgLines    float64
	TotalLines  int64
	TotalPieces int64
	LastPlayed  time.Time
}

// Stats retrieves aggregated statistics for a specific game.
func (s *Store) Stats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(lines), 0), COALESCE(AVG(lines), 0),
		        COALESCE(SUM(lines), 0), COALESCE(SUM(pieces), 0), MAX(created_at)
		 FROM results WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.BestLines, &stats.AvgLines, &stats.TotalLines, &stats.TotalPieces, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllStats retrieves statistics for all games that have been played.
func (s *Store) AllStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), MAX(lines), AVG(lines), SUM(lines), SUM(pieces), MAX(created_at)
		 FROM results
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var st GameStats
		var lastPlayed any
		if err := rows.Scan(&st.GameID, &st.GamesCount, &st.BestLines, &st.AvgLines, &st.TotalLines, &st.TotalPieces, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.GameID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (Result, error) {
	var r Result
	var runID string
	var createdAt any
	if err := sc.Scan(&r.ID, &runID, &r.GameID, &r.Lines, &r.Pieces, &r.Ticks, &r.Width, &r.Height, &createdAt); err != nil {
		return Result{}, err
	}

	parsed, err := uuid.Parse(runID)
	if err != nil {
		return Result{}, fmt.Errorf("bad run id %q: %w", runID, err)
	}
	r.RunID = parsed
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

// parseTime handles the driver returning DATETIME either as time.Time or as
// text, which happens for aggregates like MAX(created_at).
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
