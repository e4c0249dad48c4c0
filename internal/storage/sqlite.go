// Package storage provides SQLite-based persistence for campaign attempts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/outpost-campaign/internal/campaign"
)

// Store manages the SQLite database connection for attempt persistence.
type Store struct {
	db *sql.DB
}

// Attempt is one recorded level attempt.
type Attempt struct {
	ID        int64
	LevelID   string
	Outcome   string // "victory" or "defeat"
	Turns     int
	Duration  time.Duration
	CreatedAt time.Time
}

// LevelStats aggregates the recorded attempts of one level.
type LevelStats struct {
	LevelID      string
	Attempts     int
	Victories    int
	Defeats      int
	BestTurns    int           // fewest turns over victories, 0 if none
	BestDuration time.Duration // fastest victory, 0 if none
	LastPlayed   time.Time
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
		CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			duration_secs REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_level_id ON attempts(level_id);
		CREATE INDEX IF NOT EXISTS idx_attempts_outcome ON attempts(level_id, outcome);
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

// RecordAttempt implements campaign.AttemptRecorder, letting the controller
// persist finished attempts without a direct storage dependency.
func (s *Store) RecordAttempt(rec campaign.AttemptRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO attempts (level_id, outcome, turns, duration_secs) VALUES (?, ?, ?, ?)",
		rec.LevelID, rec.Outcome, rec.Turns, rec.Duration.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record attempt: %w", err)
	}
	return nil
}

// Ensure Store implements AttemptRecorder
var _ campaign.AttemptRecorder = (*Store)(nil)

// RecentAttempts retrieves the most recent attempts across all levels.
func (s *Store) RecentAttempts(limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, level_id, outcome, turns, duration_secs, created_at
		 FROM attempts
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return attempts, nil
}

// LevelAttempts retrieves all attempts for one level, newest first.
func (s *Store) LevelAttempts(levelID string) ([]Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, level_id, outcome, turns, duration_secs, created_at
		 FROM attempts
		 WHERE level_id = ?
		 ORDER BY created_at DESC, id DESC`,
		levelID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return attempts, nil
}

// GetLevelStats aggregates the recorded attempts of a level.
func (s *Store) GetLevelStats(levelID string) (*LevelStats, error) {
	stats := &LevelStats{LevelID: levelID}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'victory' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'defeat' THEN 1 ELSE 0 END), 0)
		 FROM attempts WHERE level_id = ?`,
		levelID,
	).Scan(&stats.Attempts, &stats.Victories, &stats.Defeats)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}

	var bestTurns sql.NullInt64
	var bestSecs sql.NullFloat64
	err = s.db.QueryRow(
		`SELECT MIN(turns), MIN(duration_secs)
		 FROM attempts WHERE level_id = ? AND outcome = 'victory'`,
		levelID,
	).Scan(&bestTurns, &bestSecs)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get best attempt: %w", err)
	}
	if bestTurns.Valid {
		stats.BestTurns = int(bestTurns.Int64)
	}
	if bestSecs.Valid {
		stats.BestDuration = time.Duration(bestSecs.Float64 * float64(time.Second))
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM attempts WHERE level_id = ? ORDER BY created_at DESC LIMIT 1`,
		levelID,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseDBTime(lastPlayed)
	}

	return stats, nil
}

// GetAllLevelStats aggregates attempts for every level that has any.
func (s *Store) GetAllLevelStats() (map[string]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id,
		        COUNT(*),
		        SUM(CASE WHEN outcome = 'victory' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN outcome = 'defeat' THEN 1 ELSE 0 END),
		        MAX(created_at)
		 FROM attempts
		 GROUP BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*LevelStats)
	for rows.Next() {
		var ls LevelStats
		var lastPlayed any
		if err := rows.Scan(&ls.LevelID, &ls.Attempts, &ls.Victories, &ls.Defeats, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ls.LastPlayed = parseDBTime(lastPlayed)
		stats[ls.LevelID] = &ls
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearAttempts deletes all attempts for the given level.
func (s *Store) ClearAttempts(levelID string) error {
	_, err := s.db.Exec("DELETE FROM attempts WHERE level_id = ?", levelID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear attempts: %w", err)
	}
	return nil
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var a Attempt
	var secs float64
	var createdAt any
	if err := rows.Scan(&a.ID, &a.LevelID, &a.Outcome, &a.Turns, &secs, &createdAt); err != nil {
		return Attempt{}, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	a.Duration = time.Duration(secs * float64(time.Second))
	a.CreatedAt = parseDBTime(createdAt)
	return a, nil
}

// parseDBTime handles the driver returning either time.Time or string.
func parseDBTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
