package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/streakr/internal/clock"
)

const currentVersion = 1

// dateLayout is how civil dates are stored in TEXT columns.
const dateLayout = "2006-01-02"

// Store is the SQLite backing data store. It is the source of truth for
// streak counters, daily activity and achievement unlocks.
type Store struct {
	db *sql.DB

	// aggregates gates the optimized single-query reads.
	aggregates atomic.Bool

	// clock stamps updated_at columns.
	clock clock.Clock
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, clock: clock.Real()}
	s.aggregates.Store(true)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetAggregatesEnabled turns the optimized aggregate reads on or off. While
// off they fail with ErrAggregateUnavailable, which sends the engine down
// its fallback path.
func (s *Store) SetAggregatesEnabled(on bool) {
	s.aggregates.Store(on)
}

// SetClock replaces the time source used for write timestamps.
func (s *Store) SetClock(c clock.Clock) {
	s.clock = c
}

func (s *Store) stamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS user_streaks (
		user_id           TEXT PRIMARY KEY,
		streak_count      INTEGER NOT NULL DEFAULT 0,
		max_streak        INTEGER NOT NULL DEFAULT 0,
		last_active_date  TEXT,
		daily_goal        INTEGER NOT NULL DEFAULT 1 CHECK (daily_goal >= 1),
		updated_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS daily_activity (
		user_id          TEXT NOT NULL,
		date             TEXT NOT NULL,
		tasks_completed  INTEGER NOT NULL DEFAULT 0,
		goal_reached     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL CHECK (category IN ('tasks', 'streaks', 'goals', 'dedication')),
		required_value  INTEGER,
		reward          TEXT NOT NULL DEFAULT '',
		sort_order      INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS user_achievements (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		achievement_id  TEXT NOT NULL,
		unlocked_at     TEXT NOT NULL,
		UNIQUE (user_id, achievement_id)
	);

	CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('default_daily_goal', '1');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/streakr/streakr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "streakr", "streakr.db"), nil
}
