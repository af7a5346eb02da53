package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only
)

// Store is the persistence layer for establishments, their beers and the
// search query cache.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Connect opens the SQLite database at dbPath and ensures the schema exists.
// WAL mode and a busy timeout keep concurrent scrapes from tripping over
// "database is locked".
func Connect(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	establishmentsTable := `
	CREATE TABLE IF NOT EXISTS establishments (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  name TEXT NOT NULL,
	  url TEXT UNIQUE NOT NULL,
	  location TEXT,
	  description TEXT,
	  last_scraped TIMESTAMP
	);
	`
	if _, err := db.Exec(establishmentsTable); err != nil {
		return err
	}

	beersTable := `
	CREATE TABLE IF NOT EXISTS beers (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  establishment_id INTEGER NOT NULL,
	  name TEXT NOT NULL,
	  brewery TEXT,
	  style TEXT,
	  volume_oz REAL,
	  abv REAL,
	  price REAL,
	  value_score REAL NOT NULL DEFAULT 0,
	  ba_rating REAL,
	  ba_style TEXT,
	  ba_url TEXT,
	  scraped_at TIMESTAMP,
	  embedding BLOB,
	  FOREIGN KEY (establishment_id) REFERENCES establishments (id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_beers_establishment ON beers(establishment_id);
	CREATE INDEX IF NOT EXISTS idx_beers_value ON beers(value_score DESC);
	`
	if _, err := db.Exec(beersTable); err != nil {
		return err
	}

	// Search History Table (for local caching of AI queries)
	historyTable := `
	CREATE TABLE IF NOT EXISTS search_history (
		query_text TEXT PRIMARY KEY,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
