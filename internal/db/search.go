package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// --- Embedding & Search Helpers ---

// EmbeddingTarget is a stored beer without a vector and the text to embed for it.
type EmbeddingTarget struct {
	ID   int64
	Text string
}

// UnembeddedBeers returns every stored beer that has no embedding yet.
func (s *Store) UnembeddedBeers(ctx context.Context) ([]EmbeddingTarget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.name, COALESCE(b.brewery, ''), COALESCE(b.style, ''), COALESCE(b.ba_style, ''), e.name
		FROM beers b
		JOIN establishments e ON e.id = b.establishment_id
		WHERE b.embedding IS NULL
		ORDER BY b.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmbeddingTarget
	for rows.Next() {
		var t EmbeddingTarget
		var name, brewery, style, ratingStyle, venue string
		if err := rows.Scan(&t.ID, &name, &brewery, &style, &ratingStyle, &venue); err != nil {
			return nil, err
		}
		if style == "" {
			style = ratingStyle
		}
		t.Text = EmbeddingText(name, brewery, style, venue)
		out = append(out, t)
	}
	return out, rows.Err()
}

// EmbeddingText is the document embedded for a beer.
func EmbeddingText(name, brewery, style, venue string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Beer: %s", name)
	if brewery != "" {
		fmt.Fprintf(&b, "\nBrewery: %s", brewery)
	}
	if style != "" {
		fmt.Fprintf(&b, "\nStyle: %s", style)
	}
	if venue != "" {
		fmt.Fprintf(&b, "\nServed at: %s", venue)
	}
	return b.String()
}

// UpdateEmbedding saves the generated vector blob for a beer.
func (s *Store) UpdateEmbedding(ctx context.Context, beerID int64, embedding []byte) error {
	_, err := s.db.ExecContext(ctx, "UPDATE beers SET embedding = ? WHERE id = ?", embedding, beerID)
	return err
}

// BeerVector is a beer with its stored embedding, loaded for search.
type BeerVector struct {
	ID            int64
	Name          string
	Brewery       string
	Style         string
	Establishment string
	ValueScore    float64
	Vector        []byte
}

// BeerVectors returns all beers that have embeddings.
func (s *Store) BeerVectors(ctx context.Context) ([]BeerVector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.name, COALESCE(b.brewery, ''), COALESCE(b.style, b.ba_style, ''), e.name, b.value_score, b.embedding
		FROM beers b
		JOIN establishments e ON e.id = b.establishment_id
		WHERE b.embedding IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BeerVector
	for rows.Next() {
		var bv BeerVector
		if err := rows.Scan(&bv.ID, &bv.Name, &bv.Brewery, &bv.Style, &bv.Establishment, &bv.ValueScore, &bv.Vector); err != nil {
			return nil, err
		}
		out = append(out, bv)
	}
	return out, rows.Err()
}

// CachedQuery tries to find a previously searched query vector. It returns
// sql.ErrNoRows on a miss.
func (s *Store) CachedQuery(ctx context.Context, text string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT embedding FROM search_history WHERE query_text = ?", text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery saves a new query and its vector to the history table.
func (s *Store) SaveCachedQuery(ctx context.Context, text string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO search_history (query_text, embedding, created_at) VALUES (?, ?, ?)",
		text, blob, s.now())
	return err
}

// --- History Management for search ---

type HistoryEntry struct {
	QueryText string
	CreatedAt time.Time
}

// ListSearchHistory returns all cached queries, newest first.
func (s *Store) ListSearchHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT query_text, created_at FROM search_history ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var created sql.NullTime
		if err := rows.Scan(&e.QueryText, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = created.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearSearchHistory removes a specific query from the cache.
func (s *Store) ClearSearchHistory(ctx context.Context, queryText string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM search_history WHERE query_text = ?", queryText)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllSearchHistory wipes the entire cache.
func (s *Store) ClearAllSearchHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM search_history")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
