package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/value"
)

// Reconcile makes the stored state of one establishment match a fresh scrape:
// the establishment row is upserted by URL and its beers are replaced wholesale.
// Everything happens in one transaction, so a failure leaves the previous state
// untouched. It returns the number of beers inserted.
func (s *Store) Reconcile(ctx context.Context, est models.Establishment, items []models.MenuItem) (int, error) {
	if est.URL == "" {
		return 0, fmt.Errorf("establishment url is required")
	}

	now := s.now()
	if est.LastScraped.IsZero() {
		est.LastScraped = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	id, err := upsertEstablishment(ctx, tx, est)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert establishment %s: %w", est.URL, err)
	}

	if err := deleteBeers(ctx, tx, id); err != nil {
		return 0, fmt.Errorf("failed to clear beers for %s: %w", est.URL, err)
	}

	n, err := insertBeers(ctx, tx, id, items, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert beers for %s: %w", est.URL, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func upsertEstablishment(ctx context.Context, tx *sql.Tx, est models.Establishment) (int64, error) {
	upsertSQL := `
	INSERT INTO establishments (name, url, location, description, last_scraped)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
	  name = excluded.name,
	  location = excluded.location,
	  description = excluded.description,
	  last_scraped = excluded.last_scraped;
	`
	_, err := tx.ExecContext(ctx, upsertSQL,
		est.Name,
		est.URL,
		nullString(est.Location),
		nullString(est.Description),
		est.LastScraped,
	)
	if err != nil {
		return 0, err
	}

	// LastInsertId is unreliable on the update path, look the row up instead.
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM establishments WHERE url = ?`, est.URL).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func deleteBeers(ctx context.Context, tx *sql.Tx, establishmentID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM beers WHERE establishment_id = ?`, establishmentID)
	return err
}

func insertBeers(ctx context.Context, tx *sql.Tx, establishmentID int64, items []models.MenuItem, scrapedAt time.Time) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	insertSQL := `
	INSERT INTO beers (
	  establishment_id, name, brewery, style, volume_oz, abv, price, value_score,
	  ba_rating, ba_style, ba_url, scraped_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, item := range items {
		var rating models.Rating
		if item.Rating != nil {
			rating = *item.Rating
		}
		_, err := stmt.ExecContext(ctx,
			establishmentID,
			item.Name,
			nullString(item.Brewery),
			nullString(item.Style),
			nullFloat(item.VolumeOz),
			nullFloat(item.ABV),
			nullFloat(item.Price),
			value.Score(item.VolumeOz, item.ABV, item.Price),
			nullFloat(rating.Score),
			nullString(rating.Style),
			nullString(rating.URL),
			scrapedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("beer %q: %w", item.Name, err)
		}
		count++
	}
	return count, nil
}
