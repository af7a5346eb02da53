package db

import (
	"context"
	"database/sql"
	"fmt"

	"mspro-labs/hopmetrics/internal/models"
)

// ListEstablishments returns every tracked establishment with its current beer
// count, most recently scraped first.
func (s *Store) ListEstablishments(ctx context.Context) ([]models.EstablishmentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.name, e.url, COALESCE(e.location, ''), e.last_scraped, COUNT(b.id)
		FROM establishments e
		LEFT JOIN beers b ON b.establishment_id = e.id
		GROUP BY e.id
		ORDER BY e.last_scraped DESC, e.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EstablishmentSummary
	for rows.Next() {
		var e models.EstablishmentSummary
		var last sql.NullTime
		if err := rows.Scan(&e.Name, &e.URL, &e.Location, &last, &e.BeerCount); err != nil {
			return nil, fmt.Errorf("failed to read establishment: %w", err)
		}
		e.LastScraped = last.Time
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEstablishment looks an establishment up by URL. It returns sql.ErrNoRows
// when the URL has never been scraped.
func (s *Store) GetEstablishment(ctx context.Context, url string) (models.Establishment, error) {
	var e models.Establishment
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, url, COALESCE(location, ''), COALESCE(description, ''), last_scraped
		FROM establishments WHERE url = ?
	`, url).Scan(&e.ID, &e.Name, &e.URL, &e.Location, &e.Description, &last)
	if err != nil {
		return models.Establishment{}, err
	}
	e.LastScraped = last.Time
	return e, nil
}

// Beers returns the stored beers of one establishment in insertion order.
func (s *Store) Beers(ctx context.Context, establishmentURL string) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.name, COALESCE(b.brewery, ''), COALESCE(b.style, ''),
		       b.volume_oz, b.abv, b.price, b.value_score,
		       b.ba_rating, COALESCE(b.ba_style, ''), COALESCE(b.ba_url, '')
		FROM beers b
		JOIN establishments e ON e.id = b.establishment_id
		WHERE e.url = ?
		ORDER BY b.id
	`, establishmentURL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		var volume, abv, price, rating sql.NullFloat64
		var ratingStyle, ratingURL string
		if err := rows.Scan(&item.Name, &item.Brewery, &item.Style,
			&volume, &abv, &price, &item.ValueScore,
			&rating, &ratingStyle, &ratingURL); err != nil {
			return nil, fmt.Errorf("failed to read beer: %w", err)
		}
		item.VolumeOz = floatPtr(volume)
		item.ABV = floatPtr(abv)
		item.Price = floatPtr(price)
		if rating.Valid || ratingStyle != "" || ratingURL != "" {
			item.Rating = &models.Rating{Score: floatPtr(rating), Style: ratingStyle, URL: ratingURL}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// RankedBeers returns beers whose value inputs are all known, best value first.
// A limit of zero or less returns everything.
func (s *Store) RankedBeers(ctx context.Context, limit int) ([]models.RankedBeer, error) {
	query := `
		SELECT b.name, e.name, b.volume_oz, b.abv, b.price, b.value_score,
		       COALESCE(b.brewery, ''), COALESCE(b.style, ''),
		       b.ba_rating, COALESCE(b.ba_style, ''),
		       e.url, COALESCE(e.location, '')
		FROM beers b
		JOIN establishments e ON e.id = b.establishment_id
		WHERE b.volume_oz IS NOT NULL AND b.abv IS NOT NULL AND b.price IS NOT NULL
		ORDER BY b.value_score DESC, b.id
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RankedBeer
	for rows.Next() {
		var rb models.RankedBeer
		var rating sql.NullFloat64
		if err := rows.Scan(&rb.Name, &rb.Establishment, &rb.VolumeOz, &rb.ABV, &rb.Price, &rb.ValueScore,
			&rb.Brewery, &rb.Style, &rating, &rb.RatingStyle,
			&rb.EstablishmentURL, &rb.Location); err != nil {
			return nil, fmt.Errorf("failed to read ranked beer: %w", err)
		}
		rb.Rating = floatPtr(rating)
		out = append(out, rb)
	}
	return out, rows.Err()
}
