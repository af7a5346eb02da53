package models

import "time"

// Establishment is a tracked venue, keyed by the URL its menu is scraped from.
type Establishment struct {
	ID          int64
	URL         string
	Name        string
	Location    string
	Description string
	LastScraped time.Time
}

// EstablishmentInfo is the best-effort metadata pulled from a menu page.
type EstablishmentInfo struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// MenuItem is a single beer recovered from a menu page.
// Nil numeric fields are unknown, never zero.
type MenuItem struct {
	Name     string
	Brewery  string
	Style    string
	VolumeOz *float64
	ABV      *float64
	Price    *float64

	// ValueScore is derived from VolumeOz, ABV and Price when the item is stored.
	ValueScore float64

	Rating *Rating
}

// Rating is the result of an external rating lookup.
type Rating struct {
	Score *float64 `json:"score"`
	Style string   `json:"style"`
	URL   string   `json:"url"`
}

// RankedBeer is a stored beer with every value input known, joined with its venue.
type RankedBeer struct {
	Name             string   `json:"name"`
	Establishment    string   `json:"establishment"`
	VolumeOz         float64  `json:"volume_oz"`
	ABV              float64  `json:"abv"`
	Price            float64  `json:"price"`
	ValueScore       float64  `json:"value_score"`
	Brewery          string   `json:"brewery"`
	Style            string   `json:"style"`
	Rating           *float64 `json:"ba_rating"`
	RatingStyle      string   `json:"ba_style"`
	EstablishmentURL string   `json:"establishment_url"`
	Location         string   `json:"location"`
}

// EstablishmentSummary is an establishment row with its current beer count.
type EstablishmentSummary struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Location    string    `json:"location"`
	LastScraped time.Time `json:"last_scraped"`
	BeerCount   int       `json:"beer_count"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
