// Package pipeline runs one scrape end to end: fetch, extract, enrich and
// persist.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"mspro-labs/hopmetrics/internal/enrich"
	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/observability"
	"mspro-labs/hopmetrics/internal/scraper"
)

// Outcomes of a single scrape.
const (
	OutcomeItems       = "items"
	OutcomeNoMatch     = "no_match"
	// OutcomeFetchFailed writes nothing: a URL never scraped before gets no
	// establishment row, and an existing row keeps its name and last_scraped.
	OutcomeFetchFailed = "fetch_failed"
)

// Request names a page to scrape. Name and Location, when set, take
// precedence over whatever the page says about itself.
type Request struct {
	URL      string
	Name     string
	Location string
}

type Result struct {
	Count    int
	Info     models.EstablishmentInfo
	Outcome  string
	Strategy string
}

// Reconciler persists one establishment's fresh item set.
type Reconciler interface {
	Reconcile(ctx context.Context, est models.Establishment, items []models.MenuItem) (int, error)
}

type Pipeline struct {
	scraper *scraper.Scraper
	rater   enrich.Rater
	store   Reconciler
	log     zerolog.Logger
}

// New wires a pipeline. A nil rater disables enrichment.
func New(s *scraper.Scraper, rater enrich.Rater, store Reconciler) *Pipeline {
	return &Pipeline{
		scraper: s,
		rater:   rater,
		store:   store,
		log:     observability.Component("pipeline"),
	}
}

// Scrape processes one establishment. Soft failures are reported through
// Result.Outcome; only a storage failure is returned as an error. When the
// page cannot be fetched nothing is written, so the previously stored menu
// survives a transient outage.
func (p *Pipeline) Scrape(ctx context.Context, req Request) (Result, error) {
	log := p.log.With().Str("url", req.URL).Logger()

	page, err := p.scraper.Scrape(ctx, req.URL)
	if err != nil {
		log.Warn().Err(err).Msg("menu page unavailable, keeping stored menu")
		observability.ObserveScrape(OutcomeFetchFailed, 0)
		return Result{Info: applyOverrides(req, page.Info), Outcome: OutcomeFetchFailed}, nil
	}

	items := page.Items
	if p.rater != nil {
		p.enrich(ctx, items)
	}

	info := applyOverrides(req, page.Info)
	est := models.Establishment{
		URL:         req.URL,
		Name:        info.Name,
		Location:    info.Location,
		Description: info.Description,
	}

	n, err := p.store.Reconcile(ctx, est, items)
	if err != nil {
		observability.ObserveScrape("error", 0)
		return Result{Info: info, Outcome: outcome(page), Strategy: page.Strategy},
			fmt.Errorf("failed to save %s: %w", req.URL, err)
	}

	res := Result{Count: n, Info: info, Outcome: outcome(page), Strategy: page.Strategy}
	observability.ObserveScrape(res.Outcome, n)
	log.Info().Str("establishment", info.Name).Str("outcome", res.Outcome).Int("saved", n).Msg("scrape complete")
	return res, nil
}

// enrich fills in ratings in place. Beers without a brewery are skipped;
// a name alone is too ambiguous to search on.
func (p *Pipeline) enrich(ctx context.Context, items []models.MenuItem) {
	for i := range items {
		if items[i].Brewery == "" {
			continue
		}
		if rating, ok := p.rater.Lookup(ctx, items[i].Name, items[i].Brewery); ok {
			items[i].Rating = rating
			if items[i].Style == "" {
				items[i].Style = rating.Style
			}
		}
	}
}

func applyOverrides(req Request, info models.EstablishmentInfo) models.EstablishmentInfo {
	if req.Name != "" {
		info.Name = req.Name
	}
	if req.Location != "" {
		info.Location = req.Location
	}
	if info.Name == "" {
		info.Name = scraper.HostName(req.URL)
	}
	return info
}

func outcome(page scraper.Page) string {
	if page.Strategy == "" {
		return OutcomeNoMatch
	}
	return OutcomeItems
}
