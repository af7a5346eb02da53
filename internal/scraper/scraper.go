package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/observability"
)

// GenericSite names the fallback strategy list used for unknown hosts.
const GenericSite = "generic"

// Page is everything extracted from one menu document.
type Page struct {
	Items    []models.MenuItem
	Info     models.EstablishmentInfo
	Site     string
	Strategy string // empty when nothing matched
}

// Extractor holds the strategy configuration. It keeps no state between documents.
type Extractor struct {
	sites   []config.Site
	generic config.Generic
	meta    config.Metadata
}

func NewExtractor(cfg *config.SiteConfig) *Extractor {
	return &Extractor{
		sites:   cfg.Sites,
		generic: cfg.Generic,
		meta:    cfg.Metadata,
	}
}

// Strategies picks the strategy chain for a source URL.
func (e *Extractor) Strategies(rawURL string) (string, Chain) {
	if site := e.siteFor(rawURL); site != nil {
		p := siteParser{fields: site.Fields, delimiter: site.CaptionDelimiter}
		chain := make(Chain, 0, len(site.ItemSelectors))
		for _, sel := range site.ItemSelectors {
			chain = append(chain, selectorStrategy(sel, p.parse))
		}
		return site.Name, chain
	}

	chain := make(Chain, 0, len(e.generic.ItemSelectors))
	for _, sel := range e.generic.ItemSelectors {
		chain = append(chain, selectorStrategy(sel, parseGeneric))
	}
	return GenericSite, chain
}

// Extract runs the metadata and item chains over a parsed document.
// A document with no recognisable menu yields no items, not an error.
func (e *Extractor) Extract(doc *goquery.Document, rawURL string) Page {
	site, chain := e.Strategies(rawURL)
	items, strategy := chain.Run(doc)
	return Page{
		Items:    items,
		Info:     extractInfo(doc, rawURL, e.meta),
		Site:     site,
		Strategy: strategy,
	}
}

func (e *Extractor) siteFor(rawURL string) *config.Site {
	host := HostName(rawURL)
	for i := range e.sites {
		for _, h := range e.sites[i].Hosts {
			h = strings.ToLower(h)
			if host == h || strings.HasSuffix(host, "."+h) {
				return &e.sites[i]
			}
		}
	}
	return nil
}

// Scraper fetches a menu page and extracts it.
type Scraper struct {
	fetcher   Fetcher
	extractor *Extractor
	log       zerolog.Logger
}

func New(cfg *config.SiteConfig, fetcher Fetcher) *Scraper {
	return &Scraper{
		fetcher:   fetcher,
		extractor: NewExtractor(cfg),
		log:       observability.Component("scraper"),
	}
}

// Scrape returns an error only when the page could not be fetched or parsed;
// the returned Page still carries best-effort metadata in that case.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (Page, error) {
	fallback := Page{Info: models.EstablishmentInfo{Name: HostName(rawURL)}}

	s.log.Info().Str("url", rawURL).Msg("fetching menu page")
	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return fallback, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fallback, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := s.extractor.Extract(doc, rawURL)
	if page.Strategy == "" {
		s.log.Warn().Str("url", rawURL).Str("site", page.Site).
			Msg("no strategy matched; menu is probably rendered by script")
	} else {
		s.log.Info().Str("url", rawURL).Str("site", page.Site).Str("strategy", page.Strategy).
			Int("items", len(page.Items)).Msg("menu extracted")
		observability.ObserveStrategy(page.Site, page.Strategy)
	}
	return page, nil
}
