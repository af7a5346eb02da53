// Package enrich looks up external ratings for menu items.
//
// Lookups never fail loudly: any problem along the way is reported as "no
// rating" so a flaky rating site can't break a scrape.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/normalize"
	"mspro-labs/hopmetrics/internal/observability"
)

// Rater finds a rating for a beer. The bool is false when nothing was found.
type Rater interface {
	Lookup(ctx context.Context, name, brewery string) (*models.Rating, bool)
}

var reProfileLink = regexp.MustCompile(`/beer/profile/\d+/\d+/`)

// BeerAdvocate searches beeradvocate.com and reads the first matching profile.
type BeerAdvocate struct {
	client *resty.Client
	base   *url.URL
	log    zerolog.Logger
}

func NewBeerAdvocate(baseURL, userAgent string, timeout time.Duration) (*BeerAdvocate, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid rating base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	return &BeerAdvocate{
		client: client,
		base:   base,
		log:    observability.Component("beeradvocate"),
	}, nil
}

func (b *BeerAdvocate) Lookup(ctx context.Context, name, brewery string) (*models.Rating, bool) {
	term := strings.TrimSpace(name + " " + brewery)
	log := b.log.With().Str("query", term).Logger()

	search, err := b.get(ctx, "/search/", map[string]string{"q": term, "qt": "beer"})
	if err != nil {
		log.Warn().Err(err).Msg("rating search failed")
		return nil, false
	}

	href := ""
	search.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.AttrOr("href", "")
		if reProfileLink.MatchString(link) {
			href = link
			return false
		}
		return true
	})
	if href == "" {
		log.Debug().Msg("no rating match")
		return nil, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		log.Warn().Err(err).Str("href", href).Msg("bad profile link")
		return nil, false
	}
	profileURL := b.base.ResolveReference(ref).String()

	profile, err := b.get(ctx, profileURL, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", profileURL).Msg("rating profile fetch failed")
		return nil, false
	}

	rating := &models.Rating{URL: profileURL}
	if text := profile.Find("span.BAscore_norm").First().Text(); text != "" {
		rating.Score = normalize.Number(text)
	}
	rating.Style = strings.TrimSpace(profile.Find(`a[href*="/beer/styles/"]`).First().Text())
	return rating, true
}

func (b *BeerAdvocate) get(ctx context.Context, path string, query map[string]string) (*goquery.Document, error) {
	start := time.Now()
	req := b.client.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	res, err := req.Get(path)
	if err != nil {
		observability.ObserveExternal("beeradvocate", 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("beeradvocate", res.StatusCode(), time.Since(start))
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode())
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
}
