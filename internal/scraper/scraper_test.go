package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/models"
	"mspro-labs/hopmetrics/internal/normalize"
)

const beerMenusURL = "https://www.beermenus.com/places/1239-bavarian-lodge"

// Sample page simulating the BeerMenus list layout
const beerMenusHTML = `
<html>
<head>
  <title>Bavarian Lodge - Beer Menu - Lisle, IL | BeerMenus</title>
  <meta name="description" content="See what's on tap at Bavarian Lodge.">
</head>
<body>
  <h1>Bavarian Lodge</h1>
  <div class="place-summary">German restaurant with 40 taps.</div>
  <ul>
    <li class="list-item">
      <h3><a href="/beers/1">Hofbräu Original</a></h3>
      <p class="caption">Helles Lager · 5.1% · Munich, Germany</p>
      <span class="brewery">Hofbräu München</span>
      <span class="price">$8</span>
      <span class="volume">16 oz</span>
    </li>
    <li class="list-item">
      <h3><a href="/beers/2">Two Hearted Ale</a></h3>
      <p class="caption">American IPA · 7% · Bell's Brewery</p>
      <span class="serving">Draft</span>
      <span class="price">$7.50</span>
    </li>
    <li class="list-item">
      <h3>Guinness Extra Stout</h3>
      <p class="caption">Stout</p>
      <span class="abv">5.6</span>
      <span class="price">$6</span>
      <span class="volume">330ml bottle</span>
    </li>
    <li class="list-item"><span class="heading">Bottles &amp; Cans</span></li>
    <li class="list-item">
      <h3>Mystery Beer</h3>
    </li>
  </ul>
</body>
</html>
`

const genericHTML = `
<html>
<head><title>The Hop Shop</title></head>
<body>
  <h1>The Hop Shop Taproom</h1>
  <div class="menu-item">Pilsner Urquell 12oz 4.4% $6</div>
  <div class="menu-item">Founders Breakfast Stout 8.3% $9 draft</div>
  <div class="menu-item">7 Seas IPA 6.8% $7</div>
  <div class="menu-item">$5 specials all day</div>
</body>
</html>
`

// Menu rendered client-side: nothing for the selectors to find
const scriptMenuHTML = `
<html>
<head><title>Joe's Taproom</title></head>
<body><div id="app"></div><script>window.loadMenu()</script></body>
</html>
`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func defaultExtractor() *Extractor {
	cfg := config.Default()
	return NewExtractor(&cfg)
}

func f(v float64) *float64 { return &v }

func TestExtractKnownSite(t *testing.T) {
	page := defaultExtractor().Extract(parseDoc(t, beerMenusHTML), beerMenusURL)

	require.Equal(t, "beermenus", page.Site)
	require.Equal(t, "li.list-item", page.Strategy)

	expected := []models.MenuItem{
		{
			Name:     "Hofbräu Original",
			Brewery:  "Hofbräu München",
			Style:    "Helles Lager",
			ABV:      f(5.1),
			Price:    f(8),
			VolumeOz: f(16),
		},
		{
			Name:     "Two Hearted Ale",
			Brewery:  "Bell's Brewery",
			Style:    "American IPA",
			ABV:      f(7),
			Price:    f(7.5),
			VolumeOz: f(normalize.DraftVolumeOz),
		},
		{
			Name:     "Guinness Extra Stout",
			Style:    "Stout",
			ABV:      f(5.6),
			Price:    f(6),
			VolumeOz: f(normalize.MillilitersToOunces(330)),
		},
		{
			Name:     "Mystery Beer",
			VolumeOz: f(normalize.PackagedVolumeOz),
		},
	}
	if diff := cmp.Diff(expected, page.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, models.EstablishmentInfo{
		Name:        "Bavarian Lodge",
		Location:    "Lisle, IL",
		Description: "German restaurant with 40 taps.",
	}, page.Info)
}

func TestExtractGeneric(t *testing.T) {
	page := defaultExtractor().Extract(parseDoc(t, genericHTML), "https://hopshop.example.com/menu")

	require.Equal(t, GenericSite, page.Site)
	require.Equal(t, ".menu-item", page.Strategy)

	// "7 Seas IPA" and "$5 specials" have no leading alphabetic name and are dropped
	expected := []models.MenuItem{
		{Name: "Pilsner Urquell", VolumeOz: f(12), ABV: f(4.4), Price: f(6)},
		{Name: "Founders Breakfast Stout", VolumeOz: f(normalize.DraftVolumeOz), ABV: f(8.3), Price: f(9)},
	}
	if diff := cmp.Diff(expected, page.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	// title has no delimiter, so the heading names the place
	require.Equal(t, "The Hop Shop Taproom", page.Info.Name)
	require.Equal(t, "", page.Info.Location)
}

// Sibling spans are joined without whitespace by Selection.Text
const gluedSpansHTML = `
<html>
<head><title>Glue Works</title></head>
<body>
  <div class="beer-item"><span>Hazy IPA</span><span>16oz</span><span>6.5%</span><span>$8</span></div>
  <div class="beer-item"><span>Pils</span><span>330ml</span><span>5%</span><span>$4</span></div>
  <div class="beer-item"><span>Pale Ale</span><span>5%</span><span>$7</span><span>Draft</span></div>
</body>
</html>
`

func TestExtractGenericGluedSpans(t *testing.T) {
	page := defaultExtractor().Extract(parseDoc(t, gluedSpansHTML), "https://gluworks.example.com/menu")

	require.Equal(t, ".beer-item", page.Strategy)

	expected := []models.MenuItem{
		{Name: "Hazy IPA", VolumeOz: f(16), ABV: f(6.5), Price: f(8)},
		{Name: "Pils", VolumeOz: f(normalize.MillilitersToOunces(330)), ABV: f(5), Price: f(4)},
		{Name: "Pale Ale", VolumeOz: f(normalize.DraftVolumeOz), ABV: f(5), Price: f(7)},
	}
	if diff := cmp.Diff(expected, page.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractNoMatch(t *testing.T) {
	page := defaultExtractor().Extract(parseDoc(t, scriptMenuHTML), beerMenusURL)

	require.Empty(t, page.Items)
	require.Equal(t, "", page.Strategy)
	require.Equal(t, models.EstablishmentInfo{Name: "Joe's Taproom"}, page.Info)
}

func TestExtractIsIdempotent(t *testing.T) {
	e := defaultExtractor()
	doc := parseDoc(t, beerMenusHTML)

	once := e.Extract(doc, beerMenusURL)
	twice := e.Extract(doc, beerMenusURL)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
}

func TestChainFirstNonEmptyWins(t *testing.T) {
	doc := parseDoc(t, "<html><body></body></html>")
	var calls []string
	strategy := func(name string, items ...string) Strategy {
		return Strategy{
			Name: name,
			Extract: func(*goquery.Document) []models.MenuItem {
				calls = append(calls, name)
				var out []models.MenuItem
				for _, n := range items {
					out = append(out, models.MenuItem{Name: n})
				}
				return out
			},
		}
	}

	chain := Chain{
		strategy("empty"),
		strategy("a", "A1", "A2"),
		strategy("b", "B1"),
	}
	items, name := chain.Run(doc)

	require.Equal(t, "a", name)
	require.Equal(t, []models.MenuItem{{Name: "A1"}, {Name: "A2"}}, items)
	require.Equal(t, []string{"empty", "a"}, calls)
}

func TestKnownSitePriorityOrder(t *testing.T) {
	// both div.beer-item and li.list-item would match; the first configured wins
	const html = `
<html><body>
  <div class="beer-item"><h3>From Beer Item</h3></div>
  <ul><li class="list-item"><h3>From List Item</h3></li></ul>
</body></html>`

	page := defaultExtractor().Extract(parseDoc(t, html), beerMenusURL)
	require.Equal(t, "div.beer-item", page.Strategy)
	require.Len(t, page.Items, 1)
	require.Equal(t, "From Beer Item", page.Items[0].Name)
}

func TestKnownSiteSkipsStrategyWithoutNames(t *testing.T) {
	// div.beer-item matches but yields no named candidates, so the chain moves on
	const html = `
<html><body>
  <div class="beer-item"><span>no name here</span></div>
  <table><tr class="beer"><td class="beer-name">Named</td><td class="price">$5</td></tr></table>
</body></html>`

	page := defaultExtractor().Extract(parseDoc(t, html), beerMenusURL)
	require.Equal(t, "tr.beer", page.Strategy)
	require.Equal(t, []models.MenuItem{{Name: "Named", Price: f(5), VolumeOz: f(12)}}, page.Items)
}

func TestApplyCaption(t *testing.T) {
	testCases := []struct {
		caption  string
		start    models.MenuItem
		expected models.MenuItem
	}{
		{
			caption:  "Pale Ale · 5.6% · Chico, CA · extra",
			expected: models.MenuItem{Style: "Pale Ale", ABV: f(5.6), Brewery: "Chico, CA"},
		},
		{
			caption:  "Porter · n/a · Denver",
			expected: models.MenuItem{Style: "Porter", Brewery: "Denver"},
		},
		{
			caption:  "Saison · 6%",
			start:    models.MenuItem{Style: "Farmhouse", ABV: f(6.2)},
			expected: models.MenuItem{Style: "Farmhouse", ABV: f(6.2)},
		},
	}

	for _, tc := range testCases {
		item := tc.start
		applyCaption(&item, tc.caption, "·")
		if diff := cmp.Diff(tc.expected, item); diff != "" {
			t.Errorf("applyCaption(%q) (-want +got):\n%s", tc.caption, diff)
		}
	}
}

func TestSplitTitle(t *testing.T) {
	brands := []string{"BeerMenus"}
	testCases := []struct {
		title    string
		name     string
		location string
		ok       bool
	}{
		{"Bavarian Lodge - Beer Menu - Lisle, IL | BeerMenus", "Bavarian Lodge", "Lisle, IL", true},
		{"Half Acre — Menu — Chicago", "Half Acre", "Chicago", true},
		{"Tap Room - Beer Menu | BeerMenus", "Tap Room", "", true},
		{"Half Acre | Tap List", "", "", false},
		{"Beer Menu - Lisle", "", "", false},
		{"Solo Title", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range testCases {
		name, location, ok := splitTitle(tc.title, brands)
		require.Equal(t, tc.ok, ok, "splitTitle(%q)", tc.title)
		require.Equal(t, tc.name, name, "splitTitle(%q)", tc.title)
		require.Equal(t, tc.location, location, "splitTitle(%q)", tc.title)
	}
}

func TestExtractInfoFallbacks(t *testing.T) {
	meta := config.Default().Metadata

	info := extractInfo(parseDoc(t, `<html><head>
<meta property="og:description" content="Neighborhood bar.">
</head><body></body></html>`), "https://www.smallbar.example.com/beers", meta)
	require.Equal(t, models.EstablishmentInfo{
		Name:        "smallbar.example.com",
		Description: "Neighborhood bar.",
	}, info)

	info = extractInfo(parseDoc(t, beerMenusHTML), beerMenusURL, config.Metadata{})
	// without summary selectors the meta description is used
	require.Equal(t, "See what's on tap at Bavarian Lodge.", info.Description)
}

func TestHostName(t *testing.T) {
	require.Equal(t, "beermenus.com", HostName("https://www.BeerMenus.com/places/1"))
	require.Equal(t, "not a url", HostName("not a url"))
}

func TestSiteMatching(t *testing.T) {
	e := defaultExtractor()

	site, _ := e.Strategies("https://beermenus.com/places/1")
	require.Equal(t, "beermenus", site)
	site, _ = e.Strategies("https://m.beermenus.com/places/1")
	require.Equal(t, "beermenus", site)
	site, _ = e.Strategies("https://notbeermenus.com/places/1")
	require.Equal(t, GenericSite, site)
}

type stubFetcher struct {
	body []byte
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	return s.body, s.err
}

func TestScrapeFetchFailure(t *testing.T) {
	cfg := config.Default()
	s := New(&cfg, stubFetcher{err: errors.New("connection reset")})

	page, err := s.Scrape(context.Background(), beerMenusURL)
	require.Error(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, "beermenus.com", page.Info.Name)
}

func TestScrapeOverHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/places/1" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") != "hopmetrics-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(beerMenusHTML))
	}))
	defer ts.Close()

	cfg := config.Default()
	// treat the test server as a BeerMenus host
	cfg.Sites[0].Hosts = append(cfg.Sites[0].Hosts, "127.0.0.1")
	fetcher := NewHTTPFetcher(HTTPOptions{UserAgent: "hopmetrics-test", Timeout: 2 * time.Second})
	s := New(&cfg, fetcher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	page, err := s.Scrape(ctx, ts.URL+"/places/1")
	require.NoError(t, err)
	require.Equal(t, "beermenus", page.Site)
	require.Len(t, page.Items, 4)

	_, err = s.Scrape(ctx, ts.URL+"/missing")
	require.Error(t, err)
}
