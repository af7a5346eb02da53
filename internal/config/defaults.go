package config

import "time"

const DefaultCaptionDelimiter = "·"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Default returns the built-in configuration. BeerMenus has reshuffled its
// markup several times, so its item selectors go from the current layout to
// the oldest one still seen in the wild.
func Default() SiteConfig {
	return SiteConfig{
		UserAgent: defaultUserAgent,
		Fetch: Fetch{
			Mode:    "http",
			Timeout: 30 * time.Second,
		},
		Sites: []Site{
			{
				Name:  "beermenus",
				Hosts: []string{"beermenus.com"},
				ItemSelectors: []string{
					"div.beer-item",
					"tr.beer",
					"li.list-item",
					`div[class*="beer"]`,
					`div[class*="menu-item"]`,
					"div[data-beer]",
					".logged-beer",
					".beer-listing",
				},
				Fields: Fields{
					Name:    []string{"h3", "a.beer-name", "td.beer-name"},
					Brewery: []string{"span.brewery", "td.brewery"},
					Style:   []string{"span.style", "td.style"},
					ABV:     []string{"span.abv", "td.abv"},
					Price:   []string{"span.price", "td.price"},
					Volume:  []string{"span.volume", "td.volume"},
					Caption: []string{"p.caption", ".caption"},
				},
				CaptionDelimiter: DefaultCaptionDelimiter,
			},
		},
		Generic: Generic{
			ItemSelectors: []string{
				".beer-item",
				".menu-item",
				".beer",
				".drink-item",
				`[class*="beer"]`,
				`[class*="menu"]`,
				`[class*="drink"]`,
			},
		},
		Metadata: Metadata{
			Summary:       []string{".place-summary", ".summary", `[itemprop="description"]`},
			BrandSuffixes: []string{"BeerMenus"},
		},
		Enrichment: Enrichment{
			BaseURL:     "https://www.beeradvocate.com",
			MinInterval: time.Second,
			Timeout:     15 * time.Second,
			CacheTTL:    24 * time.Hour,
		},
	}
}
