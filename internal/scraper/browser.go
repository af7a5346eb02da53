package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"

	"mspro-labs/hopmetrics/internal/observability"
)

// BrowserFetcher renders the page in headless Chromium so menus built by
// client-side script are present in the returned HTML.
type BrowserFetcher struct {
	timeout      time.Duration
	waitSelector string
	log          zerolog.Logger
}

func NewBrowserFetcher(timeout time.Duration, waitSelector string) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &BrowserFetcher{
		timeout:      timeout,
		waitSelector: waitSelector,
		log:          observability.Component("browser"),
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	f.log.Debug().Msg("launching headless browser")
	browser, err := launchBrowser()
	if err != nil {
		observability.ObserveExternal("menu-browser", 0, time.Since(start))
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.MustClose()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, err
	}

	var html string
	err = rod.Try(func() {
		p := page.Context(ctx).Timeout(f.timeout)
		p.MustNavigate(url)
		p.MustWaitStable()

		// Don't fail the fetch if the menu container never shows up
		if sel := f.waitSelector; sel != "" {
			f.log.Debug().Str("selector", sel).Msg("waiting for menu")
			if err := rod.Try(func() {
				p.Timeout(10 * time.Second).MustElement(sel)
			}); err != nil {
				f.log.Warn().Err(err).Str("selector", sel).Msg("menu selector not found")
			}
		}
		html = p.MustHTML()
	})
	if err != nil {
		observability.ObserveExternal("menu-browser", 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("menu-browser", 200, time.Since(start))
	return []byte(html), nil
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}
