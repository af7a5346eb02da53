package scraper

import (
	"context"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/observability"
)

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewFetcher builds the fetcher selected by cfg.Fetch.Mode.
func NewFetcher(cfg *config.SiteConfig) (Fetcher, error) {
	switch cfg.Fetch.Mode {
	case "", "http":
		return NewHTTPFetcher(HTTPOptions{
			UserAgent:        cfg.UserAgent,
			Timeout:          cfg.Fetch.Timeout,
			CloudflareBypass: true,
		}), nil
	case "browser":
		return NewBrowserFetcher(cfg.Fetch.Timeout, cfg.Fetch.WaitSelector), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", cfg.Fetch.Mode)
	}
}

type HTTPOptions struct {
	UserAgent        string
	Timeout          time.Duration
	CloudflareBypass bool
}

// HTTPFetcher fetches static HTML. It does not run scripts.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client.SetTimeout(opts.Timeout)
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		observability.ObserveExternal("menu", 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("menu", res.StatusCode(), time.Since(start))
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode())
	}
	return res.Body(), nil
}
