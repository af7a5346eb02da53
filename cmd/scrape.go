package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/db"
	"mspro-labs/hopmetrics/internal/embedder"
	"mspro-labs/hopmetrics/internal/enrich"
	"mspro-labs/hopmetrics/internal/pipeline"
	"mspro-labs/hopmetrics/internal/scraper"
)

var (
	scrapeName     string
	scrapeLocation string
	scrapeFile     string
	scrapeWorkers  int
	noEnrich       bool
	noEmbed        bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Scrape a menu page and replace its stored beers",
	Long: `Fetches a menu page, extracts every beer it can recognize, and replaces the
establishment's stored menu with the result. Beers with a known brewery are
looked up on BeerAdvocate unless --no-enrich is set.

Scrape many establishments at once with --file, a YAML list of
url/name/location entries. When GEMINI_API_KEY is set, new beers are embedded
for semantic search afterwards.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if scrapeFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		runScrape(cmd.Context(), args)
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeName, "name", "", "establishment name (overrides the page title)")
	scrapeCmd.Flags().StringVar(&scrapeLocation, "location", "", "establishment location (overrides the page title)")
	scrapeCmd.Flags().StringVarP(&scrapeFile, "file", "f", "", "YAML file listing establishments to scrape")
	scrapeCmd.Flags().IntVarP(&scrapeWorkers, "workers", "w", 4, "establishments scraped in parallel with --file")
	scrapeCmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "skip BeerAdvocate rating lookups")
	scrapeCmd.Flags().BoolVar(&noEmbed, "no-embed", false, "skip embedding new beers")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(ctx context.Context, args []string) {
	siteCfg := loadSiteConfig()

	store := openStore()
	defer store.Close()

	fetcher, err := scraper.NewFetcher(siteCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid fetch configuration")
	}

	var rater enrich.Rater
	if !noEnrich && !siteCfg.Enrichment.Disabled {
		r, closeRater := newRater(ctx, siteCfg)
		defer closeRater()
		rater = r
	}

	p := pipeline.New(scraper.New(siteCfg, fetcher), rater, store)

	if scrapeFile != "" {
		targets, err := config.LoadTargets(scrapeFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load targets")
		}
		reqs := make([]pipeline.Request, 0, len(targets))
		for _, t := range targets {
			reqs = append(reqs, pipeline.Request{URL: t.URL, Name: t.Name, Location: t.Location})
		}

		results, err := p.ScrapeAll(ctx, reqs, scrapeWorkers)
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("✗ %s: %v\n", r.Request.URL, r.Err)
				continue
			}
			printResult(r.Request, r.Result)
		}
		if err != nil {
			log.Error().Err(err).Msg("some establishments could not be saved")
		}
	} else {
		req := pipeline.Request{URL: args[0], Name: scrapeName, Location: scrapeLocation}
		res, err := p.Scrape(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("scrape failed")
		}
		printResult(req, res)
	}

	if !noEmbed && ai.Available() {
		autoEmbed(ctx, store)
	}
}

func printResult(req pipeline.Request, res pipeline.Result) {
	switch res.Outcome {
	case pipeline.OutcomeFetchFailed:
		fmt.Printf("⚠️  Could not fetch %s. The stored menu was left unchanged.\n", req.URL)
	case pipeline.OutcomeNoMatch:
		fmt.Printf("⚠️  No menu items recognized on %s (%s).\n", res.Info.Name, req.URL)
		fmt.Println("   The menu may be rendered by JavaScript; try fetch.mode: browser in the site config.")
	default:
		fmt.Printf("✓ %s: saved %d beers (matched %s)\n", res.Info.Name, res.Count, res.Strategy)
	}
}

// autoEmbed never fails the scrape.
func autoEmbed(ctx context.Context, store *db.Store) {
	log.Info().Msg("starting automatic embedding")
	client, err := ai.NewClient(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not initialize AI for auto-embedding")
		return
	}
	defer client.Close()

	if _, err := embedder.Run(ctx, store, client, embedder.DefaultInterval); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("auto-embedding failed")
	}
}
