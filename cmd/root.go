package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/hopmetrics/internal/config"
	"mspro-labs/hopmetrics/internal/db"
	"mspro-labs/hopmetrics/internal/enrich"
	"mspro-labs/hopmetrics/internal/observability"
)

var appCfg config.AppConfig

var rootCmd = &cobra.Command{
	Use:   "hopmetrics",
	Short: "Track beer menus and rank beers by alcohol per dollar",
	Long: `hopmetrics scrapes bar and bottle-shop menu pages, normalizes each beer's
volume, ABV and price, optionally looks up a BeerAdvocate rating, and keeps
one up-to-date menu per establishment in a local SQLite database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.GetAppConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		appCfg = cfg
		log.Logger = observability.NewLogger(cfg.Env)
		return nil
	},
}

// Execute runs the CLI. SIGINT/SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() *db.Store {
	store, err := db.Connect(appCfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.DBPath).Msg("database error")
	}
	return store
}

func loadSiteConfig() *config.SiteConfig {
	siteCfg, err := config.LoadSiteConfig(appCfg.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load site config")
	}
	return siteCfg
}

// newRater builds the rating lookup chain: redis cache (when REDIS_ADDR is set)
// over a paced BeerAdvocate client. The returned func releases the cache
// connection.
func newRater(ctx context.Context, siteCfg *config.SiteConfig) (enrich.Rater, func()) {
	en := siteCfg.Enrichment
	ba, err := enrich.NewBeerAdvocate(en.BaseURL, siteCfg.UserAgent, en.Timeout)
	if err != nil {
		log.Warn().Err(err).Msg("enrichment disabled")
		return nil, func() {}
	}
	var rater enrich.Rater = enrich.Paced(ba, en.MinInterval)

	if appCfg.RedisAddr == "" {
		return rater, func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr, DB: appCfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", appCfg.RedisAddr).Msg("rating cache unavailable, continuing without it")
		_ = rdb.Close()
		return rater, func() {}
	}
	return enrich.Cached(rater, rdb, en.CacheTTL), func() { _ = rdb.Close() }
}
