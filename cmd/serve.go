package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/api"
	"mspro-labs/hopmetrics/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranked feed as a JSON API",
	Long: `Starts an HTTP server on HTTP_ADDR (default :8080) with:
  GET /api/beers?limit=N     ranked feed
  GET /api/establishments    tracked establishments
  GET /api/search?q=...      semantic search (needs GEMINI_API_KEY)
  GET /metrics               Prometheus metrics
  GET /healthz`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) {
	store := openStore()
	defer store.Close()

	var emb ai.Embedder
	if ai.Available() {
		client, err := ai.NewClient(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("semantic search disabled")
		} else {
			defer client.Close()
			emb = client
		}
	}

	server := &http.Server{
		Addr:         appCfg.HTTPAddr,
		Handler:      api.New(store, emb, observability.InitRegistry()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", appCfg.HTTPAddr).Msg("API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
