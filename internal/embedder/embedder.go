package embedder

import (
	"context"
	"time"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/db"
	"mspro-labs/hopmetrics/internal/observability"
)

// DefaultInterval keeps free-tier Gemini usage under ~60 requests a minute.
const DefaultInterval = time.Second

// Run embeds every stored beer that has no vector yet and returns how many were
// embedded. A failure on one beer is logged and skipped.
func Run(ctx context.Context, store *db.Store, embedder ai.Embedder, interval time.Duration) (int, error) {
	log := observability.Component("embedder")

	targets, err := store.UnembeddedBeers(ctx)
	if err != nil {
		return 0, err
	}

	if len(targets) == 0 {
		log.Info().Msg("all beers are already embedded")
		return 0, nil
	}
	log.Info().Int("pending", len(targets)).Msg("embedding beers")

	count := 0
	for i, target := range targets {
		if i > 0 && !sleep(ctx, interval) {
			return count, ctx.Err()
		}

		blob, _, err := embedder.EmbedString(ctx, target.Text)
		if err != nil {
			log.Warn().Err(err).Int64("beer_id", target.ID).Msg("embedding failed")
			continue
		}

		if err := store.UpdateEmbedding(ctx, target.ID, blob); err != nil {
			log.Warn().Err(err).Int64("beer_id", target.ID).Msg("saving embedding failed")
			continue
		}
		count++
	}

	log.Info().Int("embedded", count).Msg("embedding finished")
	return count, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
