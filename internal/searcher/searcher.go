package searcher

import (
	"context"
	"fmt"
	"sort"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/db"
	"mspro-labs/hopmetrics/internal/observability"
)

// DefaultLimit is the number of matches returned when none is requested.
const DefaultLimit = 5

// Result holds a single search match.
type Result struct {
	Beer  db.BeerVector
	Score float32
}

// Perform ranks embedded beers by similarity to queryText.
func Perform(ctx context.Context, store *db.Store, embedder ai.Embedder, queryText string, limit int) ([]Result, error) {
	queryVector, err := queryVector(ctx, store, embedder, queryText)
	if err != nil {
		return nil, err
	}

	beers, err := store.BeerVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load beers: %w", err)
	}

	var results []Result
	for _, beer := range beers {
		floats, err := ai.BytesToFloats(beer.Vector)
		if err != nil {
			continue
		}
		results = append(results, Result{Beer: beer, Score: ai.CosineSimilarity(queryVector, floats)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// queryVector is cache-aside over the search_history table.
func queryVector(ctx context.Context, store *db.Store, embedder ai.Embedder, text string) ([]float32, error) {
	log := observability.Component("searcher")

	blob, err := store.CachedQuery(ctx, text)
	if err == nil {
		observability.ObserveCache("search_history", "hit")
		return ai.BytesToFloats(blob)
	}
	observability.ObserveCache("search_history", "miss")

	log.Debug().Str("query", text).Msg("query cache miss, calling Gemini")
	blob, floats, err := embedder.EmbedString(ctx, text)
	if err != nil {
		return nil, err
	}

	// don't fail the search if the cache write fails
	if err := store.SaveCachedQuery(ctx, text, blob); err != nil {
		log.Warn().Err(err).Msg("failed to save query to cache")
	}

	return floats, nil
}
