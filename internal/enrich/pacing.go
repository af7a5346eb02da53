package enrich

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"mspro-labs/hopmetrics/internal/models"
)

type paced struct {
	inner   Rater
	limiter *rate.Limiter
}

// Paced spaces out lookups so that consecutive calls start at least
// minInterval apart. The first call is not delayed. A cancelled context
// while waiting counts as no rating.
func Paced(r Rater, minInterval time.Duration) Rater {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &paced{inner: r, limiter: rate.NewLimiter(limit, 1)}
}

func (p *paced) Lookup(ctx context.Context, name, brewery string) (*models.Rating, bool) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, false
	}
	return p.inner.Lookup(ctx, name, brewery)
}
