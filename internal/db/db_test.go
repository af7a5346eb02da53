package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/hopmetrics/internal/models"
)

const venueURL = "https://www.beermenus.com/places/1234-the-tap-room"

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	store, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func venue() models.Establishment {
	return models.Establishment{URL: venueURL, Name: "The Tap Room", Location: "Portland, OR"}
}

func beer(name string, volume, abv, price *float64) models.MenuItem {
	return models.MenuItem{Name: name, Brewery: "Test Brewing", VolumeOz: volume, ABV: abv, Price: price}
}

func names(items []models.MenuItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestReconcileInsertsAndScores(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	item := beer("Pilsner", models.Float(16), models.Float(5), models.Float(8))
	item.ValueScore = 999 // stale value must not be trusted
	item.Rating = &models.Rating{Score: models.Float(88), Style: "German Pilsner", URL: "https://ba.example/p/1"}

	n, err := store.Reconcile(ctx, venue(), []models.MenuItem{item})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	beers, err := store.Beers(ctx, venueURL)
	require.NoError(t, err)
	require.Len(t, beers, 1)
	assert.InDelta(t, 0.1, beers[0].ValueScore, 1e-9)
	require.NotNil(t, beers[0].Rating)
	assert.Equal(t, "German Pilsner", beers[0].Rating.Style)
	assert.InDelta(t, 88.0, *beers[0].Rating.Score, 1e-9)
}

func TestReconcileKeepsUnknownsNull(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Reconcile(ctx, venue(), []models.MenuItem{beer("Mystery Ale", nil, models.Float(6), nil)})
	require.NoError(t, err)

	beers, err := store.Beers(ctx, venueURL)
	require.NoError(t, err)
	require.Len(t, beers, 1)
	assert.Nil(t, beers[0].VolumeOz)
	assert.Nil(t, beers[0].Price)
	assert.Nil(t, beers[0].Rating)
	assert.Equal(t, 0.0, beers[0].ValueScore)
}

func TestReconcileIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	items := []models.MenuItem{
		beer("Pilsner", models.Float(16), models.Float(5), models.Float(8)),
		beer("Stout", models.Float(12), models.Float(8), models.Float(9)),
	}

	_, err := store.Reconcile(ctx, venue(), items)
	require.NoError(t, err)
	before, err := store.GetEstablishment(ctx, venueURL)
	require.NoError(t, err)
	firstBeers, err := store.Beers(ctx, venueURL)
	require.NoError(t, err)

	_, err = store.Reconcile(ctx, venue(), items)
	require.NoError(t, err)
	after, err := store.GetEstablishment(ctx, venueURL)
	require.NoError(t, err)
	secondBeers, err := store.Beers(ctx, venueURL)
	require.NoError(t, err)

	assert.Equal(t, before.ID, after.ID)
	if diff := cmp.Diff(firstBeers, secondBeers); diff != "" {
		t.Errorf("beers changed across identical scrapes (-first +second):\n%s", diff)
	}

	list, err := store.ListEstablishments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReconcileReplacesItems(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Reconcile(ctx, venue(), []models.MenuItem{
		beer("A", nil, nil, nil), beer("B", nil, nil, nil), beer("C", nil, nil, nil),
	})
	require.NoError(t, err)

	updated := venue()
	updated.Name = "The Tap Room & Kitchen"
	updated.Location = ""
	updated.Description = "Now with food"
	_, err = store.Reconcile(ctx, updated, []models.MenuItem{beer("C", nil, nil, nil), beer("D", nil, nil, nil)})
	require.NoError(t, err)

	beers, err := store.Beers(ctx, venueURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, names(beers))

	est, err := store.GetEstablishment(ctx, venueURL)
	require.NoError(t, err)
	assert.Equal(t, "The Tap Room & Kitchen", est.Name)
	assert.Equal(t, "", est.Location)
	assert.Equal(t, "Now with food", est.Description)
}

func TestReconcileToEmptyKeepsEstablishment(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	var five []models.MenuItem
	for _, n := range []string{"A", "B", "C", "D", "E"} {
		five = append(five, beer(n, nil, nil, nil))
	}
	n, err := store.Reconcile(ctx, venue(), five)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	*clock = clock.Add(24 * time.Hour)
	n, err = store.Reconcile(ctx, venue(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	beers, err := store.Beers(ctx, venueURL)
	require.NoError(t, err)
	assert.Empty(t, beers)

	est, err := store.GetEstablishment(ctx, venueURL)
	require.NoError(t, err)
	assert.True(t, est.LastScraped.Equal(*clock), "last scraped %v, want %v", est.LastScraped, *clock)
}

func TestReconcileFailureLeavesPriorState(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Reconcile(context.Background(), venue(), []models.MenuItem{beer("Keeper", nil, nil, nil)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Reconcile(ctx, venue(), nil)
	require.Error(t, err)

	_, err = store.Reconcile(context.Background(), models.Establishment{Name: "No URL"}, nil)
	require.Error(t, err)

	beers, err := store.Beers(context.Background(), venueURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keeper"}, names(beers))
}

func TestRankedBeers(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Reconcile(ctx, venue(), []models.MenuItem{
		beer("Light", models.Float(12), models.Float(4), models.Float(6)),   // 0.08
		beer("Strong", models.Float(16), models.Float(10), models.Float(8)), // 0.2
		beer("NoPrice", models.Float(16), models.Float(10), nil),
		beer("Middle", models.Float(16), models.Float(6.5), models.Float(8)), // 0.13
		beer("NoABV", models.Float(16), nil, models.Float(5)),
	})
	require.NoError(t, err)

	ranked, err := store.RankedBeers(ctx, 0)
	require.NoError(t, err)

	var got []string
	for _, rb := range ranked {
		got = append(got, rb.Name)
		assert.Equal(t, "The Tap Room", rb.Establishment)
		assert.Equal(t, venueURL, rb.EstablishmentURL)
	}
	assert.Equal(t, []string{"Strong", "Middle", "Light"}, got)

	top, err := store.RankedBeers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Strong", top[0].Name)
}

func TestListEstablishments(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.Reconcile(ctx, venue(), []models.MenuItem{beer("A", nil, nil, nil), beer("B", nil, nil, nil)})
	require.NoError(t, err)

	*clock = clock.Add(time.Hour)
	other := models.Establishment{URL: "https://example.com/menu", Name: "Corner Pub"}
	_, err = store.Reconcile(ctx, other, nil)
	require.NoError(t, err)

	list, err := store.ListEstablishments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Corner Pub", list[0].Name)
	assert.Equal(t, 0, list[0].BeerCount)
	assert.Equal(t, "The Tap Room", list[1].Name)
	assert.Equal(t, 2, list[1].BeerCount)
	assert.Equal(t, "Portland, OR", list[1].Location)
}

func TestEmbeddingsAndSearchHistory(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.Reconcile(ctx, venue(), []models.MenuItem{
		{Name: "Hazy IPA", Brewery: "Test Brewing", Style: "NEIPA"},
		{Name: "Porter"},
	})
	require.NoError(t, err)

	targets, err := store.UnembeddedBeers(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "Beer: Hazy IPA\nBrewery: Test Brewing\nStyle: NEIPA\nServed at: The Tap Room", targets[0].Text)

	require.NoError(t, store.UpdateEmbedding(ctx, targets[0].ID, []byte{1, 2, 3, 4}))

	remaining, err := store.UnembeddedBeers(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	vectors, err := store.BeerVectors(ctx)
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, "Hazy IPA", vectors[0].Name)
	assert.Equal(t, "NEIPA", vectors[0].Style)
	assert.Equal(t, []byte{1, 2, 3, 4}, vectors[0].Vector)

	_, err = store.CachedQuery(ctx, "hazy")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.SaveCachedQuery(ctx, "hazy", []byte{9}))
	*clock = clock.Add(time.Minute)
	require.NoError(t, store.SaveCachedQuery(ctx, "dark", []byte{8}))

	blob, err := store.CachedQuery(ctx, "hazy")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, blob)

	history, err := store.ListSearchHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "dark", history[0].QueryText)

	n, err := store.ClearSearchHistory(ctx, "hazy")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.ClearAllSearchHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
