package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdolezal/sreality-alert/pkg/sreality"
	"github.com/mdolezal/sreality-alert/pkg/storage"
)

const upstreamFixture = `{
	"_embedded": {
		"estates": [
			{
				"hash_id": 111,
				"name": "Pronájem bytu 2+kk 45 m²",
				"price": 25000,
				"price_czk": {"unit": "za měsíc"},
				"locality": "Praha 5",
				"labels": ["Garáž"],
				"labelsAll": [],
				"gps": {"lat": 50.07, "lon": 14.43},
				"_links": {"images": [{"href": "https://img.example/a.jpg"}]}
			},
			{
				"hash_id": 222,
				"name": "Pronájem bytu 3+1",
				"price": 18000,
				"locality": "Brno"
			},
			{
				"hash_id": null,
				"name": "Pronájem bytu bez id",
				"price": 12000,
				"locality": "Praha 4"
			},
			{
				"hash_id": 333,
				"name": "Pronájem bytu 1+1 30m²",
				"locality": "Praze 10",
				"labels": [],
				"labelsAll": [["parking_lots"]]
			}
		]
	}
}`

func setupCrawler(t *testing.T, upstream http.HandlerFunc) (*Crawler, *storage.Storage) {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.CloseDB() })

	client := sreality.NewClient(srv.URL, 5*time.Second)
	return New(client, store, zerolog.Nop()), store
}

func serveFixture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(upstreamFixture))
}

func TestRunOnceStoresPragueListings(t *testing.T) {
	c, store := setupCrawler(t, serveFixture)

	inserted, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, inserted, 2)

	// Brno listing and the record without a hash id are never stored.
	exists, err := store.Exists(222)
	require.NoError(t, err)
	assert.False(t, exists)

	first := inserted[0]
	assert.Equal(t, int64(111), first.HashID)
	assert.Equal(t, 25000, first.Price)
	assert.Equal(t, "za měsíc", first.PriceUnit)
	require.NotNil(t, first.SizeSQM)
	assert.Equal(t, 45, *first.SizeSQM)
	require.NotNil(t, first.RoomLayout)
	assert.Equal(t, "2+kk", *first.RoomLayout)
	assert.True(t, first.HasGarage)
	require.NotNil(t, first.Latitude)
	assert.InDelta(t, 50.07, *first.Latitude, 0.001)
	assert.Equal(t, []string{"https://img.example/a.jpg"}, []string(first.Images))

	second := inserted[1]
	assert.Equal(t, int64(333), second.HashID)
	// price omitted upstream defaults to 0, unit to the fixed label
	assert.Equal(t, 0, second.Price)
	assert.Equal(t, "za měsíc", second.PriceUnit)
	assert.True(t, second.HasGarage)
	assert.Nil(t, second.Latitude)
	assert.Empty(t, []string(second.Images))
}

func TestRunOnceIsIdempotent(t *testing.T) {
	c, _ := setupCrawler(t, serveFixture)

	first, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestRunOnceSwallowsUpstreamFailure(t *testing.T) {
	c, store := setupCrawler(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	inserted, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, inserted)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalListings)
}

func TestRunOnceSwallowsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.CloseDB() })

	client := sreality.NewClient(srv.URL, 20*time.Millisecond)
	c := New(client, store, zerolog.Nop())

	inserted, err := c.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, inserted)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalListings)
}
