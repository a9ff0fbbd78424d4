package pagecache

import (
	"context"
	"testing"
	"time"

	"marketwatch-backend/internal/components/chrono"

	"github.com/stretchr/testify/require"
)

type movableClock struct {
	now time.Time
}

func (m *movableClock) Now() time.Time           { return m.now }
func (m *movableClock) Location() *time.Location { return time.UTC }

func TestCache(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()

	clock := &movableClock{now: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)}
	cache := New(db, "ticker_uid", clock)
	ctx := context.Background()

	link := "https://www.marketwatch.com/investing/stock/aapl?b=2&a=1#chart"

	_, err = cache.Get(ctx, link)
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, cache.Set(ctx, link, []byte("STOCK/US/XNAS/AAPL"), time.Hour))

	// same url with a different query order and no fragment hits the same entry
	cached, err := cache.Get(ctx, "https://www.marketwatch.com/investing/stock/aapl?a=1&b=2")
	require.NoError(t, err)
	require.Equal(t, "STOCK/US/XNAS/AAPL", string(cached))

	clock.now = clock.now.Add(time.Hour)
	_, err = cache.Get(ctx, link)
	require.ErrorIs(t, err, ErrMiss)

	// expired entries are removed
	clock.now = clock.now.Add(-time.Hour)
	_, err = cache.Get(ctx, link)
	require.ErrorIs(t, err, ErrMiss)
}

func TestCacheNamespaces(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()

	clock := chrono.FixedImpl{Time: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)}
	settings := New(db, "settings", clock)
	uids := New(db, "ticker_uid", clock)
	ctx := context.Background()

	link := "https://www.marketwatch.com/games/period-3/settings"
	require.NoError(t, settings.Set(ctx, link, []byte("{}"), time.Hour))

	_, err = uids.Get(ctx, link)
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, settings.Delete(ctx, link))
	_, err = settings.Get(ctx, link)
	require.ErrorIs(t, err, ErrMiss)
}

func TestKey(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()

	cache := New(db, "ns", chrono.FixedImpl{Time: time.Now()})
	key, err := cache.Key("HTTPS://www.MarketWatch.com/games/x/?z=1&a=2#frag")
	require.NoError(t, err)
	require.Equal(t, "ns:https://www.marketwatch.com/games/x/?a=2&z=1", key)
}
