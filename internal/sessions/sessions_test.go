package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"

	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	ctx := context.Background()
	tel := telemetry.NewTestAPI(t)

	var logins atomic.Int32
	login := func(ctx context.Context, email, password string) (*marketwatch.Client, error) {
		logins.Add(1)
		if password != "hunter2" {
			return nil, marketwatch.ErrLoginFailed
		}
		return marketwatch.NewClient(marketwatch.ClientOptions{}, tel)
	}
	cache := NewCache(login, time.Minute, tel)

	first, err := cache.Get(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)
	second, err := cache.Get(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.EqualValues(t, 1, logins.Load())

	_, err = cache.Get(ctx, "jane@example.com", "wrong")
	require.True(t, errors.Is(err, marketwatch.ErrLoginFailed))
	_, err = cache.Get(ctx, "jane@example.com", "wrong")
	require.ErrorIs(t, err, marketwatch.ErrLoginFailed)
	require.EqualValues(t, 3, logins.Load())

	other, err := cache.Get(ctx, "ada@example.com", "hunter2")
	require.NoError(t, err)
	require.NotSame(t, first, other)

	cache.Forget("jane@example.com", "hunter2")
	third, err := cache.Get(ctx, "jane@example.com", "hunter2")
	require.NoError(t, err)
	require.NotSame(t, first, third)
	require.EqualValues(t, 5, logins.Load())
}

func TestKey(t *testing.T) {
	require.NotEqual(t, key("a", "bc"), key("ab", "c"))
	require.Equal(t, key("a", "b"), key("a", "b"))
	require.Len(t, key("a", "b"), 64)
}

func TestExpired(t *testing.T) {
	require.True(t, Expired(marketwatch.ErrNotLoggedIn))
	require.True(t, Expired(fmt.Errorf("game: %w", marketwatch.ErrUnexpectedMarkup)))
	require.False(t, Expired(marketwatch.ErrGameNotFound))
	require.False(t, Expired(nil))
}
