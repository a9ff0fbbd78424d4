package marketwatch

import (
	"context"
	"errors"
	"os"
	"testing"

	devenv "marketwatch-backend/dev/env"
	"marketwatch-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// TestLive runs against the real site with the account in
// dev/.state/marketwatch_test.json5, it only reads.
func TestLive(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.MarketWatchTestConfig](devenv.MarketWatchTestConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		t.Skip("no live test config")
	}
	require.NoError(t, err)
	if config.Username == "" {
		t.Skip("live test config has no credentials")
	}

	ctx := context.Background()
	tel := telemetry.NewTestAPI(t)
	client, err := NewClient(ClientOptions{}, tel)
	require.NoError(t, err)

	require.NoError(t, client.CheckAvailable(ctx))
	require.NoError(t, client.Login(ctx, config.Username, config.Password))

	games, err := client.Games(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, games)
	t.Log("games", games)

	game, err := client.Game(ctx, config.GameId)
	require.NoError(t, err)
	require.NotEmpty(t, game.LedgerId)
	t.Log("game", game)

	portfolio, err := client.Portfolio(ctx, config.GameId)
	require.NoError(t, err)
	t.Log("portfolio", portfolio)

	rankings, err := client.Leaderboard(ctx, config.GameId)
	require.NoError(t, err)
	require.NotEmpty(t, rankings)

	_, err = client.GameSettings(ctx, config.GameId)
	require.NoError(t, err)

	if config.Ticker != "" {
		quote, err := client.Price(ctx, config.Ticker)
		require.NoError(t, err)
		t.Log(quote.String())
	}

	require.Empty(t, tel.Broken())
}
