package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/internal/snapshots"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	err error
}

func (f fakeAPI) Game(ctx context.Context, gameId string) (marketwatch.Game, error) {
	if f.err != nil {
		return marketwatch.Game{}, f.err
	}
	return marketwatch.Game{
		Id:      gameId,
		Title:   "Algo ETS",
		Players: 31,
		Rank:    4,
		Url:     "https://www.marketwatch.com/games/" + gameId,
		Profile: marketwatch.Profile{
			Value:          1003710.85,
			Gain:           3710.85,
			GainPercentage: 0.0037,
		},
	}, nil
}

func (f fakeAPI) Portfolio(ctx context.Context, gameId string) (marketwatch.Portfolio, error) {
	if f.err != nil {
		return marketwatch.Portfolio{}, f.err
	}
	return marketwatch.Portfolio{
		Holdings: []marketwatch.Holding{{Ticker: "AAPL", Quantity: 10, Value: 1895.5}},
	}, nil
}

func (f fakeAPI) Leaderboard(ctx context.Context, gameId string) ([]marketwatch.Ranking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []marketwatch.Ranking{
		{Rank: 1, Player: "Ada Lovelace", PortfolioValue: 1100000},
		{Rank: 2, Player: "Alan Turing", PortfolioValue: 990000.5, Gain: -9999.5},
	}, nil
}

func (f fakeAPI) Watchlist(ctx context.Context, id string) (marketwatch.Watchlist, error) {
	if f.err != nil {
		return marketwatch.Watchlist{}, f.err
	}
	return marketwatch.Watchlist{
		Id:    id,
		Name:  "Tech",
		Items: []marketwatch.WatchlistItem{{Ticker: "MSFT", Name: "Microsoft Corp.", Price: 410.2}},
	}, nil
}

type fakeHistory struct{}

func (fakeHistory) History(ctx context.Context, gameId string) (snapshots.History, error) {
	return snapshots.History{
		GameId: gameId,
		Title:  "Algo ETS",
		Own: []snapshots.Point{
			{Time: time.Date(2023, 10, 2, 16, 30, 0, 0, time.UTC), Rank: 4, PortfolioValue: 1003710.85},
		},
	}, nil
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *telemetry.TestAPI) {
	tel := telemetry.NewTestAPI(t)
	if opts.Sessions == nil {
		opts.Sessions = func(ctx context.Context, email, password string) (API, error) {
			if email != "student@example.com" || password != "hunter2" {
				return nil, marketwatch.ErrLoginFailed
			}
			return fakeAPI{}, nil
		}
	}
	server, err := New(opts, tel)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, tel
}

func get(t *testing.T, ts *httptest.Server, path string, auth bool) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if auth {
		req.SetBasicAuth("student@example.com", "hunter2")
	}
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestIndex(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	res, body := get(t, ts, "/", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "Marketwatch API", body)
}

func TestPages(t *testing.T) {
	ts, tel := newTestServer(t, Options{History: fakeHistory{}})

	cases := []struct {
		path     string
		contains []string
	}{
		{"/game/algoets-h2023", []string{"Algo ETS", "$1,003,710.85", "0.37%"}},
		{"/card/algoets-h2023", []string{"Algo ETS"}},
		{"/portfolio/algoets-h2023", []string{"AAPL", "$1,895.50"}},
		{"/leaderboard/algoets-h2023", []string{"Ada Lovelace", "$1,100,000.00", "-$9,999.50"}},
		{"/watchlist/tech", []string{"Tech", "MSFT", "$410.20"}},
		{"/history/algoets-h2023", []string{"Algo ETS", "Oct 2, 2023"}},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			res, body := get(t, ts, c.path, true)
			require.Equal(t, http.StatusOK, res.StatusCode, body)
			require.Contains(t, res.Header.Get("content-type"), "text/html")
			for _, s := range c.contains {
				require.Contains(t, body, s)
			}
		})
	}
	require.Empty(t, tel.Broken())
}

func TestHistoryDisabled(t *testing.T) {
	ts, _ := newTestServer(t, Options{})
	res, _ := get(t, ts, "/history/algoets-h2023", true)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUnauthorized(t *testing.T) {
	ts, tel := newTestServer(t, Options{})

	res, body := get(t, ts, "/game/algoets-h2023", false)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.NotEmpty(t, res.Header.Get("WWW-Authenticate"))
	require.Contains(t, body, unauthorized_message)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/game/algoets-h2023", nil)
	require.NoError(t, err)
	req.SetBasicAuth("student@example.com", "wrong")
	wrong, err := ts.Client().Do(req)
	require.NoError(t, err)
	wrong.Body.Close()
	require.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	require.Len(t, tel.Reports("warning", report_login), 1)
}

func TestDefaultCredentials(t *testing.T) {
	ts, _ := newTestServer(t, Options{
		DefaultCredentials: Credentials{Email: "student@example.com", Password: "hunter2"},
	})
	res, body := get(t, ts, "/game/algoets-h2023", false)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
}

func TestScrapeErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		broken bool
	}{
		{fmt.Errorf("fetch: %w", marketwatch.ErrGameNotFound), http.StatusNotFound, false},
		{marketwatch.StatusError{Url: "https://www.marketwatch.com/watchlists/1", Status: 404}, http.StatusNotFound, false},
		{marketwatch.StatusError{Url: "https://www.marketwatch.com/games/x", Status: 500}, http.StatusBadGateway, true},
		{marketwatch.ErrUnexpectedMarkup, http.StatusBadGateway, true},
		{marketwatch.ErrNotLoggedIn, http.StatusUnauthorized, false},
		{fmt.Errorf("%w: 42", marketwatch.ErrWatchlistNotFound), http.StatusNotFound, false},
	}
	for _, c := range cases {
		t.Run(c.err.Error(), func(t *testing.T) {
			ts, tel := newTestServer(t, Options{
				Sessions: func(ctx context.Context, email, password string) (API, error) {
					return fakeAPI{err: c.err}, nil
				},
			})
			res, _ := get(t, ts, "/game/x", true)
			require.Equal(t, c.status, res.StatusCode)
			require.Equal(t, c.broken, len(tel.Broken()) > 0)
		})
	}
}

func TestForgetExpiredSession(t *testing.T) {
	cases := []struct {
		err    error
		forget bool
	}{
		{marketwatch.ErrNotLoggedIn, true},
		{fmt.Errorf("game: %w", marketwatch.ErrUnexpectedMarkup), true},
		{marketwatch.ErrGameNotFound, false},
		{nil, false},
	}
	for _, c := range cases {
		name := "ok"
		if c.err != nil {
			name = c.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			forgotten := make(chan string, 1)
			ts, _ := newTestServer(t, Options{
				Sessions: func(ctx context.Context, email, password string) (API, error) {
					return fakeAPI{err: c.err}, nil
				},
				Forget: func(email, password string) {
					forgotten <- email + ":" + password
				},
			})
			get(t, ts, "/game/x", true)
			if c.forget {
				require.Equal(t, "student@example.com:hunter2", <-forgotten)
			} else {
				require.Len(t, forgotten, 0)
			}
		})
	}
}

func TestCors(t *testing.T) {
	t.Run("all origins", func(t *testing.T) {
		ts, _ := newTestServer(t, Options{})
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/game/x", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://example.com")
		res, err := ts.Client().Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		require.Equal(t, "https://example.com", res.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted", func(t *testing.T) {
		ts, _ := newTestServer(t, Options{AllowedOrigins: []string{"https://allowed.example.com"}})
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://other.example.com")
		res, err := ts.Client().Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 2})
	for i := 0; i < 2; i++ {
		res, _ := get(t, ts, "/", false)
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	res, _ := get(t, ts, "/", false)
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
}

func TestRateLimitPerAccount(t *testing.T) {
	ts, _ := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 1})

	send := func(email string) int {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
		require.NoError(t, err)
		if email != "" {
			req.SetBasicAuth(email, "hunter2")
		}
		res, err := ts.Client().Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res.StatusCode
	}

	require.Equal(t, http.StatusOK, send("student@example.com"))
	require.Equal(t, http.StatusTooManyRequests, send("student@example.com"))
	require.Equal(t, http.StatusTooManyRequests, send("STUDENT@example.com"))
	// same ip, different account
	require.Equal(t, http.StatusOK, send("teacher@example.com"))
	require.Equal(t, http.StatusOK, send(""))
	require.Equal(t, http.StatusTooManyRequests, send(""))
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	ts, _ := newTestServer(t, Options{Registerer: registry, Gatherer: registry})

	get(t, ts, "/", false)
	res, body := get(t, ts, "/metrics", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.True(t, strings.Contains(body, `marketwatch_http_requests_total{code="200",method="get"}`), body)
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		12.5:       "$12.50",
		999.999:    "$1,000.00",
		1234567.89: "$1,234,567.89",
		-3710.85:   "-$3,710.85",
	}
	for value, expected := range cases {
		require.Equal(t, expected, formatMoney(value))
	}
	require.Equal(t, "-0.37%", formatPercent(-0.0037))
	require.Equal(t, "up", signClass(1))
	require.Equal(t, "down", signClass(-1))
	require.Equal(t, "", signClass(0))
}
