package marketwatch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"marketwatch-backend/internal/components/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const (
	test_email    = "jane@example.com"
	test_password = "hunter2"
	test_csrf     = "csrf-token-1"
	test_game     = "algoets-h2023"
	test_ledger   = "ledger-pub-123"
	test_session  = "djcs_session"
)

// fakeSite serves the fixtures in testdata on every endpoint the client
// talks to, their paths do not overlap.
type fakeSite struct {
	t      testing.TB
	server *httptest.Server

	mu         sync.Mutex
	gamesPage  string
	portfolio  string
	authForms  []map[string]string
	authHeader http.Header
	trades     []tradePayload
	cancelled  []string
	tradeForms []string
}

func newFakeSite(t testing.TB) *fakeSite {
	site := &fakeSite{
		t:         t,
		gamesPage: "games.html",
		portfolio: "portfolio.html",
	}

	r := chi.NewRouter()
	r.Get("/login-page", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrf", Value: test_csrf, Path: "/"})
		w.Write([]byte("<html></html>"))
	})
	r.Post("/authenticate", site.authenticate)
	r.Post("/postauth/handler", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("token") == "" || r.PostForm.Get("params") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: test_session, Value: "ok", Path: "/"})
		w.Write([]byte("<html></html>"))
	})
	r.Post("/getuser", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("csrf") != test_csrf || r.PostForm.Get("username") != test_email {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"id":"user-42","username":"jane@example.com"}`))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(test_session); err != nil {
			site.serveFile(w, "home_anonymous.html")
			return
		}
		site.serveFile(w, "home.html")
	})

	r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		page := site.gamesPage
		site.mu.Unlock()
		if page == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		site.serveFile(w, page)
	})
	r.Route("/games/"+test_game, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			site.serveFile(w, "game.html")
		})
		r.Get("/portfolio", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("pub") == "missing" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			site.mu.Lock()
			page := site.portfolio
			site.mu.Unlock()
			site.serveFile(w, page)
		})
		r.Get("/rankings", func(w http.ResponseWriter, r *http.Request) {
			site.serveFile(w, "rankings.html")
		})
		r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
			site.serveFile(w, "settings.html")
		})
		r.Get("/download", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("view") {
			case "holdings":
				site.serveFile(w, "holdings.csv")
			case "rankings":
				site.serveFile(w, "rankings.csv")
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})
		r.Get("/trade/cancelorder", func(w http.ResponseWriter, r *http.Request) {
			id := r.URL.Query().Get("id")
			if id == "order-3" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			site.mu.Lock()
			site.cancelled = append(site.cancelled, id)
			site.mu.Unlock()
		})
		r.Post("/tradeorder", func(w http.ResponseWriter, r *http.Request) {
			site.mu.Lock()
			site.tradeForms = append(site.tradeForms, r.URL.Query().Get("chartingSymbol"))
			site.mu.Unlock()
			site.serveFile(w, "tradeorder.html")
		})
	})
	r.Get("/investing/stock/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "ticker") != "aapl" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		site.serveFile(w, "stock.html")
	})
	r.Get("/api/autocomplete/search", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("need") != "symbol" || query.Get("maxRows") != "12" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if query.Get("q") != "AAPL" {
			w.Write([]byte("[]"))
			return
		}
		site.serveFile(w, "search.json")
	})
	r.Post("/v1/games/{game}/ledgers/{ledger}/trades", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		if chi.URLParam(r, "ledger") != test_ledger {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"data":{"status":"Failed"}}`))
			return
		}
		var payload tradePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		site.mu.Lock()
		site.trades = append(site.trades, payload)
		site.mu.Unlock()
		w.Write([]byte(`{"data":{"status":"Submitted"}}`))
	})
	r.Get("/watchlist", func(w http.ResponseWriter, r *http.Request) {
		site.serveFile(w, "watchlists.html")
	})
	r.Get("/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "wl-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		site.serveFile(w, "watchlist.html")
	})

	site.server = httptest.NewServer(r)
	t.Cleanup(site.server.Close)
	return site
}

func (s *fakeSite) authenticate(w http.ResponseWriter, r *http.Request) {
	require.NoError(s.t, r.ParseForm())

	form := map[string]string{}
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}
	s.mu.Lock()
	s.authForms = append(s.authForms, form)
	s.authHeader = r.Header.Clone()
	s.mu.Unlock()

	if form["_csrf"] != test_csrf || form["username"] != test_email {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid request"}`))
		return
	}
	if form["password"] != test_password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.serveFile(w, "authenticate.html")
}

func (s *fakeSite) serveFile(w http.ResponseWriter, name string) {
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(s.t, err)
	w.Write(contents)
}

// locked runs fn while holding the site's lock, handlers run on other
// goroutines.
func (s *fakeSite) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *fakeSite) setGamesPage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gamesPage = name
}

func (s *fakeSite) setPortfolioPage(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = name
}

func (s *fakeSite) endpoints() Endpoints {
	return Endpoints{
		Sso:    s.server.URL,
		Site:   s.server.URL,
		Trade:  s.server.URL,
		Search: s.server.URL,
	}
}

func newTestClient(t testing.TB, opts ClientOptions) (*Client, *fakeSite, *telemetry.TestAPI) {
	site := newFakeSite(t)
	tel := telemetry.NewTestAPI(t)

	opts.Endpoints = site.endpoints()
	opts.RateLimit = 1000
	client, err := NewClient(opts, tel)
	require.NoError(t, err)
	return client, site, tel
}
