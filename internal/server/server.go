// Package server renders scraped marketwatch pages as html, the account
// to scrape with is given through http basic auth.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"marketwatch-backend/internal/components/assert"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/internal/sessions"
	"marketwatch-backend/internal/snapshots"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("marketwatch.internal.server")

const (
	report_login  = "login"
	report_scrape = "scrape"
	report_render = "render"
)

const unauthorized_message = "MarketWatch validation failed"

// API is the part of marketwatch.Client the server renders.
type API interface {
	Game(ctx context.Context, gameId string) (marketwatch.Game, error)
	Portfolio(ctx context.Context, gameId string) (marketwatch.Portfolio, error)
	Leaderboard(ctx context.Context, gameId string) ([]marketwatch.Ranking, error)
	Watchlist(ctx context.Context, id string) (marketwatch.Watchlist, error)
}

// SessionFunc returns an API logged in as email.
type SessionFunc func(ctx context.Context, email, password string) (API, error)

type HistoryStore interface {
	History(ctx context.Context, gameId string) (snapshots.History, error)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Options struct {
	Sessions SessionFunc
	// optional, /history is not served without it
	History HistoryStore
	// used for requests without basic auth when set
	DefaultCredentials Credentials
	// every origin is allowed when empty
	AllowedOrigins []string
	// called with the request's credentials when a page shows the session
	// is no longer usable, optional
	Forget func(email, password string)
	// requests per second per account, or per ip for anonymous requests,
	// 0 disables rate limiting
	RateLimit rate.Limit
	RateBurst int
	// defaults to prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
	// the registry request metrics are registered to, nil skips them
	Registerer prometheus.Registerer
}

type Server struct {
	opts     Options
	tel      telemetry.API
	requests *prometheus.CounterVec
}

func New(opts Options, tel telemetry.API) (Server, error) {
	assert.NotNil(opts.Sessions, "sessions")
	assert.NotNil(tel, "telemetry")
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := Server{
		opts: opts,
		tel:  telemetry.NewScopedAPI("server", tel),
	}
	if opts.Registerer != nil {
		s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketwatch",
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by status code and method.",
		}, []string{"code", "method"})
		err := opts.Registerer.Register(s.requests)
		if err != nil {
			return Server{}, fmt.Errorf("register request metrics: %w", err)
		}
	}
	return s, nil
}

func (s Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(traceMiddleware)
	if s.opts.RateLimit > 0 {
		burst := s.opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(newClientLimiter(s.opts.RateLimit, burst).middleware)
	}
	r.Use(corsMiddleware(s.opts.AllowedOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		w.Write([]byte("Marketwatch API"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/game/{id}", s.page("game", func(ctx context.Context, api API, id string) (any, error) {
			return api.Game(ctx, id)
		}))
		r.Get("/card/{id}", s.page("card", func(ctx context.Context, api API, id string) (any, error) {
			return api.Game(ctx, id)
		}))
		r.Get("/portfolio/{id}", s.page("portfolio", func(ctx context.Context, api API, id string) (any, error) {
			portfolio, err := api.Portfolio(ctx, id)
			return portfolioPage{GameId: id, Portfolio: portfolio}, err
		}))
		r.Get("/leaderboard/{id}", s.page("leaderboard", func(ctx context.Context, api API, id string) (any, error) {
			rankings, err := api.Leaderboard(ctx, id)
			return leaderboardPage{GameId: id, Rankings: rankings}, err
		}))
		r.Get("/watchlist/{id}", s.page("watchlist", func(ctx context.Context, api API, id string) (any, error) {
			return api.Watchlist(ctx, id)
		}))
		if s.opts.History != nil {
			r.Get("/history/{id}", s.page("history", func(ctx context.Context, _ API, id string) (any, error) {
				return s.opts.History.History(ctx, id)
			}))
		}
	})

	if s.requests == nil {
		return r
	}
	return promhttp.InstrumentHandlerCounter(s.requests, r)
}

type portfolioPage struct {
	GameId    string
	Portfolio marketwatch.Portfolio
}

type leaderboardPage struct {
	GameId   string
	Rankings []marketwatch.Ranking
}

type sessionCtxKeyType int

var sessionCtxKey sessionCtxKeyType

type session struct {
	api      API
	email    string
	password string
}

// authenticate logs in with the request's basic auth credentials and
// stores the session in the request context.
func (s Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if !ok {
			email = s.opts.DefaultCredentials.Email
			password = s.opts.DefaultCredentials.Password
		}
		if email == "" || password == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="marketwatch"`)
			http.Error(w, unauthorized_message, http.StatusUnauthorized)
			return
		}

		api, err := s.opts.Sessions(r.Context(), email, password)
		if err != nil {
			s.tel.ReportWarning(report_login, err)
			w.Header().Set("WWW-Authenticate", `Basic realm="marketwatch"`)
			http.Error(w, unauthorized_message, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, session{
			api:      api,
			email:    email,
			password: password,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func statusOf(err error) int {
	var statusErr marketwatch.StatusError
	switch {
	case errors.Is(err, marketwatch.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, marketwatch.ErrGameNotFound),
		errors.Is(err, marketwatch.ErrTickerNotFound),
		errors.Is(err, marketwatch.ErrWatchlistNotFound):
		return http.StatusNotFound
	case errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

type loadFunc func(ctx context.Context, api API, id string) (any, error)

func (s Server) page(name string, load loadFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := r.Context().Value(sessionCtxKey).(session)
		id := chi.URLParam(r, "id")

		data, err := load(r.Context(), sess.api, id)
		if err != nil {
			if s.opts.Forget != nil && sessions.Expired(err) {
				s.opts.Forget(sess.email, sess.password)
			}
			status := statusOf(err)
			if status == http.StatusBadGateway {
				s.tel.ReportBroken(report_scrape, err, name, id)
			}
			http.Error(w, err.Error(), status)
			return
		}

		body, err := render(name, data)
		if err != nil {
			s.tel.ReportBroken(report_render, err, name)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write(body)
	}
}
