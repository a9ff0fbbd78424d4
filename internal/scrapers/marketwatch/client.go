// Package marketwatch scrapes the MarketWatch virtual stock market game
// and submits orders through its trading api.
package marketwatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"marketwatch-backend/internal/components/assert"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/pagecache"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const user_agent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Endpoints are the hosts the client talks to, tests point all of them at
// a fake site.
type Endpoints struct {
	Sso    string
	Site   string
	Trade  string
	Search string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Sso:    "https://sso.accounts.dowjones.com",
		Site:   "https://www.marketwatch.com",
		Trade:  "https://vse-api.marketwatch.com",
		Search: "https://api.wsj.net",
	}
}

type ClientOptions struct {
	// zero value means DefaultEndpoints
	Endpoints Endpoints
	// optional, caches ticker uids and game settings
	Cache *pagecache.Cache
	// optional, receives every http exchange
	Output telemetry.Output
	// requests per second, defaults to 2
	RateLimit rate.Limit
	// defaults to 30 seconds
	Timeout time.Duration
}

type Client struct {
	Http *resty.Client

	endpoints Endpoints
	cache     *pagecache.Cache
	tel       telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("marketwatch", tel)

	endpoints := opts.Endpoints
	if endpoints == (Endpoints{}) {
		endpoints = DefaultEndpoints()
	}

	hosts := []string{"accounts.marketwatch.com"}
	for _, endpoint := range []string{endpoints.Sso, endpoints.Site, endpoints.Trade, endpoints.Search} {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint %s: %w", endpoint, err)
		}
		hosts = append(hosts, parsed.Hostname())
	}

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("user-agent", user_agent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(hosts...))

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	limit := opts.RateLimit
	if limit == 0 {
		limit = 2
	}
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(limit, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &Client{
		Http:      httpClient,
		endpoints: endpoints,
		cache:     opts.Cache,
		tel:       tel,
	}, nil
}

func (c *Client) siteUrl(format string, args ...any) string {
	return c.endpoints.Site + fmt.Sprintf(format, args...)
}

// getDocument fetches endpoint and parses it, any status other than 200 is
// returned as a StatusError.
func (c *Client) getDocument(ctx context.Context, report, endpoint string) (*goquery.Document, *resty.Response, error) {
	c.tel.ReportDebug(report, endpoint)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report, fmt.Errorf("fetch: %w", err), endpoint)
		return nil, nil, err
	}
	if res.StatusCode() != http.StatusOK {
		err := StatusError{Url: endpoint, Status: res.StatusCode()}
		c.tel.ReportWarning(report, err)
		return nil, res, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report, fmt.Errorf("parse: %w", err), endpoint)
		return nil, res, err
	}
	return doc, res, nil
}

// getGameDocument is getDocument for pages under /games/{id}, a bad status
// means the game does not exist or the user has not joined it.
func (c *Client) getGameDocument(ctx context.Context, report, gameId, subpath string) (*goquery.Document, *resty.Response, error) {
	if gameId == "" {
		return nil, nil, fmt.Errorf("%w: game id is empty", ErrGameNotFound)
	}

	endpoint := c.siteUrl("/games/%s%s", url.PathEscape(gameId), subpath)
	doc, res, err := c.getDocument(ctx, report, endpoint)
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return nil, res, fmt.Errorf("%w: %s", ErrGameNotFound, gameId)
	}
	return doc, res, err
}

// CheckAvailable returns ErrSiteDown if the games page does not load.
func (c *Client) CheckAvailable(ctx context.Context) error {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.siteUrl("/games"))
	if err != nil {
		c.tel.ReportBroken(report_client_check_available, fmt.Errorf("fetch: %w", err))
		return fmt.Errorf("%w: %w", ErrSiteDown, err)
	}
	if res.StatusCode() != http.StatusOK {
		c.tel.ReportWarning(report_client_check_available, res.Status())
		return fmt.Errorf("%w: status %d", ErrSiteDown, res.StatusCode())
	}
	return nil
}
