package marketwatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketwatch-backend/internal/pagecache"
	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ticker uids are stable, the charting symbol only changes if the
// instrument moves exchange
const ticker_uid_ttl = time.Hour * 24 * 30

func (c *Client) stockUrl(ticker string) string {
	return c.siteUrl("/investing/stock/%s", url.PathEscape(strings.ToLower(ticker)))
}

func (c *Client) stockDocument(ctx context.Context, report, ticker string) (*goquery.Document, error) {
	if strings.TrimSpace(ticker) == "" {
		return nil, fmt.Errorf("%w: ticker is empty", ErrTickerNotFound)
	}

	doc, _, err := c.getDocument(ctx, report, c.stockUrl(ticker))
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	return doc, err
}

// Price reads the intraday price of a stock.
func (c *Client) Price(ctx context.Context, ticker string) (Quote, error) {
	doc, err := c.stockDocument(ctx, report_client_price, ticker)
	if err != nil {
		return Quote{}, err
	}

	quote := doc.Find("div.region--intraday h2.intraday__price bg-quote").First()
	if quote.Length() == 0 {
		c.tel.ReportBroken(report_client_price, "no intraday price", ticker)
		return Quote{}, markupError("no intraday price for %s", ticker)
	}
	price, err := parseMoney(quote.Text())
	if err != nil {
		c.tel.ReportBroken(report_client_price, err, ticker)
		return Quote{}, fmt.Errorf("price: %w", err)
	}
	return Quote{
		Ticker: strings.ToUpper(ticker),
		Price:  price,
	}, nil
}

// TickerUid returns the charting symbol of a ticker ("STOCK/US/XNAS/AAPL"),
// the trade form is keyed by it.
func (c *Client) TickerUid(ctx context.Context, ticker string) (string, error) {
	cacheKey := c.stockUrl(ticker)
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			return string(cached), nil
		}
		if !errors.Is(err, pagecache.ErrMiss) {
			c.tel.ReportWarning(report_client_ticker_uid, fmt.Errorf("read cache: %w", err))
		}
	}

	doc, err := c.stockDocument(ctx, report_client_ticker_uid, ticker)
	if err != nil {
		return "", err
	}
	uid, ok := doc.Find("mw-chart").First().Attr("data-ticker")
	if !ok || uid == "" {
		return "", fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	if c.cache != nil {
		err := c.cache.Set(ctx, cacheKey, []byte(uid), ticker_uid_ttl)
		if err != nil {
			c.tel.ReportWarning(report_client_ticker_uid, fmt.Errorf("write cache: %w", err))
		}
	}
	return uid, nil
}

func (c *Client) forgetTickerUid(ctx context.Context, ticker string) {
	if c.cache == nil {
		return
	}
	err := c.cache.Delete(ctx, c.stockUrl(ticker))
	if err != nil {
		c.tel.ReportWarning(report_client_ticker_uid, fmt.Errorf("delete cache: %w", err))
	}
}

// Search looks up instruments through the site's autocomplete api.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = htmlutil.CleanText(query)
	if query == "" {
		return []SearchResult{}, nil
	}

	var results []SearchResult
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":          query,
			"need":       "symbol",
			"excludeExs": "xmstar",
			"maxRows":    "12",
			"it":         "stock,exchangetradedfund,fund",
			"cc":         "us",
			"xe":         "coindesk",
		}).
		SetResult(&results).
		ForceContentType("application/json").
		Get(c.endpoints.Search + "/api/autocomplete/search")
	if err != nil {
		c.tel.ReportBroken(report_client_search, fmt.Errorf("fetch: %w", err), query)
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		err := StatusError{Url: res.Request.URL, Status: res.StatusCode()}
		c.tel.ReportBroken(report_client_search, err)
		return nil, err
	}
	if results == nil {
		results = []SearchResult{}
	}
	c.tel.ReportCount(report_client_search, int64(len(results)))
	return results, nil
}
