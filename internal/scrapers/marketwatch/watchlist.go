package marketwatch

import (
	"context"
	"fmt"
	"net/url"

	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Watchlists lists the user's watchlists without their items.
func (c *Client) Watchlists(ctx context.Context) ([]Watchlist, error) {
	doc, res, err := c.getDocument(ctx, report_client_watchlists, c.siteUrl("/watchlist"))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(res.Request.URL)
	if err != nil {
		return nil, err
	}

	watchlists := []Watchlist{}
	for _, anchor := range htmlutil.GetAnchors(ctx, base, doc.Find("div.watchlist-list a.watchlist__name")) {
		id := lastPathSegment(anchor.Url.Path)
		if id == "" || id == "watchlist" {
			c.tel.ReportWarning(report_client_watchlists, "watchlist link has no id", anchor.Url.String())
			continue
		}
		watchlists = append(watchlists, Watchlist{
			Id:    id,
			Name:  anchor.Name,
			Items: []WatchlistItem{},
		})
	}
	return watchlists, nil
}

// Watchlist scrapes the items of a watchlist.
func (c *Client) Watchlist(ctx context.Context, id string) (Watchlist, error) {
	if id == "" {
		return Watchlist{}, fmt.Errorf("%w: watchlist id is empty", ErrWatchlistNotFound)
	}

	doc, _, err := c.getDocument(ctx, report_client_watchlist, c.siteUrl("/watchlist/%s", url.PathEscape(id)))
	if err != nil {
		return Watchlist{}, err
	}

	watchlist := Watchlist{
		Id:    id,
		Name:  htmlutil.Text(doc.Find("h1.watchlist__title").First()),
		Items: []WatchlistItem{},
	}
	doc.Find("table.table--watchlist tbody tr").Each(func(i int, row *goquery.Selection) {
		item, err := parseWatchlistRow(row)
		if err != nil {
			c.tel.ReportWarning(report_client_watchlist, fmt.Errorf("row %d: %w", i, err))
			return
		}
		watchlist.Items = append(watchlist.Items, item)
	})
	return watchlist, nil
}

func parseWatchlistRow(row *goquery.Selection) (WatchlistItem, error) {
	item := WatchlistItem{
		Ticker: htmlutil.Text(row.Find("td.symbol").First()),
		Name:   htmlutil.Text(row.Find("td.name").First()),
	}
	if item.Ticker == "" {
		return WatchlistItem{}, markupError("watchlist row has no symbol")
	}

	var err error
	if item.Price, err = parseMoney(row.Find("td.price").First().Text()); err != nil {
		return WatchlistItem{}, fmt.Errorf("price: %w", err)
	}
	// change columns are empty outside of market hours
	item.Change, _ = parseMoney(row.Find("td.change").First().Text())
	item.ChangePercentage, _ = parsePercent(row.Find("td.percent").First().Text())
	return item, nil
}
