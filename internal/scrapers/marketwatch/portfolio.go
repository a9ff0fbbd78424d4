package marketwatch

import (
	"context"
	"fmt"
	"net/url"

	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Portfolio scrapes the logged in user's portfolio in a game.
func (c *Client) Portfolio(ctx context.Context, gameId string) (Portfolio, error) {
	return c.portfolio(ctx, gameId, "")
}

// PlayerPortfolio scrapes another player's portfolio, pub comes from
// Ranking.PlayerPub. The game must have public portfolios.
func (c *Client) PlayerPortfolio(ctx context.Context, gameId, pub string) (Portfolio, error) {
	return c.portfolio(ctx, gameId, pub)
}

func (c *Client) portfolio(ctx context.Context, gameId, pub string) (Portfolio, error) {
	subpath := "/portfolio"
	if pub != "" {
		subpath += "?pub=" + url.QueryEscape(pub)
	}
	doc, _, err := c.getGameDocument(ctx, report_client_portfolio, gameId, subpath)
	if err != nil {
		return Portfolio{}, err
	}

	profile, err := parseProfile(doc.Selection)
	if err != nil {
		c.tel.ReportBroken(report_client_portfolio, err, gameId)
		return Portfolio{}, err
	}

	portfolio := Portfolio{
		Profile:    profile,
		Holdings:   []Holding{},
		Allocation: []Allocation{},
	}
	doc.Find("mw-table-dropdown tbody tr").Each(func(i int, row *goquery.Selection) {
		holding, err := parseHolding(row)
		if err != nil {
			c.tel.ReportWarning(report_client_portfolio, fmt.Errorf("holding %d: %w", i, err))
			return
		}
		portfolio.Holdings = append(portfolio.Holdings, holding)
	})
	doc.Find("div.list--allocation span.list__item").Each(func(i int, item *goquery.Selection) {
		tooltip := item.Find("div.tooltip").First()
		ticker := htmlutil.Text(tooltip.Find("span.symbol").First())
		percentage, err := parsePercent(tooltip.Find("span.percent").First().Text())
		if err != nil || ticker == "" {
			c.tel.ReportWarning(report_client_portfolio, fmt.Errorf("allocation %d: %w", i, markupError("bad allocation")))
			return
		}
		portfolio.Allocation = append(portfolio.Allocation, Allocation{
			Ticker:     ticker,
			Percentage: percentage,
		})
	})

	c.tel.ReportCount(report_client_portfolio, int64(len(portfolio.Holdings)))
	return portfolio, nil
}

func parseHolding(row *goquery.Selection) (Holding, error) {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return Holding{}, markupError("expected 5 cells, got %d", cells.Length())
	}

	holding := Holding{
		Ticker: htmlutil.Text(cells.Eq(1).Find("a.primary mini-quote").First()),
		Side:   htmlutil.Text(cells.Eq(2).Find("div.secondary").First()),
	}
	if holding.Ticker == "" {
		return Holding{}, markupError("holding has no ticker")
	}

	fields := []struct {
		name  string
		dst   *float64
		sel   *goquery.Selection
		parse func(string) (float64, error)
	}{
		{"quantity", &holding.Quantity, cells.Eq(1).Find("div.secondary small.text"), parseNumber},
		{"holding percentage", &holding.HoldingPercentage, cells.Eq(2).Find("div.primary"), parsePercent},
		{"price", &holding.Price, cells.Eq(3).Find("div.primary"), parseMoney},
		{"price change", &holding.PriceChange, cells.Eq(3).Find("small.secondary span.point"), parseMoney},
		{"price change percentage", &holding.PriceChangePercentage, cells.Eq(3).Find("small.secondary span.percent"), parsePercent},
		{"value", &holding.Value, cells.Eq(4).Find("div.primary"), parseMoney},
		{"gain", &holding.Gain, cells.Eq(4).Find("small.secondary span.point"), parseMoney},
		{"gain percentage", &holding.GainPercentage, cells.Eq(4).Find("small.secondary span.percent"), parsePercent},
	}
	for _, f := range fields {
		n, err := f.parse(f.sel.First().Text())
		if err != nil {
			return Holding{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}
	return holding, nil
}
