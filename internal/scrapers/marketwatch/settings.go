package marketwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketwatch-backend/internal/pagecache"
	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const settings_ttl = time.Hour

// GameSettings scrapes the settings page of a game.
func (c *Client) GameSettings(ctx context.Context, gameId string) (GameSettings, error) {
	cacheKey := c.siteUrl("/games/%s/settings", gameId)
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			var settings GameSettings
			if err := json.Unmarshal(cached, &settings); err == nil {
				return settings, nil
			}
		} else if !errors.Is(err, pagecache.ErrMiss) {
			c.tel.ReportWarning(report_client_game_settings, fmt.Errorf("read cache: %w", err))
		}
	}

	doc, _, err := c.getGameDocument(ctx, report_client_game_settings, gameId, "/settings")
	if err != nil {
		return GameSettings{}, err
	}
	settings, err := parseGameSettings(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_game_settings, err, gameId)
		return GameSettings{}, err
	}

	if c.cache != nil {
		serialized, err := json.Marshal(settings)
		if err == nil {
			err = c.cache.Set(ctx, cacheKey, serialized, settings_ttl)
		}
		if err != nil {
			c.tel.ReportWarning(report_client_game_settings, fmt.Errorf("write cache: %w", err))
		}
	}
	return settings, nil
}

func parseGameSettings(doc *goquery.Document) (GameSettings, error) {
	var tables [][]string
	doc.Find("table.portfolio-options").Each(func(_ int, table *goquery.Selection) {
		var cells []string
		table.Find("td.table__cell").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, htmlutil.Text(cell))
		})
		tables = append(tables, cells)
	})
	if len(tables) < 4 {
		return GameSettings{}, markupError("expected 4 option tables, got %d", len(tables))
	}
	if len(tables[0]) < 2 || len(tables[1]) < 2 || len(tables[2]) < 12 || len(tables[3]) < 10 {
		return GameSettings{}, markupError("option tables are missing cells")
	}

	settings := GameSettings{
		GamePublic:          tables[0][1] == "Public",
		PortfoliosPublic:    tables[1][1] == "Public",
		ShortSelling:        tables[3][1] == "Enabled",
		MarginTrading:       tables[3][3] == "Enabled",
		LimitOrders:         tables[3][5] == "Enabled",
		StopLossOrders:      tables[3][7] == "Enabled",
		PartialShareTrading: tables[3][9] == "Enabled",
	}

	numbers := []struct {
		name  string
		cell  int
		dst   *float64
		parse func(string) (float64, error)
	}{
		{"start balance", 1, &settings.StartBalance, parseMoney},
		{"commission", 3, &settings.Commission, parseMoney},
		{"credit interest rate", 5, &settings.CreditInterestRate, parsePercent},
		{"leverage debt interest rate", 7, &settings.LeverageDebtInterestRate, parsePercent},
		{"minimum stock price", 9, &settings.MinimumStockPrice, parseMoney},
		{"maximum stock price", 11, &settings.MaximumStockPrice, parseMoney},
	}
	for _, n := range numbers {
		value, err := n.parse(tables[2][n.cell])
		if err != nil {
			return GameSettings{}, fmt.Errorf("%s: %w", n.name, err)
		}
		*n.dst = value
	}
	return settings, nil
}
