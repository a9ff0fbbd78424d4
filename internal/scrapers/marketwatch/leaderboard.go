package marketwatch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const not_available = "N/A"

// Leaderboard scrapes the rankings page of a game.
func (c *Client) Leaderboard(ctx context.Context, gameId string) ([]Ranking, error) {
	doc, _, err := c.getGameDocument(ctx, report_client_leaderboard, gameId, "/rankings")
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.ranking")
	if table.Length() == 0 {
		c.tel.ReportBroken(report_client_leaderboard, "no rankings table", gameId)
		return nil, markupError("no rankings table")
	}

	rankings := []Ranking{}
	table.Find("tr.table__row").Each(func(i int, row *goquery.Selection) {
		ranking, err := parseRanking(row)
		if err != nil {
			c.tel.ReportWarning(report_client_leaderboard, fmt.Errorf("row %d: %w", i, err))
			return
		}
		rankings = append(rankings, ranking)
	})
	c.tel.ReportCount(report_client_leaderboard, int64(len(rankings)))
	return rankings, nil
}

// parseRanking leaves numeric fields at zero and names at "N/A" when
// their cell is missing or empty, header rows come out with no rank and
// are rejected.
func parseRanking(row *goquery.Selection) (Ranking, error) {
	ranking := Ranking{
		Player:    not_available,
		PlayerUrl: not_available,
	}
	cells := row.Find("td")
	if cells.Length() == 0 {
		return Ranking{}, markupError("ranking row has no cells")
	}
	cell := func(i int) string {
		if i >= cells.Length() {
			return ""
		}
		return htmlutil.Text(cells.Eq(i))
	}

	var err error
	if ranking.Rank, err = parseInt(cell(0)); err != nil {
		return Ranking{}, fmt.Errorf("rank: %w", err)
	}
	if link := cells.Eq(1).Find("a.link").First(); link.Length() > 0 {
		ranking.Player = htmlutil.Text(link)
		if href, ok := link.Attr("href"); ok {
			ranking.PlayerUrl = href
		}
	}
	// the remaining columns are blank for players who have not traded
	ranking.PortfolioValue, _ = parseMoney(cell(2))
	ranking.GainPercentage, _ = parsePercent(cell(3))
	ranking.Transactions, _ = parseInt(cell(4))
	ranking.Gain, _ = parseMoney(cell(5))
	return ranking, nil
}

// LeaderboardCSV downloads the rankings of a game in the site's csv format.
func (c *Client) LeaderboardCSV(ctx context.Context, gameId string) ([]byte, error) {
	if gameId == "" {
		return nil, fmt.Errorf("%w: game id is empty", ErrGameNotFound)
	}

	endpoint := c.siteUrl("/games/%s/download?view=rankings&pub=&isDownload=true", url.PathEscape(gameId))
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_leaderboard_csv, fmt.Errorf("fetch: %w", err), gameId)
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameId)
	}
	return res.Body(), nil
}
