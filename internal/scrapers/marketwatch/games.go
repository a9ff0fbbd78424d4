package marketwatch

import (
	"context"
	"fmt"

	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Games lists the games the logged in user has joined.
func (c *Client) Games(ctx context.Context) ([]GameSummary, error) {
	doc, _, err := c.getDocument(ctx, report_client_games, c.siteUrl("/games"))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.your-games")
	if table.Length() == 0 {
		// the games page renders for anonymous visitors too
		if doc.Find("li.profile--name").Length() == 0 {
			return nil, ErrNotLoggedIn
		}
		return nil, ErrNoGames
	}

	var games []GameSummary
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		game, err := parseGameRow(row)
		if err != nil {
			c.tel.ReportWarning(report_client_games, fmt.Errorf("row %d: %w", i, err))
			return
		}
		games = append(games, game)
	})
	c.tel.ReportCount(report_client_games, int64(len(games)))
	return games, nil
}

func parseGameRow(row *goquery.Selection) (GameSummary, error) {
	cells := row.Find("td")
	if cells.Length() < 6 {
		return GameSummary{}, markupError("expected 6 cells, got %d", cells.Length())
	}
	cell := func(i int) string {
		return htmlutil.Text(cells.Eq(i))
	}

	link := cells.Eq(0).Find("a").First()
	href, ok := link.Attr("href")
	if !ok {
		return GameSummary{}, markupError("game row has no link")
	}

	game := GameSummary{
		Id:   lastPathSegment(href),
		Name: htmlutil.Text(link),
		Url:  href,
		End:  cell(4),
	}

	var err error
	if game.Return, err = parsePercent(cell(1)); err != nil {
		return GameSummary{}, fmt.Errorf("return: %w", err)
	}
	if game.TotalReturn, err = parseMoney(cell(2)); err != nil {
		return GameSummary{}, fmt.Errorf("total return: %w", err)
	}
	if game.Rank, err = parseInt(cell(3)); err != nil {
		return GameSummary{}, fmt.Errorf("rank: %w", err)
	}
	if game.Players, err = parseInt(cell(5)); err != nil {
		return GameSummary{}, fmt.Errorf("players: %w", err)
	}
	return game, nil
}

// Game scrapes the overview page of a game.
func (c *Client) Game(ctx context.Context, gameId string) (Game, error) {
	doc, res, err := c.getGameDocument(ctx, report_client_game, gameId, "")
	if err != nil {
		return Game{}, err
	}

	game, err := parseGame(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_game, err, gameId)
		return Game{}, err
	}
	game.Id = gameId
	game.Url = res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		game.Url = res.RawResponse.Request.URL.String()
	}
	return game, nil
}

func parseGame(doc *goquery.Document) (Game, error) {
	game := Game{
		Title: htmlutil.Text(doc.Find("h1.game__title").First()),
		Time:  htmlutil.Text(doc.Find("div.game__time").First()),
	}
	if game.Title == "" {
		return Game{}, markupError("missing game title")
	}

	about := primaryValues(doc.Find("div.about-game li.kv__item"))
	if len(about) < 4 {
		return Game{}, markupError("expected 4 game details, got %d", len(about))
	}
	game.StartDate = about[0]
	game.EndDate = about[1]
	game.Creator = about[3]

	var err error
	if game.Players, err = parseInt(about[2]); err != nil {
		return Game{}, fmt.Errorf("players: %w", err)
	}
	if game.Rank, err = parseInt(htmlutil.Text(doc.Find("div.rank__number").First())); err != nil {
		return Game{}, fmt.Errorf("rank: %w", err)
	}
	if game.Profile, err = parseProfile(doc.Selection); err != nil {
		return Game{}, err
	}
	game.LedgerId, _ = doc.Find("canvas#j-chartjs-performance").Attr("data-pub")
	return game, nil
}

// LedgerId returns the id of the user's ledger in a game, the trading api
// addresses portfolios by it.
func (c *Client) LedgerId(ctx context.Context, gameId string) (string, error) {
	doc, _, err := c.getGameDocument(ctx, report_client_ledger_id, gameId, "")
	if err != nil {
		return "", err
	}
	ledgerId, ok := doc.Find("canvas#j-chartjs-performance").Attr("data-pub")
	if !ok || ledgerId == "" {
		c.tel.ReportBroken(report_client_ledger_id, "no performance chart", gameId)
		return "", markupError("no ledger id on game page")
	}
	return ledgerId, nil
}

func primaryValues(items *goquery.Selection) []string {
	values := make([]string, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		values = append(values, htmlutil.Text(item.Find("span.primary").First()))
	})
	return values
}

func parseProfile(root *goquery.Selection) (Profile, error) {
	values := primaryValues(root.Find("div.element--profile li.kv__item"))
	if len(values) < 8 {
		return Profile{}, markupError("expected 8 profile values, got %d", len(values))
	}

	var profile Profile
	fields := []struct {
		name  string
		dst   *float64
		parse func(string) (float64, error)
	}{
		{"value", &profile.Value, parseMoney},
		{"gain percentage", &profile.GainPercentage, parsePercent},
		{"gain", &profile.Gain, parseMoney},
		{"return", &profile.Return, parsePercent},
		{"cash remaining", &profile.CashRemaining, parseMoney},
		{"buying power", &profile.BuyingPower, parseMoney},
		{"shorts reserve", &profile.ShortsReserve, parseMoney},
		{"cash borrowed", &profile.CashBorrowed, parseMoney},
	}
	for i, f := range fields {
		n, err := f.parse(values[i])
		if err != nil {
			return Profile{}, fmt.Errorf("profile %s: %w", f.name, err)
		}
		*f.dst = n
	}
	return profile, nil
}
