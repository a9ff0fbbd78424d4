package commands

import (
	"fmt"
	"os"
	"strings"

	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// names scoring below this are not considered a match
const min_name_score = 0.75

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func alignRight(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		configs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}
	return configs
}

func money(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

func percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// matchGame picks the game whose id equals query or whose name is closest
// to it, an empty query only works when there is exactly one game.
func matchGame(query string, games []marketwatch.GameSummary) (string, error) {
	if len(games) == 0 {
		return "", marketwatch.ErrNoGames
	}
	if query == "" {
		if len(games) == 1 {
			return games[0].Id, nil
		}
		ids := make([]string, len(games))
		for i, g := range games {
			ids[i] = g.Id
		}
		return "", fmt.Errorf("you are in more than one game, pick one with --game: %s", strings.Join(ids, ", "))
	}

	names := make([]string, len(games))
	for i, g := range games {
		if g.Id == query {
			return g.Id, nil
		}
		names[i] = g.Name
	}
	idx, score := textutil.ClosestMatch(query, names)
	if idx < 0 || score < min_name_score {
		return "", fmt.Errorf("%w: '%s'", marketwatch.ErrGameNotFound, query)
	}
	return games[idx].Id, nil
}
