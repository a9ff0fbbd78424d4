package marketwatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNumbers(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		parse    func(string) (float64, error)
		expected float64
	}{
		{"negative money", "-$3,710.85 ", parseMoney, -3710.85},
		{"money", "$996,289.15", parseMoney, 996289.15},
		{"shares suffix", "200 Shares", parseNumber, 200},
		{"percent", "-0.37%", parsePercent, -0.0037},
		{"positive percent", "+1.11%", parsePercent, 0.0111},
		{"unicode minus", "−3.20", parseMoney, -3.2},
		{"whitespace", "\n\t  1,204\n", parseNumber, 1204},
		{"nbsp", "$1 000", parseMoney, 1000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := tc.parse(tc.input)
			require.NoError(t, err)
			require.InDelta(t, tc.expected, n, 1e-9)
		})
	}

	_, err := parseNumber("N/A")
	require.Error(t, err)
	_, err = parseInt("")
	require.Error(t, err)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "-3710.85", cleanText("\r\n\t-$3,710.85 "))
	require.Equal(t, "12.5", cleanText("12.5%"))
}

func TestParseOrderTypeText(t *testing.T) {
	testCases := []struct {
		input    string
		expected OrderType
	}{
		{"Buy Limit", ORDER_BUY},
		{"Sell Short", ORDER_SHORT},
		{"Buy to Cover", ORDER_BUY},
		{"Cover Market", ORDER_COVER},
		{"SELL STOP", ORDER_SELL},
		{"Pending", ""},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, parseOrderTypeText(tc.input), tc.input)
	}
}

func TestParsePriceTypeText(t *testing.T) {
	require.Equal(t, PRICE_MARKET, parsePriceTypeText("Buy Market"))
	require.Equal(t, PRICE_LIMIT, parsePriceTypeText("Sell limit"))
	require.Equal(t, PRICE_STOP, parsePriceTypeText("Stop $12"))
	require.Equal(t, PriceType(""), parsePriceTypeText("Buy"))
}

func TestParseOrderPrice(t *testing.T) {
	price, ok, err := parseOrderPrice("Limit $300.50")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 300.5, price, 1e-9)

	price, ok, err = parseOrderPrice("Stop $1,020.00")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 1020, price, 1e-9)

	_, ok, err = parseOrderPrice("Market")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = parseOrderPrice("Limit $")
	require.Error(t, err)
}

func TestLastPathSegment(t *testing.T) {
	require.Equal(t, "algoets-h2023", lastPathSegment("https://www.marketwatch.com/games/algoets-h2023"))
	require.Equal(t, "summer-league", lastPathSegment("/games/summer-league/"))
	require.Equal(t, "wl-1", lastPathSegment("/watchlist/wl-1?view=table#top"))
	require.Equal(t, "games", lastPathSegment("games"))
}

func TestEnums(t *testing.T) {
	term, err := ParseTerm("day")
	require.NoError(t, err)
	require.Equal(t, TERM_DAY, term)
	term, err = ParseTerm("")
	require.NoError(t, err)
	require.Equal(t, TERM_INDEFINITE, term)
	_, err = ParseTerm("week")
	require.Error(t, err)

	priceType, err := ParsePriceType("limit")
	require.NoError(t, err)
	require.Equal(t, PRICE_LIMIT, priceType)
	_, err = ParsePriceType("trailing")
	require.Error(t, err)

	orderType, err := ParseOrderType(" COVER ")
	require.NoError(t, err)
	require.Equal(t, ORDER_COVER, orderType)
	_, err = ParseOrderType("hold")
	require.Error(t, err)
}

func TestQuoteString(t *testing.T) {
	require.Equal(t, "AAPL : $137.00", Quote{Ticker: "AAPL", Price: 137}.String())
}

func TestRankingPlayerPub(t *testing.T) {
	require.Equal(t, "abcDEF", Ranking{PlayerUrl: "/games/x/portfolio?pub=abcDEF&name=Ada"}.PlayerPub())
	require.Equal(t, "", Ranking{PlayerUrl: not_available}.PlayerPub())
}
