package marketwatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberRegex = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// cleanText removes the characters MarketWatch uses to format numbers,
// "-$3,710.85 " becomes "-3710.85".
func cleanText(s string) string {
	s = strings.NewReplacer(
		"\r", "",
		"\n", "",
		"\t", "",
		" ", "",
		"\u00a0", "",
		",", "",
		"$", "",
		"%", "",
		"\u2212", "-",
	).Replace(s)
	return s
}

// parseNumber reads the first number in s after cleaning it, "200 Shares"
// gives 200.
func parseNumber(s string) (float64, error) {
	match := numberRegex.FindString(cleanText(s))
	if match == "" {
		return 0, fmt.Errorf("no number in '%s'", s)
	}
	return strconv.ParseFloat(match, 64)
}

func parseMoney(s string) (float64, error) {
	return parseNumber(s)
}

// parsePercent returns a fraction, "12.5%" gives 0.125.
func parsePercent(s string) (float64, error) {
	n, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	return n / 100, nil
}

func parseInt(s string) (int, error) {
	n, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// parseOrderTypeText finds the order type in free text like "Buy Limit",
// buy is checked first, then short, cover and sell.
func parseOrderTypeText(s string) OrderType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "buy"):
		return ORDER_BUY
	case strings.Contains(s, "short"):
		return ORDER_SHORT
	case strings.Contains(s, "cover"):
		return ORDER_COVER
	case strings.Contains(s, "sell"):
		return ORDER_SELL
	}
	return ""
}

func parsePriceTypeText(s string) PriceType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "market"):
		return PRICE_MARKET
	case strings.Contains(s, "limit"):
		return PRICE_LIMIT
	case strings.Contains(s, "stop"):
		return PRICE_STOP
	}
	return ""
}

// parseOrderPrice reads the number after the first "$", ok is false when
// there is no "$".
func parseOrderPrice(s string) (price float64, ok bool, err error) {
	idx := strings.Index(s, "$")
	if idx < 0 {
		return 0, false, nil
	}
	price, err = parseNumber(s[idx+1:])
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

// lastPathSegment returns "algoets-h2023" for "/games/algoets-h2023/".
func lastPathSegment(path string) string {
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	path = strings.TrimRight(path, "/")
	return path[strings.LastIndex(path, "/")+1:]
}
