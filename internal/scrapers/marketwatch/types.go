package marketwatch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Term is how long an order stays open.
type Term string

const (
	TERM_DAY        Term = "Day"
	TERM_INDEFINITE Term = "Cancelled"
)

type PriceType string

const (
	PRICE_MARKET PriceType = "Market"
	PRICE_LIMIT  PriceType = "Limit"
	PRICE_STOP   PriceType = "Stop"
)

type OrderType string

const (
	ORDER_BUY   OrderType = "Buy"
	ORDER_SELL  OrderType = "Sell"
	ORDER_SHORT OrderType = "Short"
	ORDER_COVER OrderType = "Cover"
)

// ParseTerm accepts the enum value or its name ("day", "indefinite"),
// case-insensitively.
func ParseTerm(s string) (Term, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return TERM_DAY, nil
	case "indefinite", "cancelled", "":
		return TERM_INDEFINITE, nil
	}
	return "", fmt.Errorf("unknown term '%s'", s)
}

func ParsePriceType(s string) (PriceType, error) {
	for _, t := range []PriceType{PRICE_MARKET, PRICE_LIMIT, PRICE_STOP} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown price type '%s'", s)
}

func ParseOrderType(s string) (OrderType, error) {
	for _, t := range []OrderType{ORDER_BUY, ORDER_SELL, ORDER_SHORT, ORDER_COVER} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown order type '%s'", s)
}

// GameSummary is a row of the "your games" table.
type GameSummary struct {
	Id   string
	Name string
	Url  string
	// fraction, "-0.37%" is -0.0037
	Return      float64
	TotalReturn float64
	Rank        int
	End         string
	Players     int
}

// Profile is the key/value summary of a player's standing in a game.
// Percentages are fractions.
type Profile struct {
	Value          float64
	GainPercentage float64
	Gain           float64
	Return         float64
	CashRemaining  float64
	BuyingPower    float64
	ShortsReserve  float64
	CashBorrowed   float64
}

type Game struct {
	Id        string
	Title     string
	Time      string
	Url       string
	StartDate string
	EndDate   string
	Players   int
	Creator   string
	Rank      int
	Profile   Profile
	LedgerId  string
}

type Holding struct {
	Ticker string
	// a number of shares, fractional when partial shares are enabled
	Quantity              float64
	Side                  string
	HoldingPercentage     float64
	Price                 float64
	PriceChange           float64
	PriceChangePercentage float64
	Value                 float64
	Gain                  float64
	GainPercentage        float64
}

type Allocation struct {
	Ticker     string
	Percentage float64
}

type Portfolio struct {
	Profile    Profile
	Holdings   []Holding
	Allocation []Allocation
}

type Ranking struct {
	Rank int
	// "N/A" when the row has no player link
	Player         string
	PlayerUrl      string
	PortfolioValue float64
	GainPercentage float64
	Transactions   int
	Gain           float64
}

// PlayerPub returns the player's "pub" id taken from the portfolio link in
// the rankings table, it can be passed to PlayerPortfolio.
func (r Ranking) PlayerPub() string {
	parsed, err := url.Parse(r.PlayerUrl)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("pub")
}

type Order struct {
	Id        string
	Ticker    string
	Quantity  int
	OrderType OrderType
	PriceType PriceType
	// 0 when the order has no price (market orders)
	Price float64
}

type Position struct {
	Ticker     string
	OrderType  OrderType
	Quantity   int
	EntryPrice float64
}

type GameSettings struct {
	GamePublic       bool
	PortfoliosPublic bool

	StartBalance             float64
	Commission               float64
	CreditInterestRate       float64
	LeverageDebtInterestRate float64
	MinimumStockPrice        float64
	MaximumStockPrice        float64

	ShortSelling        bool
	MarginTrading       bool
	LimitOrders         bool
	StopLossOrders      bool
	PartialShareTrading bool
}

type Quote struct {
	Ticker string
	Price  float64
}

func (q Quote) String() string {
	return fmt.Sprintf("%s : $%.2f", q.Ticker, q.Price)
}

// SearchResult is an instrument returned by the autocomplete api.
type SearchResult struct {
	ChartingSymbol  string `json:"chartingSymbol"`
	Company         string `json:"company"`
	Country         string `json:"country"`
	DjnSymbol       string `json:"djnSymbol"`
	Exchange        string `json:"exchange"`
	ExchangeIsoCode string `json:"exchangeIsoCode"`
	FactivaCode     string `json:"factivaCode"`
	IsFuture        bool   `json:"isFuture"`
	// passed through as-is, its shape differs between instrument types
	Quote  json.RawMessage `json:"quote"`
	Ticker string          `json:"ticker"`
	Type   string          `json:"type"`
}

type WatchlistItem struct {
	Ticker           string
	Name             string
	Price            float64
	Change           float64
	ChangePercentage float64
}

type Watchlist struct {
	Id    string
	Name  string
	Items []WatchlistItem
}

// OrderRequest describes an order to submit through SubmitOrder.
type OrderRequest struct {
	GameId    string
	Ticker    string
	Shares    int
	OrderType OrderType
	// defaults to PRICE_MARKET
	PriceType PriceType
	// defaults to TERM_INDEFINITE
	Term Term
	// required for limit and stop orders
	Price float64
}
