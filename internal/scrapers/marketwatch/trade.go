package marketwatch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OrderOption modifies an order built by Buy, Sell, Short or Cover.
type OrderOption func(req *OrderRequest)

// WithLimit makes the order a limit order at price.
func WithLimit(price float64) OrderOption {
	return func(req *OrderRequest) {
		req.PriceType = PRICE_LIMIT
		req.Price = price
	}
}

// WithStop makes the order a stop order at price.
func WithStop(price float64) OrderOption {
	return func(req *OrderRequest) {
		req.PriceType = PRICE_STOP
		req.Price = price
	}
}

func WithTerm(term Term) OrderOption {
	return func(req *OrderRequest) {
		req.Term = term
	}
}

func (c *Client) order(ctx context.Context, orderType OrderType, gameId, ticker string, shares int, opts []OrderOption) (string, error) {
	req := OrderRequest{
		GameId:    gameId,
		Ticker:    ticker,
		Shares:    shares,
		OrderType: orderType,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return c.SubmitOrder(ctx, req)
}

func (c *Client) Buy(ctx context.Context, gameId, ticker string, shares int, opts ...OrderOption) (string, error) {
	return c.order(ctx, ORDER_BUY, gameId, ticker, shares, opts)
}

func (c *Client) Sell(ctx context.Context, gameId, ticker string, shares int, opts ...OrderOption) (string, error) {
	return c.order(ctx, ORDER_SELL, gameId, ticker, shares, opts)
}

func (c *Client) Short(ctx context.Context, gameId, ticker string, shares int, opts ...OrderOption) (string, error) {
	return c.order(ctx, ORDER_SHORT, gameId, ticker, shares, opts)
}

func (c *Client) Cover(ctx context.Context, gameId, ticker string, shares int, opts ...OrderOption) (string, error) {
	return c.order(ctx, ORDER_COVER, gameId, ticker, shares, opts)
}

// normalize fills in defaults and checks that the order can be submitted.
func (r OrderRequest) normalize() (OrderRequest, error) {
	if r.PriceType == "" {
		r.PriceType = PRICE_MARKET
	}
	if r.Term == "" {
		r.Term = TERM_INDEFINITE
	}
	r.Ticker = strings.TrimSpace(r.Ticker)

	switch {
	case r.GameId == "":
		return r, fmt.Errorf("%w: no game id", ErrInvalidOrder)
	case r.Ticker == "":
		return r, fmt.Errorf("%w: no ticker", ErrInvalidOrder)
	case r.Shares <= 0:
		return r, fmt.Errorf("%w: shares must be positive, got %d", ErrInvalidOrder, r.Shares)
	}
	if _, err := ParseOrderType(string(r.OrderType)); err != nil {
		return r, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	if _, err := ParsePriceType(string(r.PriceType)); err != nil {
		return r, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	if r.Term != TERM_DAY && r.Term != TERM_INDEFINITE {
		return r, fmt.Errorf("%w: unknown term '%s'", ErrInvalidOrder, r.Term)
	}
	if r.PriceType != PRICE_MARKET && r.Price <= 0 {
		return r, fmt.Errorf("%w: %s orders need a price", ErrInvalidOrder, strings.ToLower(string(r.PriceType)))
	}
	return r, nil
}

type tradePayload struct {
	Djid            string `json:"djid"`
	LedgerId        string `json:"ledgerId"`
	TradeType       string `json:"tradeType"`
	Shares          int    `json:"shares"`
	ExpiresEndOfDay bool   `json:"expiresEndOfDay"`
	OrderType       string `json:"orderType"`
	LimitStopPrice  string `json:"limitStopPrice,omitempty"`
}

type tradeResponse struct {
	Data struct {
		Status string `json:"status"`
	} `json:"data"`
}

// SubmitOrder opens the trade form for the ticker and posts the order to
// the trading api, it returns the status the api reports ("Submitted").
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (string, error) {
	req, err := req.normalize()
	if err != nil {
		return "", err
	}

	uid, err := c.TickerUid(ctx, req.Ticker)
	if err != nil {
		return "", err
	}

	endpoint := c.siteUrl("/games/%s/tradeorder?chartingSymbol=%s", url.PathEscape(req.GameId), url.QueryEscape(uid))
	res, err := c.Http.R().
		SetContext(ctx).
		Post(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_submit_order, fmt.Errorf("trade form: %w", err), req.GameId)
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		// a stale charting symbol is rejected the same way as a bad game
		c.forgetTickerUid(ctx, req.Ticker)
		return "", fmt.Errorf("%w: %s", ErrGameNotFound, req.GameId)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_submit_order, fmt.Errorf("parse trade form: %w", err))
		return "", err
	}

	form := doc.Find("form[data-djkey][data-pub]").First()
	if form.Length() == 0 {
		c.forgetTickerUid(ctx, req.Ticker)
		c.tel.ReportBroken(report_client_submit_order, "trade form has no djkey or pub", req.GameId, req.Ticker)
		return "", markupError("trade form is missing the account keys")
	}
	djid, _ := form.Attr("data-djkey")
	ledgerId, _ := form.Attr("data-pub")

	payload := tradePayload{
		Djid:            djid,
		LedgerId:        ledgerId,
		TradeType:       string(req.OrderType),
		Shares:          req.Shares,
		ExpiresEndOfDay: req.Term == TERM_DAY,
		OrderType:       string(req.PriceType),
	}
	if req.PriceType == PRICE_LIMIT || req.PriceType == PRICE_STOP {
		payload.LimitStopPrice = strconv.FormatFloat(req.Price, 'f', -1, 64)
	}

	var out tradeResponse
	res, err = c.Http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(payload).
		SetResult(&out).
		SetError(&out).
		ForceContentType("application/json").
		Post(fmt.Sprintf(
			"%s/v1/games/%s/ledgers/%s/trades",
			c.endpoints.Trade,
			url.PathEscape(req.GameId),
			url.PathEscape(ledgerId),
		))
	if err != nil {
		c.tel.ReportBroken(report_client_submit_order, fmt.Errorf("submit: %w", err), req.GameId)
		return "", err
	}
	if out.Data.Status == "" {
		err := StatusError{Url: res.Request.URL, Status: res.StatusCode()}
		c.tel.ReportBroken(report_client_submit_order, err, string(res.Body()))
		return "", err
	}

	c.tel.ReportDebug(
		"submitted order",
		"game", req.GameId,
		"ticker", req.Ticker,
		"type", req.OrderType,
		"shares", req.Shares,
		"status", out.Data.Status,
	)
	return out.Data.Status, nil
}
