package marketwatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"marketwatch-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PendingOrders lists the orders in a game that have not executed yet.
func (c *Client) PendingOrders(ctx context.Context, gameId string) ([]Order, error) {
	doc, _, err := c.getGameDocument(ctx, report_client_pending_orders, gameId, "/portfolio")
	if err != nil {
		return nil, err
	}

	orders := []Order{}
	table := doc.Find("table.table--primary.table--condensed.no-margin").First()
	if table.Length() == 0 {
		return orders, nil
	}
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		order, err := parseOrderRow(row)
		if err != nil {
			c.tel.ReportWarning(report_client_pending_orders, fmt.Errorf("row %d: %w", i, err))
			return
		}
		orders = append(orders, order)
	})
	c.tel.ReportCount(report_client_pending_orders, int64(len(orders)))
	return orders, nil
}

func parseOrderRow(row *goquery.Selection) (Order, error) {
	orderType := htmlutil.Text(row.Find("td.type").First())
	order := Order{
		Ticker:    htmlutil.Text(row.Find("td.ticker").First()),
		OrderType: parseOrderTypeText(orderType),
		PriceType: parsePriceTypeText(orderType),
	}
	order.Id, _ = row.Attr("data-order")

	var err error
	if order.Quantity, err = parseInt(row.Find("td.shares").First().Text()); err != nil {
		return Order{}, fmt.Errorf("shares: %w", err)
	}
	if order.Price, _, err = parseOrderPrice(htmlutil.Text(row.Find("td.price").First())); err != nil {
		return Order{}, fmt.Errorf("price: %w", err)
	}
	return order, nil
}

// CancelOrder cancels a pending order by its id.
func (c *Client) CancelOrder(ctx context.Context, gameId, orderId string) error {
	if gameId == "" {
		return fmt.Errorf("%w: game id is empty", ErrGameNotFound)
	}
	if orderId == "" {
		return fmt.Errorf("%w: order has no id", ErrInvalidOrder)
	}

	endpoint := c.siteUrl("/games/%s/trade/cancelorder?id=%s", url.PathEscape(gameId), url.QueryEscape(orderId))
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_cancel_order, fmt.Errorf("fetch: %w", err), gameId, orderId)
		return err
	}
	if res.StatusCode() != http.StatusOK {
		err := StatusError{Url: endpoint, Status: res.StatusCode()}
		c.tel.ReportWarning(report_client_cancel_order, err)
		return err
	}
	return nil
}

// CancelAllOrders cancels every pending order in a game, it keeps going
// after a failed cancellation and returns all the errors joined.
func (c *Client) CancelAllOrders(ctx context.Context, gameId string) error {
	orders, err := c.PendingOrders(ctx, gameId)
	if err != nil {
		return err
	}
	var errs []error
	for _, order := range orders {
		if order.Id == "" {
			continue
		}
		if err := c.CancelOrder(ctx, gameId, order.Id); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", order.Id, err))
		}
	}
	return errors.Join(errs...)
}
