package marketwatch

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Positions downloads the holdings csv linked from the portfolio page. A
// portfolio with no download link has no positions.
func (c *Client) Positions(ctx context.Context, gameId string) ([]Position, error) {
	doc, _, err := c.getGameDocument(ctx, report_client_positions, gameId, "/portfolio")
	if err != nil {
		return nil, err
	}

	href, ok := doc.Find("a[href*='download?view=holdings']").First().Attr("href")
	if !ok {
		return []Position{}, nil
	}
	base, err := url.Parse(c.endpoints.Site)
	if err != nil {
		return nil, err
	}
	link, err := url.Parse(href)
	if err != nil {
		c.tel.ReportBroken(report_client_positions, fmt.Errorf("parse download link: %w", err), href)
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(base.ResolveReference(link).String())
	if err != nil {
		c.tel.ReportBroken(report_client_positions, fmt.Errorf("fetch csv: %w", err), gameId)
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		err := StatusError{Url: res.Request.URL, Status: res.StatusCode()}
		c.tel.ReportBroken(report_client_positions, err)
		return nil, err
	}

	positions, err := parsePositionsCSV(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_positions, err, gameId)
		return nil, err
	}
	c.tel.ReportCount(report_client_positions, int64(len(positions)))
	return positions, nil
}

// parsePositionsCSV reads rows of symbol, qty, _, type, price, change.
// The entry price is the current price minus the change.
func parsePositionsCSV(contents []byte) ([]Position, error) {
	reader := csv.NewReader(bytes.NewReader(contents))
	reader.FieldsPerRecord = -1

	positions := []Position{}
	header := true
	for {
		parts, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(parts) == 0 || (len(parts) == 1 && strings.TrimSpace(parts[0]) == "") {
			continue
		}
		if len(parts) < 6 {
			return nil, markupError("expected 6 columns in holdings csv, got %d", len(parts))
		}

		quantity, err := parseInt(parts[1])
		if err != nil {
			return nil, fmt.Errorf("quantity: %w", err)
		}
		price, err := parseMoney(parts[4])
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		change, err := parseMoney(parts[5])
		if err != nil {
			return nil, fmt.Errorf("change: %w", err)
		}
		positions = append(positions, Position{
			Ticker:     strings.TrimSpace(parts[0]),
			OrderType:  OrderType(strings.TrimSpace(parts[3])),
			Quantity:   quantity,
			EntryPrice: price - change,
		})
	}
	return positions, nil
}
