package alphavantage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

// GetRSI fetches the most recent 14-period RSI value for a symbol.
func (c *Client) GetRSI(ctx context.Context, symbol string) (float64, error) {
	point, err := c.latestIndicatorPoint(ctx, endpointRSI, symbol)
	if err != nil {
		return 0, err
	}
	return indicatorFloat(endpointRSI, point, "RSI")
}

// GetMACD fetches the most recent MACD line, signal line, and histogram
// for a symbol, using the provider's default periods.
func (c *Client) GetMACD(ctx context.Context, symbol string) (stocks.MACD, error) {
	point, err := c.latestIndicatorPoint(ctx, endpointMACD, symbol)
	if err != nil {
		return stocks.MACD{}, err
	}
	macdLine, err := indicatorFloat(endpointMACD, point, "MACD")
	if err != nil {
		return stocks.MACD{}, err
	}
	signal, err := indicatorFloat(endpointMACD, point, "MACD_Signal")
	if err != nil {
		return stocks.MACD{}, err
	}
	hist, err := indicatorFloat(endpointMACD, point, "MACD_Hist")
	if err != nil {
		return stocks.MACD{}, err
	}
	return stocks.MACD{MACDLine: macdLine, SignalLine: signal, Histogram: hist}, nil
}

// GetADX fetches the most recent 14-period ADX value for a symbol.
func (c *Client) GetADX(ctx context.Context, symbol string) (float64, error) {
	point, err := c.latestIndicatorPoint(ctx, endpointADX, symbol)
	if err != nil {
		return 0, err
	}
	return indicatorFloat(endpointADX, point, "ADX")
}

// latestIndicatorPoint decodes a "Technical Analysis: X" payload and
// returns the entry for the most recent date. The payload is a mapping
// from date to values with no ordering contract, so the newest key is
// selected explicitly rather than taking whichever entry comes first.
func (c *Client) latestIndicatorPoint(ctx context.Context, ep endpoint, symbol string) (map[string]string, error) {
	raw, err := c.request(ctx, ep, symbol)
	if err != nil {
		return nil, err
	}

	var points map[string]map[string]string
	if err := json.Unmarshal(raw[ep.key], &points); err != nil {
		return nil, stocks.NewError(stocks.KindMalformedResponse, ep.function+": decoding indicator series", err)
	}
	if len(points) == 0 {
		return nil, stocks.Errorf(stocks.KindMalformedResponse, "%s: empty indicator series", ep.function)
	}

	// Dates are ISO formatted, so the lexicographic maximum is the most
	// recent one.
	var latest string
	for date := range points {
		if date > latest {
			latest = date
		}
	}
	return points[latest], nil
}

func indicatorFloat(ep endpoint, point map[string]string, key string) (float64, error) {
	s, ok := point[key]
	if !ok {
		return 0, stocks.Errorf(stocks.KindMalformedResponse, "%s: missing %q", ep.function, key)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, stocks.Errorf(stocks.KindMalformedResponse, "%s: %q is not numeric: %q", ep.function, key, s)
	}
	return f, nil
}
