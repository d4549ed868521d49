package alphavantage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

// GlobalQuote is the live snapshot from the GLOBAL_QUOTE function with
// the numbered payload keys mapped to semantic fields.
type GlobalQuote struct {
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        int64
}

// GetGlobalQuote fetches the live quote for a symbol. The four numeric
// fields a quote is useless without must all be present and parse, or
// the call fails as an invalid response.
func (c *Client) GetGlobalQuote(ctx context.Context, symbol string) (*GlobalQuote, error) {
	raw, err := c.request(ctx, endpointQuote, symbol)
	if err != nil {
		return nil, err
	}

	var fields map[string]string
	if err := json.Unmarshal(raw[endpointQuote.key], &fields); err != nil {
		return nil, stocks.NewError(stocks.KindMalformedResponse, "GLOBAL_QUOTE: decoding quote object", err)
	}

	price, err := requiredFloat(fields, "05. price")
	if err != nil {
		return nil, err
	}
	change, err := requiredFloat(fields, "09. change")
	if err != nil {
		return nil, err
	}
	changePercent, err := requiredPercent(fields, "10. change percent")
	if err != nil {
		return nil, err
	}
	volume, err := requiredInt(fields, "06. volume")
	if err != nil {
		return nil, err
	}
	if volume < 0 {
		return nil, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: negative volume %d", volume)
	}

	return &GlobalQuote{
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
	}, nil
}

func requiredFloat(fields map[string]string, key string) (float64, error) {
	s, ok := fields[key]
	if !ok {
		return 0, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: missing %q", key)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: %q is not numeric: %q", key, s)
	}
	return f, nil
}

// requiredPercent parses a value like "0.74%" into percentage units.
func requiredPercent(fields map[string]string, key string) (float64, error) {
	s, ok := fields[key]
	if !ok {
		return 0, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: missing %q", key)
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: %q is not a percentage: %q", key, s)
	}
	return f, nil
}

func requiredInt(fields map[string]string, key string) (int64, error) {
	s, ok := fields[key]
	if !ok {
		return 0, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: missing %q", key)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, stocks.Errorf(stocks.KindInvalidResponse, "GLOBAL_QUOTE: %q is not an integer: %q", key, s)
	}
	return n, nil
}
