package alphavantage

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

// GetDailySeries fetches the compact daily time series for a symbol.
// Validation is atomic: one bad record fails the whole series, no
// truncated bar list is ever returned.
func (c *Client) GetDailySeries(ctx context.Context, symbol string) (stocks.HistoricalSeries, error) {
	raw, err := c.request(ctx, endpointDaily, symbol)
	if err != nil {
		return nil, err
	}

	var series map[string]map[string]string
	if err := json.Unmarshal(raw[endpointDaily.key], &series); err != nil {
		return nil, stocks.NewError(stocks.KindMalformedResponse, "TIME_SERIES_DAILY: decoding series", err)
	}
	if len(series) == 0 {
		return nil, stocks.Errorf(stocks.KindMalformedResponse, "TIME_SERIES_DAILY: empty series")
	}

	// The provider sends the series newest first; the map round-trip
	// loses that, so restore it by date.
	dates := make([]string, 0, len(series))
	for date := range series {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	out := make(stocks.HistoricalSeries, 0, len(dates))
	for _, date := range dates {
		record := series[date]
		open, err := barFloat(record, date, "1. open")
		if err != nil {
			return nil, err
		}
		high, err := barFloat(record, date, "2. high")
		if err != nil {
			return nil, err
		}
		low, err := barFloat(record, date, "3. low")
		if err != nil {
			return nil, err
		}
		closePrice, err := barFloat(record, date, "4. close")
		if err != nil {
			return nil, err
		}
		volume, err := barInt(record, date, "5. volume")
		if err != nil {
			return nil, err
		}
		out = append(out, stocks.HistoricalBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return out, nil
}

func barFloat(record map[string]string, date, key string) (float64, error) {
	s, ok := record[key]
	if !ok {
		return 0, stocks.Errorf(stocks.KindMalformedResponse, "TIME_SERIES_DAILY: %s missing %q", date, key)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, stocks.Errorf(stocks.KindMalformedResponse, "TIME_SERIES_DAILY: %s %q is not numeric: %q", date, key, s)
	}
	return f, nil
}

func barInt(record map[string]string, date, key string) (int64, error) {
	s, ok := record[key]
	if !ok {
		return 0, stocks.Errorf(stocks.KindMalformedResponse, "TIME_SERIES_DAILY: %s missing %q", date, key)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, stocks.Errorf(stocks.KindMalformedResponse, "TIME_SERIES_DAILY: %s %q is not an integer: %q", date, key, s)
	}
	return n, nil
}
