package alphavantage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

// CompanyOverview is the descriptive and fundamental-ratio payload from
// the OVERVIEW function. Every field is optional: overview coverage is
// incomplete for some symbols (non-US listings in particular), and the
// provider marks gaps with "None" or "-" rather than omitting keys.
type CompanyOverview struct {
	Name        null.String
	Description null.String
	Sector      null.String
	Industry    null.String

	MarketCapitalization null.Float
	WeekHigh52           null.Float
	WeekLow52            null.Float
	PERatio              null.Float
	PEGRatio             null.Float
	Beta                 null.Float
	EBITDA               null.Float
	ProfitMargin         null.Float
	EPS                  null.Float
	DividendYield        null.Float
	// The documented upstream field is QuarterlyRevenueGrowthYOY.
	RevenueGrowthYOY   null.Float
	AnalystTargetPrice null.Float
}

// GetCompanyOverview fetches fundamentals for a symbol. A gap in any
// individual field maps to an invalid null value, never to a failure;
// only an unreadable payload or a provider-level error fails the call.
func (c *Client) GetCompanyOverview(ctx context.Context, symbol string) (*CompanyOverview, error) {
	raw, err := c.request(ctx, endpointOverview, symbol)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for key, msg := range raw {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, stocks.NewError(stocks.KindMalformedResponse, "OVERVIEW: decoding field "+key, err)
		}
		fields[key] = s
	}

	return &CompanyOverview{
		Name:        optionalString(fields, "Name"),
		Description: optionalString(fields, "Description"),
		Sector:      optionalString(fields, "Sector"),
		Industry:    optionalString(fields, "Industry"),

		MarketCapitalization: optionalFloat(fields, "MarketCapitalization"),
		WeekHigh52:           optionalFloat(fields, "52WeekHigh"),
		WeekLow52:            optionalFloat(fields, "52WeekLow"),
		PERatio:              optionalFloat(fields, "PERatio"),
		PEGRatio:             optionalFloat(fields, "PEGRatio"),
		Beta:                 optionalFloat(fields, "Beta"),
		EBITDA:               optionalFloat(fields, "EBITDA"),
		ProfitMargin:         optionalFloat(fields, "ProfitMargin"),
		EPS:                  optionalFloat(fields, "EPS"),
		DividendYield:        optionalFloat(fields, "DividendYield"),
		RevenueGrowthYOY:     optionalFloat(fields, "QuarterlyRevenueGrowthYOY"),
		AnalystTargetPrice:   optionalFloat(fields, "AnalystTargetPrice"),
	}, nil
}

// missingSentinel reports the provider's placeholder values for absent
// overview data.
func missingSentinel(s string) bool {
	switch s {
	case "", "None", "none", "-":
		return true
	}
	return false
}

func optionalString(fields map[string]string, key string) null.String {
	s, ok := fields[key]
	if !ok || missingSentinel(strings.TrimSpace(s)) {
		return null.NewString("", false)
	}
	return null.NewString(s, true)
}

// optionalFloat parses an overview numeric. Absent keys, placeholder
// values, and unparsable text all become invalid; a parsed zero stays a
// valid zero.
func optionalFloat(fields map[string]string, key string) null.Float {
	s, ok := fields[key]
	if !ok {
		return null.NewFloat(0, false)
	}
	trimmed := strings.TrimSpace(s)
	if missingSentinel(trimmed) {
		return null.NewFloat(0, false)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return null.NewFloat(0, false)
	}
	return null.NewFloat(f, true)
}
