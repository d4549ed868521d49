// Package aggregate composes the per-endpoint Alpha Vantage fetches
// into the caller-facing stock models. It owns the fan-out across
// independent fetches and the merge rules; retry policy stays with the
// caller.
package aggregate

import (
	"context"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/hgaskin/stockchat-ai/internal/provider/alphavantage"
	"github.com/hgaskin/stockchat-ai/internal/provider/cache"
	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

// symbolPattern is enforced before any network call is issued.
var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// Service orchestrates provider fetches through a shared TTL cache.
type Service struct {
	av    *alphavantage.Client
	cache *cache.Cache
}

func New(av *alphavantage.Client, c *cache.Cache) *Service {
	return &Service{av: av, cache: c}
}

func validateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return stocks.Errorf(stocks.KindInvalidSymbol, "symbol %q must be 1-5 uppercase letters", symbol)
	}
	return nil
}

// GetQuote fetches the live quote and the company overview concurrently
// and merges them. The quote's price, change, change percent, and
// volume are required; every overview-sourced field is individually
// optional and stays absent when the provider has no data for it.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*stocks.Quote, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	var (
		quote    *alphavantage.GlobalQuote
		overview *alphavantage.CompanyOverview
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = cache.GetOrFetch(ctx, s.cache, cache.Key("GLOBAL_QUOTE", symbol),
			func(ctx context.Context) (*alphavantage.GlobalQuote, error) {
				return s.av.GetGlobalQuote(ctx, symbol)
			})
		return err
	})
	g.Go(func() error {
		var err error
		overview, err = cache.GetOrFetch(ctx, s.cache, cache.Key("OVERVIEW", symbol),
			func(ctx context.Context) (*alphavantage.CompanyOverview, error) {
				return s.av.GetCompanyOverview(ctx, symbol)
			})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeQuote(symbol, quote, overview), nil
}

// GetHistoricalData fetches the compact daily series in provider order,
// newest bar first. Validation is atomic inside the client: a single
// bad record fails the whole series.
func (s *Service) GetHistoricalData(ctx context.Context, symbol string) (stocks.HistoricalSeries, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	return cache.GetOrFetch(ctx, s.cache, cache.Key("TIME_SERIES_DAILY", symbol, "compact"),
		func(ctx context.Context) (stocks.HistoricalSeries, error) {
			return s.av.GetDailySeries(ctx, symbol)
		})
}

// GetTechnicalAnalysis composes the quote, the historical series, and
// the three indicators. All five fetches run concurrently; there is no
// data dependency among them. The result is all-or-nothing: the first
// classified failure cancels the remaining fetches via the group
// context and fails the whole call.
func (s *Service) GetTechnicalAnalysis(ctx context.Context, symbol string) (*stocks.TechnicalAnalysis, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	var (
		quote      *stocks.Quote
		historical stocks.HistoricalSeries
		rsi        float64
		macd       stocks.MACD
		adx        float64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.GetQuote(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = s.GetHistoricalData(ctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		rsi, err = cache.GetOrFetch(ctx, s.cache, cache.Key("RSI", symbol, "daily", "14", "close"),
			func(ctx context.Context) (float64, error) {
				return s.av.GetRSI(ctx, symbol)
			})
		return err
	})
	g.Go(func() error {
		var err error
		macd, err = cache.GetOrFetch(ctx, s.cache, cache.Key("MACD", symbol, "daily", "close"),
			func(ctx context.Context) (stocks.MACD, error) {
				return s.av.GetMACD(ctx, symbol)
			})
		return err
	})
	g.Go(func() error {
		var err error
		adx, err = cache.GetOrFetch(ctx, s.cache, cache.Key("ADX", symbol, "daily", "14"),
			func(ctx context.Context) (float64, error) {
				return s.av.GetADX(ctx, symbol)
			})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &stocks.TechnicalAnalysis{
		Symbol:         symbol,
		Quote:          *quote,
		HistoricalData: historical,
		Indicators: stocks.Indicators{
			RSI:  rsi,
			MACD: macd,
			ADX:  adx,
		},
	}, nil
}

// mergeQuote combines the two payloads. The symbol is always the exact
// string the caller requested, never the provider's echo, and the name
// falls back to the symbol when the overview has none.
func mergeQuote(symbol string, quote *alphavantage.GlobalQuote, overview *alphavantage.CompanyOverview) *stocks.Quote {
	name := symbol
	if overview.Name.Valid {
		name = overview.Name.String
	}
	return &stocks.Quote{
		Symbol:      symbol,
		Name:        name,
		Description: overview.Description,
		Sector:      overview.Sector,
		Industry:    overview.Industry,

		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Volume:        quote.Volume,
		MarketCap:     overview.MarketCapitalization,
		WeekHigh52:    overview.WeekHigh52,
		WeekLow52:     overview.WeekLow52,

		PERatio:       overview.PERatio,
		PEGRatio:      overview.PEGRatio,
		Beta:          overview.Beta,
		EBITDA:        overview.EBITDA,
		ProfitMargin:  overview.ProfitMargin,
		EPS:           overview.EPS,
		DividendYield: overview.DividendYield,

		RevenueGrowthYOY:   overview.RevenueGrowthYOY,
		AnalystTargetPrice: overview.AnalystTargetPrice,
	}
}
