// Command fetch is a one-shot CLI: fetch a quote, the daily history, or
// a full technical analysis for a symbol and print it as JSON.
//
//	fetch -op analysis AAPL
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hgaskin/stockchat-ai/internal/aggregate"
	"github.com/hgaskin/stockchat-ai/internal/config"
	"github.com/hgaskin/stockchat-ai/internal/httpx"
	"github.com/hgaskin/stockchat-ai/internal/provider/alphavantage"
	"github.com/hgaskin/stockchat-ai/internal/provider/cache"
)

func main() {
	op := flag.String("op", "quote", "one of: quote, history, analysis")
	timeoutSec := flag.Int("timeout", 30, "overall timeout in seconds")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fetch [-op quote|history|analysis] SYMBOL")
		os.Exit(2)
	}
	symbol := flag.Arg(0)

	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	options := []alphavantage.ClientOption{
		alphavantage.WithHTTPClient(httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)),
		alphavantage.WithHeader(http.Header{"User-Agent": []string{"stockchat-ai/1.0"}}),
	}
	if cfg.AlphaVantage.BaseURL != "" {
		options = append(options, alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL))
	}
	av := alphavantage.NewClient(cfg.AlphaVantage.APIKey, options...)
	memo := cache.New(time.Duration(cfg.AlphaVantage.CacheTTLSeconds)*time.Second, cfg.AlphaVantage.CacheMaxItems)
	service := aggregate.New(av, memo)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutSec)*time.Second)
	defer cancel()

	var result any
	switch *op {
	case "quote":
		result, err = service.GetQuote(ctx, symbol)
	case "history":
		result, err = service.GetHistoricalData(ctx, symbol)
	case "analysis":
		result, err = service.GetTechnicalAnalysis(ctx, symbol)
	default:
		fmt.Fprintf(os.Stderr, "unknown op %q\n", *op)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
