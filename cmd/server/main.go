package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/hgaskin/stockchat-ai/internal/aggregate"
	"github.com/hgaskin/stockchat-ai/internal/config"
	"github.com/hgaskin/stockchat-ai/internal/httpx"
	"github.com/hgaskin/stockchat-ai/internal/provider/alphavantage"
	"github.com/hgaskin/stockchat-ai/internal/provider/cache"
	"github.com/hgaskin/stockchat-ai/internal/provider/ratelimit"
	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

func main() {
	// A local .env is convenient in development; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}
	if cfg.AlphaVantage.APIKey == "" {
		logger.Warn("ALPHA_VANTAGE_API_KEY not set; every request will fail with a configuration error")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	options := []alphavantage.ClientOption{
		alphavantage.WithHTTPClient(httpx.New(timeout)),
		alphavantage.WithHeader(http.Header{"User-Agent": []string{"stockchat-ai/1.0"}}),
	}
	if cfg.AlphaVantage.BaseURL != "" {
		options = append(options, alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL))
	}
	if cfg.AlphaVantage.MaxRequestsPerMinute > 0 {
		options = append(options, alphavantage.WithLimiter(
			ratelimit.PerMinute(cfg.AlphaVantage.MaxRequestsPerMinute, cfg.AlphaVantage.Burst)))
	}

	av := alphavantage.NewClient(cfg.AlphaVantage.APIKey, options...)
	memo := cache.New(time.Duration(cfg.AlphaVantage.CacheTTLSeconds)*time.Second, cfg.AlphaVantage.CacheMaxItems)
	service := aggregate.New(av, memo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/v1/stocks/{symbol}", func(r chi.Router) {
		r.Get("/quote", func(w http.ResponseWriter, req *http.Request) {
			quote, err := service.GetQuote(req.Context(), chi.URLParam(req, "symbol"))
			respond(w, quote, err)
		})
		r.Get("/history", func(w http.ResponseWriter, req *http.Request) {
			series, err := service.GetHistoricalData(req.Context(), chi.URLParam(req, "symbol"))
			respond(w, series, err)
		})
		r.Get("/analysis", func(w http.ResponseWriter, req *http.Request) {
			analysis, err := service.GetTechnicalAnalysis(req.Context(), chi.URLParam(req, "symbol"))
			respond(w, analysis, err)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

type errorResponse struct {
	Error string      `json:"error"`
	Kind  stocks.Kind `json:"kind"`
}

// respond writes the payload, or maps the error taxonomy onto HTTP
// statuses. Rate limits carry a Retry-After so callers know to cool
// down for about a minute.
func respond(w http.ResponseWriter, payload any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		kind := stocks.KindOf(err)
		status := http.StatusBadGateway
		switch kind {
		case stocks.KindInvalidSymbol:
			status = http.StatusBadRequest
		case stocks.KindRateLimited:
			status = http.StatusTooManyRequests
			w.Header().Set("Retry-After", "60")
		case stocks.KindTimeout:
			status = http.StatusGatewayTimeout
		case stocks.KindConfiguration:
			status = http.StatusInternalServerError
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Kind: kind})
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
