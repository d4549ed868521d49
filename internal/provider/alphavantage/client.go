package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Limiter gates outbound requests. The free Alpha Vantage tier allows a
// handful of requests per minute, so the client waits for a slot before
// touching the network.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client talks to the Alpha Vantage query API.
type Client struct {
	// baseURL is the query endpoint, overridable for tests.
	baseURL string
	// apiKey authenticates every request as a query parameter.
	apiKey string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers sent with each request.
	header http.Header
	// limiter optionally throttles outbound requests.
	limiter Limiter
}

// ClientOption is a configuration option for the Alpha Vantage client.
type ClientOption func(*Client)

// WithBaseURL sets the query URL, typically a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLimiter gates requests behind a rate limiter.
func WithLimiter(l Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates an Alpha Vantage client. An empty key is accepted
// here; requests made without one fail with a configuration error, so a
// misdeployment surfaces on first use rather than at construction.
func NewClient(apiKey string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// request performs one query API call and returns the decoded top-level
// object after the provider's error conventions have been checked:
// an "Error Message" field, a "Note"/"Information" rate-limit notice,
// and the presence of the endpoint's expected top-level key.
func (c *Client) request(ctx context.Context, ep endpoint, symbol string) (map[string]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, stocks.Errorf(stocks.KindConfiguration, "alpha vantage api key not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(ep, err)
		}
	}

	query := url.Values{}
	query.Set("function", ep.function)
	query.Set("symbol", symbol)
	query.Set("apikey", c.apiKey)
	for key, value := range ep.params {
		query.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, stocks.NewError(stocks.KindProviderError, "creating request", err)
	}
	req.Header = c.header

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ep, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, stocks.Errorf(stocks.KindProviderError, "%s: unexpected status code %d", ep.function, res.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, stocks.NewError(stocks.KindMalformedResponse, fmt.Sprintf("%s: decoding response", ep.function), err)
	}

	if msg, ok := rawString(raw, "Error Message"); ok {
		return nil, stocks.Errorf(stocks.KindProviderError, "%s: %s", ep.function, msg)
	}
	// A "Note" is the provider's classic throttle notice; "Information"
	// carries the newer daily-quota wording.
	if _, ok := rawString(raw, "Note"); ok {
		return nil, stocks.Errorf(stocks.KindRateLimited, "%s: api rate limit reached, try again in a minute", ep.function)
	}
	if info, ok := rawString(raw, "Information"); ok && strings.Contains(strings.ToLower(info), "rate limit") {
		return nil, stocks.Errorf(stocks.KindRateLimited, "%s: api rate limit reached, try again in a minute", ep.function)
	}

	if ep.key != "" {
		if _, ok := raw[ep.key]; !ok {
			return nil, stocks.Errorf(stocks.KindMalformedResponse, "%s: response missing %q", ep.function, ep.key)
		}
	}
	return raw, nil
}

func classifyTransport(ep endpoint, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return stocks.NewError(stocks.KindTimeout, fmt.Sprintf("%s: no response within request bound", ep.function), err)
	}
	return stocks.NewError(stocks.KindProviderError, fmt.Sprintf("%s: performing request", ep.function), err)
}

// rawString reads a top-level string field from the decoded payload.
func rawString(raw map[string]json.RawMessage, key string) (string, bool) {
	msg, ok := raw[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return "", false
	}
	return s, true
}
