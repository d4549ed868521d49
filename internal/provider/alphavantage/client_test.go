package alphavantage_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hgaskin/stockchat-ai/internal/provider/alphavantage"
	"github.com/hgaskin/stockchat-ai/internal/stocks"
)

// endpointCalls exercises every endpoint kind through the same client,
// so cross-cutting behavior can be asserted for all six.
var endpointCalls = map[string]func(ctx context.Context, c *alphavantage.Client) error{
	"GLOBAL_QUOTE": func(ctx context.Context, c *alphavantage.Client) error {
		_, err := c.GetGlobalQuote(ctx, "AAPL")
		return err
	},
	"OVERVIEW": func(ctx context.Context, c *alphavantage.Client) error {
		_, err := c.GetCompanyOverview(ctx, "AAPL")
		return err
	},
	"TIME_SERIES_DAILY": func(ctx context.Context, c *alphavantage.Client) error {
		_, err := c.GetDailySeries(ctx, "AAPL")
		return err
	},
	"RSI": func(ctx context.Context, c *alphavantage.Client) error {
		_, err := c.GetRSI(ctx, "AAPL")
		return err
	},
	"MACD": func(ctx context.Context, c *alphavantage.Client) error {
		_, err := c.GetMACD(ctx, "AAPL")
		return err
	},
	"ADX": func(ctx context.Context, c *alphavantage.Client) error {
		_, err := c.GetADX(ctx, "AAPL")
		return err
	},
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMissingAPIKey_FailsWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	// Arrange: a mock HTTP client that expects zero calls.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	client := alphavantage.NewClient("", alphavantage.WithHTTPClient(httpClient))

	for name, call := range endpointCalls {
		// Act
		err := call(t.Context(), client)

		// Assert: configuration error, no Do() invocation recorded.
		require.Errorf(t, err, "%s: expected error", name)
		require.Equalf(t, stocks.KindConfiguration, stocks.KindOf(err), "%s: wrong kind", name)
	}
}

func TestErrorMessage_SurfacesProviderErrorOnEveryEndpoint(t *testing.T) {
	t.Parallel()

	for name, call := range endpointCalls {
		// Arrange
		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		httpClient.EXPECT().
			Do(gomock.Any()).
			Return(jsonResponse(http.StatusOK, `{"Error Message": "Invalid API call."}`), nil).
			Times(1)

		client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

		// Act
		err := call(t.Context(), client)

		// Assert
		require.Errorf(t, err, "%s: expected error", name)
		require.Equalf(t, stocks.KindProviderError, stocks.KindOf(err), "%s: wrong kind: %v", name, err)
		require.Containsf(t, err.Error(), "Invalid API call.", "%s: message lost", name)
	}
}

func TestRateLimitNotices_SurfaceRateLimitedOnEveryEndpoint(t *testing.T) {
	t.Parallel()

	bodies := []string{
		`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
		`{"Information": "You have reached the rate limit for your free API key."}`,
	}
	for _, body := range bodies {
		for name, call := range endpointCalls {
			// Arrange
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				Return(jsonResponse(http.StatusOK, body), nil).
				Times(1)

			client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

			// Act
			err := call(t.Context(), client)

			// Assert
			require.Errorf(t, err, "%s: expected error", name)
			require.Equalf(t, stocks.KindRateLimited, stocks.KindOf(err), "%s: wrong kind: %v", name, err)
		}
	}
}

func TestMissingTopLevelKey_SurfacesMalformedResponse(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"GLOBAL_QUOTE", "TIME_SERIES_DAILY", "RSI", "MACD", "ADX"} {
		// Arrange: a well-formed but wrong-shaped payload.
		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		httpClient.EXPECT().
			Do(gomock.Any()).
			Return(jsonResponse(http.StatusOK, `{"unexpected": {}}`), nil).
			Times(1)

		client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

		// Act
		err := endpointCalls[name](t.Context(), client)

		// Assert
		require.Errorf(t, err, "%s: expected error", name)
		require.Equalf(t, stocks.KindMalformedResponse, stocks.KindOf(err), "%s: wrong kind: %v", name, err)
	}
}

func TestHTTPError_SurfacesProviderError(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusServiceUnavailable, `{}`), nil).
		Times(1)

	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	_, err := client.GetGlobalQuote(t.Context(), "AAPL")

	// Assert
	require.Error(t, err)
	require.Equal(t, stocks.KindProviderError, stocks.KindOf(err))
	require.Contains(t, err.Error(), "503")
}

// timeoutError mimics the net.Error an http.Client returns when its
// deadline passes.
type timeoutError struct{}

func (timeoutError) Error() string   { return "request timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestTransportTimeout_SurfacesTimeout(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, timeoutError{}).
		Times(1)

	client := alphavantage.NewClient("test", alphavantage.WithHTTPClient(httpClient))

	// Act
	_, err := client.GetGlobalQuote(t.Context(), "AAPL")

	// Assert
	require.Error(t, err)
	require.Equal(t, stocks.KindTimeout, stocks.KindOf(err))
}

func TestRequestConstruction_FixedParameterTemplates(t *testing.T) {
	t.Parallel()

	wantParams := map[string]map[string]string{
		"GLOBAL_QUOTE":      {},
		"OVERVIEW":          {},
		"TIME_SERIES_DAILY": {"outputsize": "compact"},
		"RSI":               {"interval": "daily", "time_period": "14", "series_type": "close"},
		"MACD":              {"interval": "daily", "series_type": "close"},
		"ADX":               {"interval": "daily", "time_period": "14"},
	}

	for name, call := range endpointCalls {
		// Arrange: capture the outbound request.
		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		var got *http.Request
		httpClient.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				got = req
				// An empty object fails later parsing for typed
				// endpoints; only the URL matters here.
				return jsonResponse(http.StatusOK, `{"unexpected": {}}`), nil
			}).
			Times(1)

		client := alphavantage.NewClient("test-key",
			alphavantage.WithHTTPClient(httpClient),
			alphavantage.WithBaseURL("http://localhost:9"))

		// Act
		_ = call(t.Context(), client)

		// Assert
		require.NotNilf(t, got, "%s: no request issued", name)
		q := got.URL.Query()
		require.Equalf(t, name, q.Get("function"), "%s: wrong function", name)
		require.Equalf(t, "AAPL", q.Get("symbol"), "%s: wrong symbol", name)
		require.Equalf(t, "test-key", q.Get("apikey"), "%s: key missing", name)
		for key, value := range wantParams[name] {
			require.Equalf(t, value, q.Get(key), "%s: wrong %s", name, key)
		}
	}
}

func TestWithLimiter_WaitsBeforeRequest(t *testing.T) {
	t.Parallel()

	// Arrange: limiter and transport must both be hit, limiter first.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	limiter := NewMockLimiter(ctrl)
	waited := false
	limiter.EXPECT().
		Wait(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			waited = true
			return nil
		}).
		Times(1)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(*http.Request) (*http.Response, error) {
			require.True(t, waited, "request issued before limiter granted a slot")
			return jsonResponse(http.StatusOK, `{"Global Quote": {
				"05. price": "10.00", "09. change": "0.10",
				"10. change percent": "1.01%", "06. volume": "5"
			}}`), nil
		}).
		Times(1)

	client := alphavantage.NewClient("test",
		alphavantage.WithHTTPClient(httpClient),
		alphavantage.WithLimiter(limiter))

	// Act
	_, err := client.GetGlobalQuote(t.Context(), "AAPL")

	// Assert
	require.NoError(t, err)
}
