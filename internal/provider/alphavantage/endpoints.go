package alphavantage

// endpoint maps one of the six supported query API functions to its
// fixed parameter template and the top-level key a well-formed response
// must carry. The overview payload is flat, so it has no key to check.
type endpoint struct {
	function string
	key      string
	params   map[string]string
}

var (
	endpointQuote = endpoint{
		function: "GLOBAL_QUOTE",
		key:      "Global Quote",
	}
	endpointOverview = endpoint{
		function: "OVERVIEW",
	}
	endpointDaily = endpoint{
		function: "TIME_SERIES_DAILY",
		key:      "Time Series (Daily)",
		params:   map[string]string{"outputsize": "compact"}, // last ~100 sessions
	}
	endpointRSI = endpoint{
		function: "RSI",
		key:      "Technical Analysis: RSI",
		params: map[string]string{
			"interval":    "daily",
			"time_period": "14",
			"series_type": "close",
		},
	}
	endpointMACD = endpoint{
		function: "MACD",
		key:      "Technical Analysis: MACD",
		params: map[string]string{
			"interval":    "daily",
			"series_type": "close",
		},
	}
	endpointADX = endpoint{
		function: "ADX",
		key:      "Technical Analysis: ADX",
		params: map[string]string{
			"interval":    "daily",
			"time_period": "14",
		},
	}
)
