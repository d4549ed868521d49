package stocks

import "github.com/guregu/null/v6"

// Quote is a per-symbol snapshot combining the live quote with the
// company overview. Overview-sourced fields are optional: the provider
// omits them for some symbols (non-US listings in particular), so each
// is a null value rather than a zero float. A valid zero is kept as zero.
type Quote struct {
	// Company info
	Symbol      string      `json:"symbol"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	Sector      null.String `json:"sector"`
	Industry    null.String `json:"industry"`

	// Price & trading info
	Price         float64    `json:"price"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"changePercent"` // percentage units: 5.2 means 5.2%
	Volume        int64      `json:"volume"`
	MarketCap     null.Float `json:"marketCap"`
	WeekHigh52    null.Float `json:"weekHigh52"`
	WeekLow52     null.Float `json:"weekLow52"`

	// Financial ratios
	PERatio       null.Float `json:"peRatio"`
	PEGRatio      null.Float `json:"pegRatio"`
	Beta          null.Float `json:"beta"`
	EBITDA        null.Float `json:"ebitda"`
	ProfitMargin  null.Float `json:"profitMargin"`
	EPS           null.Float `json:"eps"`
	DividendYield null.Float `json:"dividendYield"`

	// Growth & targets
	RevenueGrowthYOY   null.Float `json:"revenueGrowthYOY"`
	AnalystTargetPrice null.Float `json:"analystTargetPrice"`
}

// HistoricalBar is one trading day of OHLCV data.
type HistoricalBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoricalSeries holds daily bars in provider order (newest first,
// compact window of roughly the last 100 sessions).
type HistoricalSeries []HistoricalBar

// MACD holds the three values of the provider-computed MACD indicator.
type MACD struct {
	MACDLine   float64 `json:"macdLine"`
	SignalLine float64 `json:"signalLine"`
	Histogram  float64 `json:"histogram"`
}

// Indicators are the most recent provider-computed technical values
// over the symbol's daily close series.
type Indicators struct {
	RSI  float64 `json:"rsi"` // 14-period, 0-100
	MACD MACD    `json:"macd"`
	ADX  float64 `json:"adx"` // 14-period, 0-100
}

// TechnicalAnalysis is the composite result returned to callers.
type TechnicalAnalysis struct {
	Symbol         string           `json:"symbol"`
	Quote          Quote            `json:"quote"`
	HistoricalData HistoricalSeries `json:"historicalData"`
	Indicators     Indicators       `json:"indicators"`
}
