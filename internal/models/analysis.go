package models

// Sentiment represents market sentiment derived from open interest.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// OIStrength qualifies how strong the OI sentiment reading is.
type OIStrength string

const (
	OIStrengthStrong   OIStrength = "Strong"
	OIStrengthModerate OIStrength = "Moderate"
)

// OIAnalysis is the read-only result of analyzing one option chain snapshot.
type OIAnalysis struct {
	TotalCallOI     int64
	TotalPutOI      int64
	PutCallRatio    float64
	ATMStrike       float64
	MaxCallOIStrike float64
	MaxPutOIStrike  float64
	SupportLevel    float64
	ResistanceLevel float64
	Sentiment       Sentiment
	Strength        OIStrength
}

// Trend represents the overall price trend direction.
type Trend string

const (
	TrendBullish  Trend = "Bullish"
	TrendBearish  Trend = "Bearish"
	TrendSideways Trend = "Sideways"
)

// PatternLabel represents a classified chart pattern.
type PatternLabel string

const (
	PatternAscendingTriangle  PatternLabel = "Ascending Triangle"
	PatternDescendingTriangle PatternLabel = "Descending Triangle"
	PatternUpwardBreakout     PatternLabel = "Upward Breakout"
	PatternDownwardBreakout   PatternLabel = "Downward Breakout"
	PatternConsolidation      PatternLabel = "Consolidation"
	PatternInsufficientData   PatternLabel = "Insufficient Data"
)

// VolatilityLevel classifies realized volatility.
type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "Low"
	VolatilityMedium VolatilityLevel = "Medium"
	VolatilityHigh   VolatilityLevel = "High"
)

// IndicatorSet holds the latest value of each indicator in the fixed battery.
type IndicatorSet struct {
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	BBUpper    float64
	BBMiddle   float64
	BBLower    float64
	EMA20      float64
	SMA50      float64
	VWAP       float64
	ADX        float64
	StochK     float64
	StochD     float64
	Close      float64
	Volume     int64
}

// TechnicalSnapshot is the full technical picture of one instrument for
// one evaluation cycle. It carries no state across cycles.
type TechnicalSnapshot struct {
	Symbol     string
	Indicators IndicatorSet
	Pattern    PatternLabel
	Trend      Trend
	Strength   int // 0-100
	Volatility VolatilityLevel
}
