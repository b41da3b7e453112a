// Package scoring reduces the indicator battery to a signal strength
// score, a trend label, and a volatility label.
package scoring

import (
	"math"

	"fno-signals/internal/models"
)

// Score thresholds and point weights for the additive strength score.
const (
	rsiOversold   = 30
	rsiOverbought = 70
	rsiNeutralLo  = 40
	rsiNeutralHi  = 60

	vwapProximity = 0.005 // within 0.5% of VWAP
	adxStrong     = 25

	pointsRSIExtreme = 20
	pointsRSINeutral = 10
	pointsMACDCross  = 15
	pointsAvgCross   = 15
	pointsNearVWAP   = 10
	pointsStrongADX  = 15
	pointsHasVolume  = 10

	maxScore = 100
)

// Strength computes the additive 0-100 signal strength for one
// indicator set.
func Strength(set *models.IndicatorSet) int {
	score := 0

	// Momentum oscillator: extremes score highest, the balanced band
	// scores half.
	switch {
	case set.RSI < rsiOversold || set.RSI > rsiOverbought:
		score += pointsRSIExtreme
	case set.RSI >= rsiNeutralLo && set.RSI <= rsiNeutralHi:
		score += pointsRSINeutral
	}

	// A crossover in either direction is a tradeable condition.
	if set.MACD != set.MACDSignal {
		score += pointsMACDCross
	}

	if set.EMA20 != set.SMA50 {
		score += pointsAvgCross
	}

	if set.VWAP != 0 && math.Abs(set.Close-set.VWAP)/set.VWAP < vwapProximity {
		score += pointsNearVWAP
	}

	if set.ADX > adxStrong {
		score += pointsStrongADX
	}

	if set.Volume > 0 {
		score += pointsHasVolume
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// TrendOf determines the overall trend by majority vote across three
// binary signals: oscillator side of midline, MACD cross direction,
// and fast-vs-slow average relation. An even tie resolves Sideways.
func TrendOf(set *models.IndicatorSet) models.Trend {
	bullish, bearish := 0, 0

	if set.RSI > 50 {
		bullish++
	} else {
		bearish++
	}

	if set.MACD > set.MACDSignal {
		bullish++
	} else {
		bearish++
	}

	if set.EMA20 > set.SMA50 {
		bullish++
	} else {
		bearish++
	}

	switch {
	case bullish > bearish:
		return models.TrendBullish
	case bearish > bullish:
		return models.TrendBearish
	default:
		return models.TrendSideways
	}
}

// Volatility classifies the annualized standard deviation of close
// returns over the history.
func Volatility(candles []models.Candle) models.VolatilityLevel {
	if len(candles) < 10 {
		return models.VolatilityLow
	}

	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		if candles[i-1].Close != 0 {
			returns = append(returns, (candles[i].Close-candles[i-1].Close)/candles[i-1].Close)
		}
	}
	if len(returns) == 0 {
		return models.VolatilityLow
	}

	var m float64
	for _, r := range returns {
		m += r
	}
	m /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - m
		variance += d * d
	}
	variance /= float64(len(returns))

	annualized := math.Sqrt(variance) * math.Sqrt(252)

	switch {
	case annualized > 0.30:
		return models.VolatilityHigh
	case annualized > 0.15:
		return models.VolatilityMedium
	default:
		return models.VolatilityLow
	}
}
