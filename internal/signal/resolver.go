// Package signal synthesizes trade signals from open-interest and
// technical analyses, sizes their risk, and enforces the daily quota.
package signal

import (
	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

// Basis names which rule produced a resolution.
type Basis string

const (
	BasisConfluence    Basis = "confluence"
	BasisMeanReversion Basis = "mean_reversion"
)

// Resolution is the directional call before strike selection and risk
// sizing.
type Resolution struct {
	Type       models.SignalType
	Confidence int
	Basis      Basis
}

// Resolver turns an OI analysis and a technical snapshot into a
// directional call, or reports that no qualifying setup exists.
type Resolver struct{}

// NewResolver builds a resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve applies the confluence rule first, then the mean-reversion
// rule. Neither firing is a valid negative result, reported as
// ErrNoOpportunity.
func (r *Resolver) Resolve(oi *models.OIAnalysis, tech *models.TechnicalSnapshot) (*Resolution, error) {
	if res := r.confluence(oi, tech); res != nil {
		return res, nil
	}
	if res := r.meanReversion(tech); res != nil {
		return res, nil
	}
	return nil, apperrors.ErrNoOpportunity
}

// confluence fires when OI sentiment and price trend agree on a
// non-neutral direction and momentum is not already exhausted in that
// direction.
func (r *Resolver) confluence(oi *models.OIAnalysis, tech *models.TechnicalSnapshot) *Resolution {
	ind := tech.Indicators

	bullish := oi.Sentiment == models.SentimentBullish &&
		tech.Trend == models.TrendBullish &&
		ind.RSI < 70 &&
		ind.MACD > ind.MACDSignal

	bearish := oi.Sentiment == models.SentimentBearish &&
		tech.Trend == models.TrendBearish &&
		ind.RSI > 30 &&
		ind.MACD < ind.MACDSignal

	if !bullish && !bearish {
		return nil
	}

	res := &Resolution{
		Confidence: clampConfidence(85+tech.Strength/5, 95),
		Basis:      BasisConfluence,
	}
	if bullish {
		res.Type = models.SignalBuyCE
	} else {
		res.Type = models.SignalBuyPE
	}
	return res
}

// meanReversion fades an extreme oscillator reading when the trend
// does not back the extreme.
func (r *Resolver) meanReversion(tech *models.TechnicalSnapshot) *Resolution {
	ind := tech.Indicators

	var t models.SignalType
	switch {
	case ind.RSI > 80 && tech.Trend != models.TrendBullish:
		t = models.SignalBuyPE
	case ind.RSI < 20 && tech.Trend != models.TrendBearish:
		t = models.SignalBuyCE
	default:
		return nil
	}

	return &Resolution{
		Type:       t,
		Confidence: clampConfidence(75+tech.Strength/8, 85),
		Basis:      BasisMeanReversion,
	}
}

func clampConfidence(v, ceiling int) int {
	if v > ceiling {
		return ceiling
	}
	return v
}
